package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/jackc/pgx/v5"
)

const msgUnknownAssignee = "Assigned user does not exist"

const taskColumns = `id, team_id, title, description, assigned_to, due_date, status, created_by, created_at`

type TaskService struct {
	db    *database.DB
	authz Authorizer
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskInput struct {
	Title       string
	Description string
	TeamID      int64
	AssignedTo  *int64
	DueDate     *time.Time
	Status      string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	AssignedTo  *int64
	DueDate     *time.Time
	Status      *string
}

func (in UpdateTaskInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.AssignedTo == nil && in.DueDate == nil && in.Status == nil
}

type TaskFilter struct {
	TeamID     *int64
	AssignedTo *int64
}

func scanTask(row pgx.Row, task *models.Task) error {
	return row.Scan(
		&task.ID, &task.TeamID, &task.Title, &task.Description, &task.AssignedTo,
		&task.DueDate, &task.Status, &task.CreatedBy, &task.CreatedAt,
	)
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, creatorID int64) (*models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.AssignedTo = positiveID(in.AssignedTo)
	if in.Title == "" || in.TeamID <= 0 {
		return nil, validationError("Title and team_id are required")
	}
	if in.Status == "" {
		in.Status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(in.Status) {
		return nil, validationError("Invalid status")
	}

	var task models.Task
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTeamCreatorOrMember(ctx, tx, in.TeamID, creatorID)
		if err != nil {
			return fmt.Errorf("failed to check team access: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to create task in this team")
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO tasks (title, description, team_id, assigned_to, due_date, status, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+taskColumns,
			in.Title, in.Description, in.TeamID, in.AssignedTo, in.DueDate, in.Status, creatorID,
		)
		if err := scanTask(row, &task); err != nil {
			if isForeignKeyViolation(err) {
				return validationError(msgUnknownAssignee)
			}
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns the tasks of every team the user created or belongs to,
// narrowed by the optional filters.
func (s *TaskService) List(ctx context.Context, userID int64, filter TaskFilter) ([]models.Task, error) {
	query := `
		SELECT t.id, t.team_id, t.title, t.description, t.assigned_to, t.due_date, t.status, t.created_by, t.created_at
		FROM tasks t
		JOIN teams tm ON t.team_id = tm.id
		WHERE (tm.creator_id = $1 OR tm.id IN (
			SELECT team_id FROM team_memberships WHERE user_id = $1
		))`
	args := []any{userID}

	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		query += fmt.Sprintf(" AND t.team_id = $%d", len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += fmt.Sprintf(" AND t.assigned_to = $%d", len(args))
	}
	query += " ORDER BY t.id"

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Update applies the provided fields; absent fields keep their stored value.
func (s *TaskService) Update(ctx context.Context, taskID, userID int64, in UpdateTaskInput) (*models.Task, error) {
	in.Title = nonBlank(in.Title)
	in.AssignedTo = positiveID(in.AssignedTo)
	if in.empty() {
		return nil, validationError("At least one field must be provided to update")
	}
	if in.Status != nil && !models.ValidTaskStatus(*in.Status) {
		return nil, validationError("Invalid status")
	}

	var task models.Task
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTaskCreatorOrAssignee(ctx, tx, taskID, userID)
		if err != nil {
			return fmt.Errorf("failed to check task access: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to update this task")
		}

		row := tx.QueryRow(ctx, `
			UPDATE tasks
			SET title = COALESCE($1, title),
			    description = COALESCE($2, description),
			    assigned_to = COALESCE($3, assigned_to),
			    due_date = COALESCE($4, due_date),
			    status = COALESCE($5, status)
			WHERE id = $6
			RETURNING `+taskColumns,
			in.Title, in.Description, in.AssignedTo, in.DueDate, in.Status, taskID,
		)
		if err := scanTask(row, &task); err != nil {
			if isForeignKeyViolation(err) {
				return validationError(msgUnknownAssignee)
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID int64) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTaskCreator(ctx, tx, taskID, userID)
		if err != nil {
			return fmt.Errorf("failed to check task creator: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to delete this task")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// positiveID reports a zero or negative id as absent.
func positiveID(p *int64) *int64 {
	if p == nil || *p <= 0 {
		return nil
	}
	return p
}
