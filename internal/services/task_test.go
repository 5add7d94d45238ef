package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{
	"id", "team_id", "title", "description", "assigned_to", "due_date", "status", "created_by", "created_at",
}

const (
	taskCreatorOrAssigneeQuery = `SELECT created_by = \$2 OR COALESCE\(assigned_to = \$2, false\) FROM tasks WHERE id = \$1 FOR UPDATE`
	taskCreatorQuery           = `SELECT created_by = \$2 FROM tasks WHERE id = \$1 FOR UPDATE`
)

func setupTaskService(t *testing.T) (*TaskService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTaskService(db), mock
}

func int64Ptr(v int64) *int64 { return &v }

func TestTaskService_Create(t *testing.T) {
	svc, mock := setupTaskService(t)
	now := time.Now()
	var noAssignee *int64
	var noDue *time.Time

	mock.ExpectBegin()
	mock.ExpectQuery(teamCreatorOrMemberQuery).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Write docs", "", int64(10), noAssignee, noDue, models.TaskStatusPending, int64(2)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(int64(100), int64(10), "Write docs", "", noAssignee, noDue, models.TaskStatusPending, int64(2), now))
	mock.ExpectCommit()

	task, err := svc.Create(context.Background(), CreateTaskInput{Title: "Write docs", TeamID: 10}, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(100), task.ID)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, "", task.Description)
	assert.Nil(t, task.AssignedTo)
	assert.Equal(t, int64(2), task.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_WithAllFields(t *testing.T) {
	svc, mock := setupTaskService(t)
	now := time.Now()
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	assignee := int64Ptr(3)

	mock.ExpectBegin()
	mock.ExpectQuery(teamCreatorOrMemberQuery).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Ship", "v1 release", int64(10), assignee, &due, models.TaskStatusInProgress, int64(2)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(int64(101), int64(10), "Ship", "v1 release", assignee, &due, models.TaskStatusInProgress, int64(2), now))
	mock.ExpectCommit()

	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title:       "Ship",
		Description: "v1 release",
		TeamID:      10,
		AssignedTo:  assignee,
		DueDate:     &due,
		Status:      models.TaskStatusInProgress,
	}, 2)

	require.NoError(t, err)
	require.NotNil(t, task.AssignedTo)
	assert.Equal(t, int64(3), *task.AssignedTo)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_Validation(t *testing.T) {
	svc, mock := setupTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTaskInput{Title: " ", TeamID: 10}, 2)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateTaskInput{Title: "x"}, 2)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateTaskInput{Title: "x", TeamID: 10, Status: "done"}, 2)
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_NonMember(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(teamCreatorOrMemberQuery).
		WithArgs(int64(10), int64(9)).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateTaskInput{Title: "Sneaky", TeamID: 10}, 9)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Create_NonPositiveAssigneeIsUnassigned(t *testing.T) {
	for _, assignee := range []int64{0, -4} {
		svc, mock := setupTaskService(t)
		now := time.Now()
		var noAssignee *int64
		var noDue *time.Time

		mock.ExpectBegin()
		mock.ExpectQuery(teamCreatorOrMemberQuery).
			WithArgs(int64(10), int64(2)).
			WillReturnRows(existsRow(true))
		mock.ExpectQuery(`INSERT INTO tasks`).
			WithArgs("Write docs", "", int64(10), noAssignee, noDue, models.TaskStatusPending, int64(2)).
			WillReturnRows(pgxmock.NewRows(taskRowColumns).
				AddRow(int64(100), int64(10), "Write docs", "", noAssignee, noDue, models.TaskStatusPending, int64(2), now))
		mock.ExpectCommit()

		task, err := svc.Create(context.Background(),
			CreateTaskInput{Title: "Write docs", TeamID: 10, AssignedTo: int64Ptr(assignee)}, 2)

		require.NoError(t, err, "assigned_to=%d", assignee)
		assert.Nil(t, task.AssignedTo)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestTaskService_Create_UnknownAssignee(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(teamCreatorOrMemberQuery).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("Write docs", "", int64(10), int64Ptr(999), pgxmock.AnyArg(), models.TaskStatusPending, int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(),
		CreateTaskInput{Title: "Write docs", TeamID: 10, AssignedTo: int64Ptr(999)}, 2)

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "Assigned user does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List(t *testing.T) {
	svc, mock := setupTaskService(t)
	now := time.Now()
	var noAssignee *int64
	var noDue *time.Time

	mock.ExpectQuery(`SELECT .+ FROM tasks t JOIN teams tm .+ ORDER BY t.id`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(int64(100), int64(10), "Write docs", "", noAssignee, noDue, models.TaskStatusPending, int64(2), now))

	tasks, err := svc.List(context.Background(), 2, TaskFilter{})

	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List_Filters(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectQuery(`AND t.team_id = \$2 AND t.assigned_to = \$3 ORDER BY t.id`).
		WithArgs(int64(2), int64(10), int64(3)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	tasks, err := svc.List(context.Background(), 2, TaskFilter{TeamID: int64Ptr(10), AssignedTo: int64Ptr(3)})

	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_List_AssigneeOnly(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectQuery(`AND t.assigned_to = \$2 ORDER BY t.id`).
		WithArgs(int64(2), int64(3)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	_, err := svc.List(context.Background(), 2, TaskFilter{AssignedTo: int64Ptr(3)})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update(t *testing.T) {
	svc, mock := setupTaskService(t)
	now := time.Now()
	status := models.TaskStatusCompleted
	var noAssignee *int64
	var noDue *time.Time

	mock.ExpectBegin()
	mock.ExpectQuery(taskCreatorOrAssigneeQuery).
		WithArgs(int64(100), int64(3)).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(`UPDATE tasks SET title = COALESCE`).
		WithArgs((*string)(nil), (*string)(nil), noAssignee, noDue, &status, int64(100)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(int64(100), int64(10), "Write docs", "", int64Ptr(3), noDue, status, int64(2), now))
	mock.ExpectCommit()

	task, err := svc.Update(context.Background(), 100, 3, UpdateTaskInput{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, "Write docs", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update_NoFields(t *testing.T) {
	svc, mock := setupTaskService(t)

	_, err := svc.Update(context.Background(), 100, 2, UpdateTaskInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(context.Background(), 100, 2, UpdateTaskInput{Title: strPtr("   ")})
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update_InvalidStatus(t *testing.T) {
	svc, mock := setupTaskService(t)

	_, err := svc.Update(context.Background(), 100, 2, UpdateTaskInput{Status: strPtr("archived")})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update_Outsider(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(taskCreatorOrAssigneeQuery).
		WithArgs(int64(100), int64(9)).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 100, 9, UpdateTaskInput{Title: strPtr("Mine now")})

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update_NonPositiveAssigneeOnly(t *testing.T) {
	svc, mock := setupTaskService(t)

	_, err := svc.Update(context.Background(), 100, 2, UpdateTaskInput{AssignedTo: int64Ptr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(context.Background(), 100, 2, UpdateTaskInput{AssignedTo: int64Ptr(-1)})
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Update_UnknownAssignee(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(taskCreatorOrAssigneeQuery).
		WithArgs(int64(100), int64(2)).
		WillReturnRows(existsRow(true))
	mock.ExpectQuery(`UPDATE tasks SET title = COALESCE`).
		WithArgs((*string)(nil), (*string)(nil), int64Ptr(999), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(100)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err := svc.Update(context.Background(), 100, 2, UpdateTaskInput{AssignedTo: int64Ptr(999)})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Delete_Creator(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(taskCreatorQuery).
		WithArgs(int64(100), int64(2)).
		WillReturnRows(existsRow(true))
	mock.ExpectExec(`DELETE FROM tasks WHERE id`).
		WithArgs(int64(100)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.Delete(context.Background(), 100, 2)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskService_Delete_AssigneeForbidden(t *testing.T) {
	svc, mock := setupTaskService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(taskCreatorQuery).
		WithArgs(int64(100), int64(3)).
		WillReturnRows(existsRow(false))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), 100, 3)

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
