package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/jackc/pgx/v5"
)

type TeamService struct {
	db    *database.DB
	authz Authorizer
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

type UpdateTeamInput struct {
	Name        *string
	Description *string
}

func (in UpdateTeamInput) empty() bool {
	return in.Name == nil && in.Description == nil
}

func (s *TeamService) Create(ctx context.Context, name, description string, creatorID int64) (*models.Team, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, validationError("Name and description are required")
	}

	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO teams (name, description, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, creator_id, created_at
	`, name, description, creatorID).Scan(&team.ID, &team.Name, &team.Description, &team.CreatorID, &team.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return &team, nil
}

// List returns every team the user created or is a member of.
func (s *TeamService) List(ctx context.Context, userID int64) ([]models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.name, t.description, t.creator_id, t.created_at
		FROM teams t
		WHERE t.creator_id = $1
		OR t.id IN (SELECT team_id FROM team_memberships WHERE user_id = $1)
		ORDER BY t.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.CreatorID, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *TeamService) Update(ctx context.Context, teamID, userID int64, in UpdateTeamInput) (*models.Team, error) {
	in.Name = nonBlank(in.Name)
	in.Description = nonBlank(in.Description)
	if in.empty() {
		return nil, validationError("At least one of name or description must be provided")
	}

	var team models.Team
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTeamCreator(ctx, tx, teamID, userID)
		if err != nil {
			return fmt.Errorf("failed to check team creator: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to update this team")
		}

		err = tx.QueryRow(ctx, `
			UPDATE teams
			SET name = COALESCE($1, name),
			    description = COALESCE($2, description)
			WHERE id = $3
			RETURNING id, name, description, creator_id, created_at
		`, in.Name, in.Description, teamID).Scan(&team.ID, &team.Name, &team.Description, &team.CreatorID, &team.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Delete removes the team; memberships and tasks go with it through the
// foreign keys.
func (s *TeamService) Delete(ctx context.Context, teamID, userID int64) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTeamCreator(ctx, tx, teamID, userID)
		if err != nil {
			return fmt.Errorf("failed to check team creator: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to delete this team")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
}

// AddMember adds memberID to the team. Adding an existing member is a no-op.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID, memberID int64) error {
	if memberID <= 0 {
		return validationError("User ID to add is required")
	}

	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		ok, err := s.authz.IsTeamCreator(ctx, tx, teamID, userID)
		if err != nil {
			return fmt.Errorf("failed to check team creator: %w", err)
		}
		if !ok {
			return forbiddenError("Not authorized to add members to this team")
		}

		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
		`, memberID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return notFoundError("User to add not found")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO team_memberships (team_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, teamID, memberID, models.MembershipRoleMember)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		return nil
	})
}

func (s *TeamService) GetMembers(ctx context.Context, teamID, userID int64) ([]models.TeamMembership, error) {
	ok, err := s.authz.IsTeamCreatorOrMember(ctx, s.db.Pool, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check team access: %w", err)
	}
	if !ok {
		return nil, forbiddenError("Not authorized to view this team")
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.joined_at,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.role, u.created_at
		FROM team_memberships tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.TeamMembership{}
	for rows.Next() {
		var member models.TeamMembership
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.JoinedAt,
			&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// nonBlank trims *p and reports a blank value as absent.
func nonBlank(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
