package services

import (
	"context"
	"errors"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// Authorizer holds the access checks shared by the team and task services.
// Each check locks the row it reads, so inside a transaction the answer holds
// until the caller's mutation commits. A row that does not exist and a row
// the user may not touch both yield false.
type Authorizer struct{}

// IsTeamCreatorOrMember takes a share lock on the team: members may add
// tasks concurrently, but the team cannot be deleted under them.
func (Authorizer) IsTeamCreatorOrMember(ctx context.Context, q database.Querier, teamID, userID int64) (bool, error) {
	return check(q.QueryRow(ctx, `
		SELECT t.creator_id = $2 OR EXISTS(
			SELECT 1 FROM team_memberships tm WHERE tm.team_id = t.id AND tm.user_id = $2
		)
		FROM teams t
		WHERE t.id = $1
		FOR SHARE OF t
	`, teamID, userID))
}

func (Authorizer) IsTeamCreator(ctx context.Context, q database.Querier, teamID, userID int64) (bool, error) {
	return check(q.QueryRow(ctx, `
		SELECT creator_id = $2 FROM teams
		WHERE id = $1
		FOR UPDATE
	`, teamID, userID))
}

// IsTaskCreatorOrAssignee locks the task so a concurrent reassignment waits
// for the caller to finish.
func (Authorizer) IsTaskCreatorOrAssignee(ctx context.Context, q database.Querier, taskID, userID int64) (bool, error) {
	return check(q.QueryRow(ctx, `
		SELECT created_by = $2 OR COALESCE(assigned_to = $2, false) FROM tasks
		WHERE id = $1
		FOR UPDATE
	`, taskID, userID))
}

func (Authorizer) IsTaskCreator(ctx context.Context, q database.Querier, taskID, userID int64) (bool, error) {
	return check(q.QueryRow(ctx, `
		SELECT created_by = $2 FROM tasks
		WHERE id = $1
		FOR UPDATE
	`, taskID, userID))
}

func (Authorizer) IsAdmin(user models.SessionUser) bool {
	return user.IsAdmin()
}

func check(row pgx.Row) (bool, error) {
	var ok bool
	err := row.Scan(&ok)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
