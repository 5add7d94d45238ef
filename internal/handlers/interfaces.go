package handlers

import (
	"context"

	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/dimitrije/taskboard-api/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.SessionUser, error)
	ResetPassword(ctx context.Context, email, newPassword string) (int64, error)
	ListAll(ctx context.Context, actor models.SessionUser) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name, description string, creatorID int64) (*models.Team, error)
	List(ctx context.Context, userID int64) ([]models.Team, error)
	Update(ctx context.Context, teamID, userID int64, in services.UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, teamID, userID int64) error
	AddMember(ctx context.Context, teamID, userID, memberID int64) error
	GetMembers(ctx context.Context, teamID, userID int64) ([]models.TeamMembership, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, in services.CreateTaskInput, creatorID int64) (*models.Task, error)
	List(ctx context.Context, userID int64, filter services.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, taskID, userID int64, in services.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, taskID, userID int64) error
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
