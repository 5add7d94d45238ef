package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plain-text password of every fixture user
const FixturePassword = "password123"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Username:  fmt.Sprintf("user%d", f.counter),
		Email:     fmt.Sprintf("user%d@example.com", f.counter),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User %d", f.counter),
		Role:      models.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	err = f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, user.Username, user.Email, string(hash), user.FirstName, user.LastName, user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithUsername sets the user's username
func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// AsAdmin gives the user the admin role
func AsAdmin() UserOption {
	return func(u *models.User) {
		u.Role = models.RoleAdmin
	}
}

// CreateTeam creates a test team owned by creator
func (f *Fixtures) CreateTeam(t *testing.T, creator *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:        fmt.Sprintf("Test Team %d", f.counter),
		Description: "fixture team",
		CreatorID:   creator.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO teams (name, description, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, team.Name, team.Description, team.CreatorID).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(team *models.Team) {
		team.Name = name
	}
}

// AddMember inserts a membership row
func (f *Fixtures) AddMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO team_memberships (team_id, user_id, role)
		VALUES ($1, $2, $3)
	`, team.ID, user.ID, models.MembershipRoleMember)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

// CreateTask creates a pending task in team
func (f *Fixtures) CreateTask(t *testing.T, team *models.Team, creator *models.User, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		TeamID:    team.ID,
		Title:     fmt.Sprintf("Task %d", f.counter),
		Status:    models.TaskStatusPending,
		CreatedBy: creator.ID,
	}

	for _, opt := range opts {
		opt(task)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO tasks (team_id, title, description, assigned_to, due_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, task.TeamID, task.Title, task.Description, task.AssignedTo, task.DueDate, task.Status, task.CreatedBy).
		Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// AssignedTo sets the task's assignee
func AssignedTo(user *models.User) TaskOption {
	return func(task *models.Task) {
		id := user.ID
		task.AssignedTo = &id
	}
}
