package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type UserService struct {
	db         *database.DB
	authz      Authorizer
	bcryptCost int
}

func NewUserService(db *database.DB, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{db: db, bcryptCost: bcryptCost}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.normalize()
	for _, field := range []string{in.Username, in.Email, in.Password, in.FirstName, in.LastName} {
		if field == "" {
			return nil, validationError("All fields are required")
		}
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)
		`, in.Username, in.Email).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists {
			return conflictError("Username or Email already exists")
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, first_name, last_name, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, username, email, first_name, last_name, role, created_at
		`, in.Username, in.Email, hash, in.FirstName, in.LastName, models.RoleUser).Scan(
			&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return conflictError("Username or Email already exists")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login verifies the credentials and returns the projection to keep in the
// session. Creating the session is left to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.SessionUser, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationError("Email and Password are required")
	}

	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name, role, created_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, authError("Invalid password")
	}

	projection := user.SessionUser()
	return &projection, nil
}

// ResetPassword overwrites the stored hash for the given email and returns
// the id of the affected user. Only presence is checked, plus the bcrypt input
// limit; the registration length rules do not apply here.
func (s *UserService) ResetPassword(ctx context.Context, email, newPassword string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" || newPassword == "" {
		return 0, validationError("Email and New Password are required")
	}
	if len(newPassword) > maxPasswordBytes {
		return 0, validationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return 0, err
	}

	var userID int64
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE users SET password_hash = $1
		WHERE email = $2
		RETURNING id
	`, hash, email).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, notFoundError("User not found")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update password: %w", err)
	}

	return userID, nil
}

func (s *UserService) ListAll(ctx context.Context, actor models.SessionUser) ([]models.User, error) {
	if !s.authz.IsAdmin(actor) {
		return nil, forbiddenError("Forbidden: Admins only")
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, username, email, first_name, last_name, role, created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, username, email, first_name, last_name, role, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return validationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return validationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}
