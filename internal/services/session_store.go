package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/taskboard-api/internal/database"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionStore keeps server-side sessions keyed by an opaque id.
type SessionStore interface {
	Create(ctx context.Context, user models.SessionUser) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Destroy(ctx context.Context, id string) error
	DestroyUser(ctx context.Context, userID int64) error
}

type PostgresSessionStore struct {
	db  *database.DB
	ttl time.Duration
}

func NewPostgresSessionStore(db *database.DB, ttl time.Duration) *PostgresSessionStore {
	return &PostgresSessionStore{db: db, ttl: ttl}
}

func (s *PostgresSessionStore) Create(ctx context.Context, user models.SessionUser) (*models.Session, error) {
	sess := &models.Session{
		ID:        uuid.NewString(),
		User:      user,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	data, err := json.Marshal(sess.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO session (sid, user_id, sess, expire)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, user.ID, data, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var data []byte
	sess := &models.Session{ID: id}

	err := s.db.Pool.QueryRow(ctx, `
		SELECT sess, expire FROM session
		WHERE sid = $1 AND expire > NOW()
	`, id).Scan(&data, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal(data, &sess.User); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return sess, nil
}

func (s *PostgresSessionStore) Destroy(ctx context.Context, id string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM session WHERE sid = $1`, id)
	return err
}

func (s *PostgresSessionStore) DestroyUser(ctx context.Context, userID int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM session WHERE user_id = $1`, userID)
	return err
}

// CleanupExpired removes sessions past their expiry and reports how many
// were deleted.
func (s *PostgresSessionStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM session WHERE expire < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
