package middleware

import (
	"errors"
	"net/http"

	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/dimitrije/taskboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

const (
	SessionUserKey = "session_user"
	SessionIDKey   = "session_id"
)

// Session authenticates a request from its signed session cookie and puts
// the session user in the context.
func Session(signer *services.SessionSigner, store services.SessionStore, cookieName string, logger *zap.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		sess, err := loadSession(c, signer, store, cookieName)
		if errors.Is(err, errNoSession) {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err != nil {
			logger.Error("failed to load session", zap.Error(err))
			abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		setSession(c, sess)
		c.Next()
	}
}

// OptionalSession loads the session like Session but lets anonymous requests
// through, leaving the decision to a later handler such as RequireAdmin.
func OptionalSession(signer *services.SessionSigner, store services.SessionStore, cookieName string, logger *zap.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		sess, err := loadSession(c, signer, store, cookieName)
		if err != nil && !errors.Is(err, errNoSession) {
			logger.Error("failed to load session", zap.Error(err))
			abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		if sess != nil {
			setSession(c, sess)
		}
		c.Next()
	}
}

var errNoSession = errors.New("no session")

// loadSession returns errNoSession for a missing, forged, expired or
// destroyed session. Any other error comes from the store.
func loadSession(c *drift.Context, signer *services.SessionSigner, store services.SessionStore, cookieName string) (*models.Session, error) {
	cookie, err := c.Request.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, errNoSession
	}

	sessionID, err := signer.Verify(cookie.Value)
	if err != nil {
		return nil, errNoSession
	}

	sess, err := store.Get(c.Request.Context(), sessionID)
	if errors.Is(err, services.ErrSessionNotFound) {
		return nil, errNoSession
	}
	return sess, err
}

func setSession(c *drift.Context, sess *models.Session) {
	c.Set(SessionUserKey, sess.User)
	c.Set(SessionIDKey, sess.ID)
}

// RequireAdmin must run after Session or OptionalSession. Anonymous callers
// are refused like any other non-admin.
func RequireAdmin() drift.HandlerFunc {
	return func(c *drift.Context) {
		user, ok := GetSessionUser(c)
		if !ok || !user.IsAdmin() {
			abort(c, http.StatusForbidden, "Forbidden: Admins only")
			return
		}
		c.Next()
	}
}

func GetSessionUser(c *drift.Context) (models.SessionUser, bool) {
	if v, ok := c.Get(SessionUserKey); ok {
		if user, ok := v.(models.SessionUser); ok {
			return user, true
		}
	}
	return models.SessionUser{}, false
}

func GetUserID(c *drift.Context) int64 {
	user, _ := GetSessionUser(c)
	return user.ID
}

func GetSessionID(c *drift.Context) string {
	if v, ok := c.Get(SessionIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func abort(c *drift.Context, status int, message string) {
	_ = c.JSON(status, dto.ErrorResponse{StatusCode: status, Message: message})
	c.Abort()
}
