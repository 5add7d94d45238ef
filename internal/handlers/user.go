package handlers

import (
	"net/http"
	"time"

	"github.com/dimitrije/taskboard-api/internal/metrics"
	"github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/dimitrije/taskboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// CookieConfig controls the session cookie handed out at login.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type UserHandler struct {
	userService UserServiceInterface
	sessions    services.SessionStore
	signer      *services.SessionSigner
	cookie      CookieConfig
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewUserHandler(
	userService UserServiceInterface,
	sessions services.SessionStore,
	signer *services.SessionSigner,
	cookie CookieConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessions:    sessions,
		signer:      signer,
		cookie:      cookie,
		metrics:     m,
		logger:      logger,
	}
}

func (h *UserHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "All fields are required")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.metrics.AuthEvent("register", "failure")
		respondError(c, h.logger, h.metrics, "register", err)
		return
	}

	h.metrics.AuthEvent("register", "success")
	respond(c, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "Email and Password are required")
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.metrics.AuthEvent("login", "failure")
		respondError(c, h.logger, h.metrics, "login", err)
		return
	}

	sess, err := h.sessions.Create(ctx, *user)
	if err != nil {
		respondError(c, h.logger, h.metrics, "login", err)
		return
	}

	value, err := h.signer.Sign(sess.ID)
	if err != nil {
		respondError(c, h.logger, h.metrics, "login", err)
		return
	}

	h.setCookie(c, value, int(h.cookie.TTL.Seconds()))
	h.metrics.AuthEvent("login", "success")
	respond(c, http.StatusOK, user, "Login successful")
}

// ForgotPassword overwrites the password of the account behind the given
// email and signs that account out everywhere.
func (h *UserHandler) ForgotPassword(c *drift.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if err := dto.Validate(req); err != nil {
		respondInvalid(c, err, "Email and New Password are required")
		return
	}

	ctx := c.Request.Context()
	userID, err := h.userService.ResetPassword(ctx, req.Email, req.NewPassword)
	if err != nil {
		h.metrics.AuthEvent("password_reset", "failure")
		respondError(c, h.logger, h.metrics, "forgot-password", err)
		return
	}

	h.logger.Info("password reset",
		zap.Int64("user_id", userID),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	if err := h.sessions.DestroyUser(ctx, userID); err != nil {
		h.logger.Warn("failed to revoke sessions after password reset",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	h.metrics.AuthEvent("password_reset", "success")
	respond(c, http.StatusOK, nil, "Password reset successfully")
}

func (h *UserHandler) GetAllUsers(c *drift.Context) {
	actor, _ := middleware.GetSessionUser(c)

	users, err := h.userService.ListAll(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, h.metrics, "get-all-users", err)
		return
	}

	respond(c, http.StatusOK, users, "Users fetched successfully")
}

func (h *UserHandler) Logout(c *drift.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.logger.Error("failed to destroy session", zap.Error(err))
		respondFailure(c, http.StatusInternalServerError, "Failed to logout", nil)
		return
	}

	h.setCookie(c, "", -1)
	h.metrics.AuthEvent("logout", "success")
	respond(c, http.StatusOK, nil, "Logout successful")
}

func (h *UserHandler) Me(c *drift.Context) {
	user, _ := middleware.GetSessionUser(c)
	respond(c, http.StatusOK, user, "User fetched successfully")
}

func (h *UserHandler) setCookie(c *drift.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	c.Response.Header().Add("Set-Cookie", cookie.String())
}
