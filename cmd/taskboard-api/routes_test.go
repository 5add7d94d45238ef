package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dimitrije/taskboard-api/internal/handlers"
	"github.com/dimitrije/taskboard-api/internal/metrics"
	authmw "github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/dimitrije/taskboard-api/internal/services"
	"github.com/dimitrije/taskboard-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const routeSessionID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

type routeMocks struct {
	users    *testutil.MockUserService
	teams    *testutil.MockTeamService
	tasks    *testutil.MockTaskService
	sessions *testutil.MockSessionStore
	pinger   *testutil.MockPinger
}

func setupRouter(t *testing.T, user models.SessionUser) (http.Handler, *routeMocks) {
	t.Helper()
	mocks := &routeMocks{
		users:    new(testutil.MockUserService),
		teams:    new(testutil.MockTeamService),
		tasks:    new(testutil.MockTaskService),
		sessions: new(testutil.MockSessionStore),
		pinger:   new(testutil.MockPinger),
	}
	mocks.sessions.On("Get", mock.Anything, routeSessionID).
		Return(&models.Session{ID: routeSessionID, User: user}, nil).Maybe()

	m := metrics.New()
	signer := testutil.TestSessionSigner()
	logger := zap.NewNop()

	router := newRouter(routeDeps{
		Users: handlers.NewUserHandler(mocks.users, mocks.sessions, signer,
			handlers.CookieConfig{Name: testutil.TestCookieName, TTL: signer.TTL()}, m, logger),
		Teams:           handlers.NewTeamHandler(mocks.teams, m, logger),
		Tasks:           handlers.NewTaskHandler(mocks.tasks, m, logger),
		Health:          handlers.NewHealthHandler(mocks.pinger, logger),
		Session:         authmw.Session(signer, mocks.sessions, testutil.TestCookieName, logger),
		OptionalSession: authmw.OptionalSession(signer, mocks.sessions, testutil.TestCookieName, logger),
		Metrics:         m,
		Logger:          logger,
		CORSOrigin:      "*",
	})
	return router, mocks
}

func call(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(testutil.SessionCookie(t, testutil.TestSessionSigner(), routeSessionID))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var member = models.SessionUser{ID: 1, Username: "alice", Role: models.RoleUser}

func TestRouter_TeamRoutes(t *testing.T) {
	router, mocks := setupRouter(t, member)

	mocks.teams.On("List", mock.Anything, member.ID).Return([]models.Team{}, nil)
	mocks.teams.On("GetMembers", mock.Anything, int64(3), member.ID).Return([]models.TeamMembership{}, nil)
	mocks.teams.On("Delete", mock.Anything, int64(3), member.ID).Return(nil)

	assert.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/team/teams/get-team", "").Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/team/teams/3/members", "").Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodDelete, "/api/team/teams/3", "").Code)
	mocks.teams.AssertExpectations(t)
}

func TestRouter_TaskRoutesAndAliases(t *testing.T) {
	router, mocks := setupRouter(t, member)

	mocks.tasks.On("List", mock.Anything, member.ID, services.TaskFilter{}).Return([]models.Task{}, nil)
	mocks.tasks.On("Update", mock.Anything, int64(7), member.ID, mock.Anything).Return(&models.Task{ID: 7}, nil).Twice()
	mocks.tasks.On("Delete", mock.Anything, int64(7), member.ID).Return(nil).Twice()

	assert.Equal(t, http.StatusOK, call(t, router, http.MethodGet, "/api/tasks/tasks/get-tasks", "").Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodPut, "/api/tasks/tasks/7", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodPut, "/api/tasks/tasks/updat-tasks/7", `{"status":"completed"}`).Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodDelete, "/api/tasks/tasks/7", "").Code)
	assert.Equal(t, http.StatusOK, call(t, router, http.MethodDelete, "/api/tasks/tasks/delete-tasks/7", "").Code)
	mocks.tasks.AssertExpectations(t)
}

func TestRouter_AdminRoute(t *testing.T) {
	router, _ := setupRouter(t, member)

	rec := call(t, router, http.MethodGet, "/api/users/get-all-users", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminRouteWithoutCookie(t *testing.T) {
	router, mocks := setupRouter(t, member)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/get-all-users", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Forbidden: Admins only")
	mocks.users.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything)
}

func TestRouter_ProtectedWithoutCookie(t *testing.T) {
	router, _ := setupRouter(t, member)

	for _, path := range []string{"/api/users/me", "/api/team/teams/get-team", "/api/tasks/tasks/get-tasks"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router, mocks := setupRouter(t, member)
	mocks.pinger.On("Ping", mock.Anything).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskboard_http_requests_total")
}
