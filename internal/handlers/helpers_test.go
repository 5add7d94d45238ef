package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/taskboard-api/internal/metrics"
	"github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/dimitrije/taskboard-api/internal/models"
	"github.com/dimitrije/taskboard-api/internal/testutil"
	"github.com/dimitrije/taskboard-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSessionID = "11111111-2222-3333-4444-555555555555"

var (
	alice = models.SessionUser{ID: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "A", Role: models.RoleUser}
	root  = models.SessionUser{ID: 9, Username: "root", Email: "root@example.com", FirstName: "Root", LastName: "R", Role: models.RoleAdmin}
)

type testEnv struct {
	store   *testutil.MockSessionStore
	metrics *metrics.Metrics
	protect drift.HandlerFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := new(testutil.MockSessionStore)
	t.Cleanup(func() { store.AssertExpectations(t) })

	return &testEnv{
		store:   store,
		metrics: metrics.New(),
		protect: middleware.Session(testutil.TestSessionSigner(), store, testutil.TestCookieName, zap.NewNop()),
	}
}

// signIn makes the session store resolve the test cookie to user.
func (e *testEnv) signIn(user models.SessionUser) {
	e.store.On("Get", mock.Anything, testSessionID).
		Return(&models.Session{ID: testSessionID, User: user}, nil)
}

func (e *testEnv) do(t *testing.T, app http.Handler, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.AddCookie(testutil.SessionCookie(t, testutil.TestSessionSigner(), testSessionID))
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder, data any) dto.APIResponse {
	t.Helper()
	var envelope struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return dto.APIResponse{StatusCode: envelope.StatusCode, Message: envelope.Message}
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testutil.TestCookieName {
			return c
		}
	}
	return nil
}
