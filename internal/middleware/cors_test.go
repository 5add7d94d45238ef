package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
)

func TestAllowCredentials(t *testing.T) {
	testCases := []struct {
		name       string
		configured string
		origin     string
		want       string
	}{
		{"configured origin", "https://board.example.com", "https://board.example.com", "true"},
		{"other origin", "https://board.example.com", "https://evil.example.com", ""},
		{"same-origin request", "https://board.example.com", "", ""},
		{"wildcard", "*", "https://board.example.com", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := drift.New()
			app.Use(AllowCredentials(tc.configured))
			app.Get("/api/users/me", func(c *drift.Context) {
				_ = c.JSON(http.StatusOK, nil)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}
