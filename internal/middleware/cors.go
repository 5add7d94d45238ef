package middleware

import (
	"github.com/m1z23r/drift/pkg/drift"
)

// AllowCredentials lets a browser on the configured origin send the session
// cookie with cross-origin requests. Credentials are never allowed for a
// wildcard origin. It must run before the CORS middleware so preflight
// answers carry the header too.
func AllowCredentials(origin string) drift.HandlerFunc {
	return func(c *drift.Context) {
		if origin != "" && origin != "*" && c.Request.Header.Get("Origin") == origin {
			c.Response.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Response.Header().Add("Vary", "Origin")
		}
		c.Next()
	}
}
