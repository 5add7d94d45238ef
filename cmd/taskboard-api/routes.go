package main

import (
	"net/http"

	"github.com/dimitrije/taskboard-api/internal/handlers"
	"github.com/dimitrije/taskboard-api/internal/metrics"
	authmw "github.com/dimitrije/taskboard-api/internal/middleware"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

type routeDeps struct {
	Users  *handlers.UserHandler
	Teams  *handlers.TeamHandler
	Tasks  *handlers.TaskHandler
	Health *handlers.HealthHandler

	// Session authenticates the request and loads the session user.
	Session drift.HandlerFunc
	// OptionalSession loads the session user when there is one.
	OptionalSession drift.HandlerFunc

	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Production bool
	CORSOrigin string
}

// newRouter builds the HTTP surface. Routes whose static segment sits where a
// sibling route has a parameter (get-team, get-tasks and the legacy task
// aliases) live on a second drift app; the outer mux picks between them.
func newRouter(d routeDeps) http.Handler {
	stack := []drift.HandlerFunc{
		middleware.Recovery(),
		authmw.AllowCredentials(d.CORSOrigin),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{d.CORSOrigin},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       86400,
		}),
		middleware.BodyParser(),
		authmw.Observe(d.Metrics, d.Logger),
	}

	mode := drift.DebugMode
	if d.Production {
		mode = drift.ReleaseMode
	}

	app := drift.New()
	app.SetMode(mode)
	for _, mw := range stack {
		app.Use(mw)
	}

	api := app.Group("/api")
	api.Get("/health", d.Health.Check)

	users := api.Group("/users")
	users.Post("/register", d.Users.Register)
	users.Post("/login", d.Users.Login)
	users.Post("/forgot-password", d.Users.ForgotPassword)

	account := users.Group("")
	account.Use(d.Session)
	account.Post("/logout", d.Users.Logout)
	account.Get("/me", d.Users.Me)

	admin := users.Group("")
	admin.Use(d.OptionalSession)
	admin.Use(authmw.RequireAdmin())
	admin.Get("/get-all-users", d.Users.GetAllUsers)

	teams := api.Group("/team")
	teams.Use(d.Session)
	teams.Post("/teams", d.Teams.Create)
	teams.Put("/teams/:id", d.Teams.Update)
	teams.Delete("/teams/:id", d.Teams.Delete)
	teams.Post("/teams/:id/members", d.Teams.AddMember)
	teams.Get("/teams/:id/members", d.Teams.GetMembers)

	tasks := api.Group("/tasks")
	tasks.Use(d.Session)
	tasks.Post("/tasks", d.Tasks.Create)
	tasks.Put("/tasks/:id", d.Tasks.Update)
	tasks.Delete("/tasks/:id", d.Tasks.Delete)

	listings := drift.New()
	listings.SetMode(mode)
	for _, mw := range stack {
		listings.Use(mw)
	}
	listings.Use(d.Session)
	listings.Get("/api/team/teams/get-team", d.Teams.List)
	listings.Get("/api/tasks/tasks/get-tasks", d.Tasks.List)
	listings.Put("/api/tasks/tasks/updat-tasks/:id", d.Tasks.Update)
	listings.Delete("/api/tasks/tasks/delete-tasks/:id", d.Tasks.Delete)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.Handle("/api/team/teams/get-team", listings)
	mux.Handle("/api/tasks/tasks/get-tasks", listings)
	mux.Handle("/api/tasks/tasks/updat-tasks/", listings)
	mux.Handle("/api/tasks/tasks/delete-tasks/", listings)
	mux.Handle("/", app)
	return mux
}
