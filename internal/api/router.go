package api

import (
	"net/http"

	"logistics-service/internal/api/handlers"
	"logistics-service/internal/auth"
	"logistics-service/internal/services"
)

// Pages mounts additional handlers (the HTML views) on the shared mux.
type Pages interface {
	Register(mux *http.ServeMux)
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Resources services.Resources
	Validator *services.DispatchValidator
	Auth      *auth.Authenticator
	Sessions  *auth.SessionManager
	DB        handlers.Pinger
	PageSize  int
	Version   string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps, pages ...Pages) http.Handler {
	mux := http.NewServeMux()

	health := &handlers.HealthHandler{DB: d.DB}
	tokens := &handlers.TokenHandler{Auth: d.Auth}
	validate := &handlers.DispatchValidateHandler{Validator: d.Validator}
	schema := handlers.NewSchemaHandler("Logistics API", d.Version)

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /api/{$}", handlers.Root)
	mux.HandleFunc("POST /api/token/{$}", tokens.Obtain)
	mux.HandleFunc("POST /api/token/refresh/{$}", tokens.Refresh)
	mux.HandleFunc("POST /api/dispatches/validate/{$}", validate.Validate)
	mux.HandleFunc("GET /api/schema/{$}", schema.Schema)
	mux.HandleFunc("GET /api/schema/swagger/{$}", schema.Swagger)
	mux.HandleFunc("GET /api/schema/redoc/{$}", schema.Redoc)

	for _, res := range d.Resources {
		(&handlers.ResourceHandler{Resource: res, PageSize: d.PageSize}).Register(mux)
	}
	for _, p := range pages {
		p.Register(mux)
	}

	var h http.Handler = mux
	h = csrfMiddleware(d.Sessions)(h)
	h = bearerMiddleware(d.Auth)(h)
	h = d.Sessions.Middleware(h)
	h = loggingMiddleware(h)
	return requestIDMiddleware(h)
}
