package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"beacon-dashboard/internal/logging"
)

// NewRouter wires every route behind the shared middleware stack.
func NewRouter(d Deps) http.Handler {
	logger := logging.OrDefault(d.Logger)

	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Gateway
	sh := SurveyHandler{Gateway: d.Gateway, TTLSeconds: d.Config.Cache.TTLSeconds}
	r.Get("/api/survey-data", sh.Get)

	hh := HealthHandler{}
	r.Get("/api/test", hh.Test)
	r.Get("/health", hh.Health)

	// Dashboard
	dh := DashboardHandler{Poller: d.Poller, Renderer: d.Renderer, Logger: logger}
	r.Get("/", dh.Page)
	r.Get("/api/dashboard", dh.State)
	r.Get("/api/dashboard/status", dh.Status)
	r.Post("/api/dashboard/refresh", dh.Refresh)

	if d.FetchLog != nil {
		fh := FetchLogHandler{Log: d.FetchLog}
		r.Get("/api/fetch-log", fh.List)
	}

	ch := ConfigHandler{Cfg: d.Config, UserCfgPath: d.ConfigPath}
	r.Get("/api/config", ch.Get)
	r.Get("/api/config/path", ch.Path)
	r.Get("/api/config/validate", ch.Validate)

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	r.Get("/events", eh.ServeSSE)

	return Chain(r, RequestID, Recover(logger), AccessLog(logger), Cors(d.CorsOrigins))
}
