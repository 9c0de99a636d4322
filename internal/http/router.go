package httpapi

import (
	"net/http"

	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	auth   service.AuthService
	logger *zap.Logger
}

func NewRouter(auth service.AuthService, logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		auth:   auth,
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// HandleSession registers h behind RequireSession.
func (r *Router) HandleSession(pattern string, h http.Handler) {
	r.mux.Handle(pattern, RequireSession(r.auth, r.logger, h))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

// RegisterAuthRoutes login is public; me resolves the session itself.
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.HandleHandler("/auth/api/v1/", h)
}

func (r *Router) RegisterTrackerRoutes(h *TrackerHandler) {
	r.HandleSession("/tracker/api/v1/", h)
}

func (r *Router) RegisterPlannerRoutes(h *PlannerHandler) {
	r.HandleSession("/planner/api/v1/", h)
}

// RegisterDashboardRoutes dashboard, export and /media/{file}.
func (r *Router) RegisterDashboardRoutes(h *DashboardHandler) {
	r.HandleSession("/dashboard/api/v1/", h)
	r.HandleSession("/media/", h)
}

func (r *Router) RegisterAdminRoutes(h *AdminHandler) {
	r.HandleSession("/admin/api/v1/", h)
}
