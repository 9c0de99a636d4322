package httpapi

import (
	"net/http"

	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

// AuthHandler login, logout and current identity.
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Login(w, r)
	case "/auth/api/v1/logout":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Logout(w, r)
	case "/auth/api/v1/me":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		RequireSession(h.authService, h.logger, http.HandlerFunc(h.Me)).ServeHTTP(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Login body: {"username": "...", "password": "..."}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, maxJSONBody, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	resp, err := h.authService.Login(r.Context(), service.LoginRequest{
		Username:  body.Username,
		Password:  body.Password,
		IPAddress: getClientIP(r),
	})
	if err != nil {
		writeError(w, h.logger, "Login", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, h.logger, "Logout", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(identityFrom(r)))
}
