package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"tilp-connect/internal/media"
	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler dashboard, its export and attached media.
type DashboardHandler struct {
	dashboard *service.DashboardService
	media     *media.LocalStorage // nil when media storage is disabled
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, mediaStorage *media.LocalStorage, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, media: mediaStorage, logger: logger}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/media/") {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w)
			return
		}
		h.ServeMedia(w, r)
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	switch r.URL.Path {
	case "/dashboard/api/v1/dashboard":
		h.Dashboard(w, r)
	case "/dashboard/api/v1/export":
		h.Export(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Dashboard query: child=<name> (staff only; "All Children" or empty for all)
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboard.Dashboard(r.Context(), identityFrom(r), r.URL.Query().Get("child"))
	if err != nil {
		writeError(w, h.logger, "Dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboard.Dashboard(r.Context(), identityFrom(r), r.URL.Query().Get("child"))
	if err != nil {
		writeError(w, h.logger, "Dashboard export", err)
		return
	}
	data, err := GenerateDashboardExport(resp)
	if err != nil {
		h.logger.Error("GenerateDashboardExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=progress-report.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ServeMedia streams an attachment that belongs to an entry the caller can
// see. Anything else is reported as not found.
func (h *DashboardHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(r.URL.Path, "/media/")
	if !ok || h.media == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := media.PathPrefix + name
	identity := identityFrom(r)

	allowed, err := h.dashboard.CanViewMedia(r.Context(), identity, path)
	if err != nil {
		writeError(w, h.logger, "CanViewMedia", err)
		return
	}
	if !allowed {
		h.logger.Warn("Media access denied",
			zap.String("username", identity.Username),
			zap.String("path", path),
		)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f, err := h.media.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Error("Open media failed", zap.String("path", path), zap.Error(err))
		}
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("Stat media failed", zap.String("path", path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", media.ContentType(path))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
