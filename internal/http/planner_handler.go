package httpapi

import (
	"fmt"
	"net/http"

	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

// PlannerHandler session plan form and export.
type PlannerHandler struct {
	planner *service.PlannerService
	logger  *zap.Logger
}

func NewPlannerHandler(planner *service.PlannerService, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{planner: planner, logger: logger}
}

func (h *PlannerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/planner/api/v1/options":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Options(w, r)
	case "/planner/api/v1/plans":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.SavePlan(w, r)
	case "/planner/api/v1/plans/export":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ExportPlans(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *PlannerHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.planner.Options(identityFrom(r))
	if err != nil {
		writeError(w, h.logger, "Planner options", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(opts))
}

func (h *PlannerHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var req service.SavePlanRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	plan, err := h.planner.SavePlan(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, h.logger, "SavePlan", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(plan))
}

func (h *PlannerHandler) ExportPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planner.ListPlans(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, h.logger, "ListPlans", err)
		return
	}
	data, err := GenerateSessionPlanExport(plans)
	if err != nil {
		h.logger.Error("GenerateSessionPlanExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=session-plans.xlsx")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
