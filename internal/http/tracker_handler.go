package httpapi

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

// TrackerHandler progress entry form.
type TrackerHandler struct {
	tracker        *service.TrackerService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewTrackerHandler maxUploadBytes bounds a multipart request body; the media
// store applies its own per-file limit.
func NewTrackerHandler(tracker *service.TrackerService, maxUploadBytes int64, logger *zap.Logger) *TrackerHandler {
	return &TrackerHandler{tracker: tracker, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *TrackerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/tracker/api/v1/options":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Options(w, r)
	case "/tracker/api/v1/entries":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.RecordProgress(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *TrackerHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.tracker.Options(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, h.logger, "Tracker options", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(opts))
}

// RecordProgress accepts a JSON body, or multipart/form-data with the same
// field names plus an optional "media" file.
func (h *TrackerHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var req service.RecordProgressRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusOK, Fail("upload too large"))
				return
			}
			writeJSON(w, http.StatusOK, Fail("invalid form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		req = service.RecordProgressRequest{
			Date:       strings.TrimSpace(r.FormValue("date")),
			ChildName:  r.FormValue("child_name"),
			Discipline: r.FormValue("discipline"),
			GoalArea:   r.FormValue("goal_area"),
			Status:     r.FormValue("status"),
			Notes:      r.FormValue("notes"),
		}
		file, header, err := r.FormFile("media")
		switch {
		case err == nil:
			defer file.Close()
			req.Media = &service.MediaUpload{Filename: header.Filename, Reader: file}
		case errors.Is(err, http.ErrMissingFile):
		default:
			writeJSON(w, http.StatusOK, Fail("invalid media"))
			return
		}
	} else if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	resp, err := h.tracker.RecordProgress(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, h.logger, "RecordProgress", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
