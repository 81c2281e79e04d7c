package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/paperlens/paperlens/internal/fault"
	"github.com/paperlens/paperlens/internal/quota"
	"github.com/paperlens/paperlens/internal/session"
	"github.com/paperlens/paperlens/internal/storage"
)

type Handler struct {
	controller *session.Controller
	tracker    *quota.Tracker
	archive    *storage.Archive
}

func New(controller *session.Controller, tracker *quota.Tracker, archive *storage.Archive) *Handler {
	return &Handler{
		controller: controller,
		tracker:    tracker,
		archive:    archive,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// writeFault maps the pipeline error taxonomy onto HTTP statuses.
func (h *Handler) writeFault(w http.ResponseWriter, err error) {
	var f *fault.Fault
	if !errors.As(err, &f) {
		h.writeError(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	code := http.StatusInternalServerError
	switch f.Kind {
	case fault.KindInvalidInput:
		code = http.StatusBadRequest
	case fault.KindQuotaExceeded:
		code = http.StatusTooManyRequests
	case fault.KindDecode, fault.KindRender:
		code = http.StatusUnprocessableEntity
	case fault.KindCollaborator:
		code = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"error":        f.Msg,
		"kind":         f.Kind.String(),
		"wait_seconds": f.WaitSeconds,
	}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

// HandleQuota reports the remaining invocations in the rolling windows.
func (h *Handler) HandleQuota(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hour, day, err := h.tracker.Remaining(time.Now())
	if err != nil {
		h.writeError(w, "Failed to read quota: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]int{"hour": hour, "day": day})
}

// HandleState returns the current controller snapshot.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.controller.Snapshot())
}
