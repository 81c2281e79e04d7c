package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// HandleAnalyses lists completed analyses, newest first.
func (h *Handler) HandleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := h.archive.GetAll()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Session > records[j].Session
	})
	h.writeJSON(w, records)
}

// HandleAnalysisDetail serves or deletes one archived analysis by
// session id.
func (h *Handler) HandleAnalysisDetail(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.writeError(w, "Invalid analysis id", http.StatusBadRequest)
		return
	}

	record, exists := h.archive.Get(id)
	if !exists {
		h.writeError(w, "Analysis not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, record)
	case "DELETE":
		h.archive.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
