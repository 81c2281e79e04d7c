package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// Limit uploads to 10MB per file
const maxFileSize = 10 * 1024 * 1024

// HandleAnalyzeText runs a text analysis. Blocks until the analysis is
// applied, superseded, or failed.
func (h *Handler) HandleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	applied, err := h.controller.AnalyzeText(r.Context(), request.Text)
	if err != nil {
		h.writeFault(w, err)
		return
	}

	h.writeResult(w, applied)
}

// HandleAnalyzeFiles accepts one or more PDF uploads under the "files"
// multipart field and runs a combined multimodal analysis.
func (h *Handler) HandleAnalyzeFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		h.writeError(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	files := make([][]byte, 0, len(parts))
	for _, part := range parts {
		if !isPDF(part.Header.Get("Content-Type"), part.Filename) {
			h.writeError(w, "Only PDF files are accepted: "+part.Filename, http.StatusBadRequest)
			return
		}

		file, err := part.Open()
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, maxFileSize))
		file.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(data) >= maxFileSize {
			h.writeError(w, "File too large (max 10MB): "+part.Filename, http.StatusBadRequest)
			return
		}

		files = append(files, data)
	}

	slog.Info("File analysis requested", "files", len(files))

	applied, err := h.controller.AnalyzeFiles(r.Context(), files)
	if err != nil {
		h.writeFault(w, err)
		return
	}

	h.writeResult(w, applied)
}

// HandleChat answers a follow-up question about the completed analysis.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := h.controller.Chat(r.Context(), request.Question)
	if err != nil {
		h.writeFault(w, err)
		return
	}

	h.writeJSON(w, map[string]string{"answer": answer})
}

// HandleCancel invalidates the current session.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.controller.Cancel()
	h.writeJSON(w, h.controller.Snapshot())
}

// HandleReset cancels and clears the transcript.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.controller.Reset()
	h.writeJSON(w, h.controller.Snapshot())
}

// writeResult reports an analysis outcome. A superseded run is not an
// error; the response says the result was discarded and carries the
// state that superseded it.
func (h *Handler) writeResult(w http.ResponseWriter, applied bool) {
	snapshot := h.controller.Snapshot()
	h.writeJSON(w, map[string]any{
		"applied":  applied,
		"state":    snapshot.State,
		"analysis": snapshot.Analysis,
	})
}

func isPDF(contentType, filename string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
