package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/palletlog/palletlog/internal/models"
	"github.com/palletlog/palletlog/internal/workflow"
)

type confirmRequest struct {
	// Reference overrides the session reference when set
	Reference *string `json:"reference"`
	Count     string  `json:"count"`
}

type confirmResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Warning  string        `json:"warning,omitempty"`
	Kind     workflow.Kind `json:"kind,omitempty"`
	FileName string        `json:"file_name,omitempty"`
	FileURL  string        `json:"file_url,omitempty"`
	Row      []interface{} `json:"row,omitempty"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]*models.PalletSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	case "POST":
		h.handleCreateSession(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(path, "/")

	if action == "confirm" {
		if r.Method != "POST" {
			h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.handleConfirm(w, r, sessionID)
		return
	}
	if action != "" {
		h.writeError(w, "Not found", http.StatusNotFound)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "DELETE":
		h.sessionStore.Delete(sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleConfirm is the explicit save action. The session is consumed
// whether or not the save succeeds.
func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, ok := h.sessionStore.Take(sessionID)
	if !ok {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}

	reference := session.Reference
	if req.Reference != nil {
		reference = *req.Reference
	}
	count, warning := workflow.ResolveCount(req.Count)

	result, err := h.workflow.Save(r.Context(), workflow.Confirmation{
		Reference: reference,
		Photo:     session.Photo,
		Count:     count,
	})
	if err != nil {
		kind := workflow.KindOf(err)
		slog.Error("Failed to save pallet session", "session_id", sessionID, "kind", kind, "error", err)
		h.writeJSONStatus(w, http.StatusBadGateway, confirmResponse{
			Status:  "failed",
			Message: workflow.UserMessage(kind),
			Warning: warning,
			Kind:    kind,
		})
		return
	}

	slog.Info("Pallet session saved", "session_id", sessionID, "file_id", result.FileID, "count", count)
	h.writeJSON(w, confirmResponse{
		Status:   "saved",
		Message:  "Data saved successfully.",
		Warning:  warning,
		FileName: result.FileName,
		FileURL:  result.FileURL,
		Row:      result.Row.Values(),
	})
}
