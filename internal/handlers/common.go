package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/palletlog/palletlog/internal/models"
	"github.com/palletlog/palletlog/internal/ocr"
	"github.com/palletlog/palletlog/internal/storage"
	"github.com/palletlog/palletlog/internal/workflow"
)

const (
	maxPhotoBytes = 10 * 1024 * 1024
	sessionMaxAge = time.Hour
)

type Handler struct {
	sessionStore *storage.SessionStore
	workflow     *workflow.Orchestrator
	ocrService   *ocr.Service
	maxEdge      int
	staticDir    string
	now          func() time.Time
}

// New creates the HTTP handlers. ocrService may be nil when OCR is disabled.
func New(orchestrator *workflow.Orchestrator, ocrService *ocr.Service, maxEdge int, staticDir string) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		workflow:     orchestrator,
		ocrService:   ocrService,
		maxEdge:      maxEdge,
		staticDir:    staticDir,
		now:          time.Now,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.PalletSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// Routes wires every endpoint onto a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}
