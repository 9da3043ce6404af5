package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/palletlog/palletlog/internal/models"
	"github.com/palletlog/palletlog/internal/photo"
	"github.com/palletlog/palletlog/internal/workflow"
)

// handleCreateSession takes the capture stage form (reference + optional
// photo), runs OCR and detection, and stores the session for confirmation.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	session := &models.PalletSession{
		ID:        uuid.NewString(),
		Reference: r.FormValue("reference"),
		CreatedAt: h.now(),
	}

	raw, err := readPhoto(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(raw) > 0 {
		p, err := photo.Normalize(raw, h.maxEdge)
		if err != nil {
			h.writeError(w, "Unsupported photo: "+err.Error(), http.StatusBadRequest)
			return
		}
		session.Photo = p.Data
		session.PhotoWidth = p.Width
		session.PhotoHeight = p.Height

		if strings.TrimSpace(session.Reference) == "" && h.ocrService != nil {
			ref, err := h.ocrService.Reference(r.Context(), p.Data, photo.MIMEType)
			if err != nil {
				slog.Warn("OCR failed", "session_id", session.ID, "error", err)
				session.OCRWarning = "Could not read the document reference. Please type it."
			} else {
				session.Reference = ref
			}
		}

		count, err := h.workflow.Suggest(r.Context(), p.Data)
		session.SuggestedCount = count
		if err != nil {
			session.DetectionError = workflow.UserMessage(workflow.KindOf(err))
		}
	}

	if n := h.sessionStore.Prune(h.now(), sessionMaxAge); n > 0 {
		slog.Info("Pruned abandoned sessions", "count", n)
	}
	h.sessionStore.Set(session.ID, session)

	slog.Info("Session created", "session_id", session.ID, "has_photo", len(session.Photo) > 0, "suggested_count", session.SuggestedCount)
	h.writeJSON(w, session)
}

func readPhoto(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("failed to read photo: " + err.Error())
	}
	defer file.Close()

	// Limit file size to 10MB
	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		return nil, errors.New("failed to read photo contents: " + err.Error())
	}
	if len(data) >= maxPhotoBytes {
		return nil, errors.New("photo too large (max 10MB)")
	}
	return data, nil
}
