package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sitewizard/sitewizard/internal/models"
	"github.com/sitewizard/sitewizard/internal/wizard"
)

type navigation struct {
	Decision   wizard.Decision `json:"decision"`
	Redirected bool            `json:"redirected"`
	Session    *models.Session `json:"session,omitempty"`
}

func (h *Handler) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.CurrentSession(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.wizard.Store().List(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, sessions)
}

func (h *Handler) HandleClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := h.wizard.ClearSessions(r.Context()); err != nil {
		h.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.wizard.DeleteSession(r.Context(), id); err != nil {
		h.writeFailure(w, err)
		return
	}
	slog.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleNavigate evaluates the transition table for ?step=&index=
func (h *Handler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	step, err := wizard.ParseStep(r.URL.Query().Get("step"))
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		if index, err = strconv.Atoi(raw); err != nil {
			h.writeError(w, "Invalid index: "+raw, http.StatusBadRequest)
			return
		}
	}

	h.navigated(w)(h.wizard.Navigate(r.Context(), step, index))
}

// HandleImage serves stored image bytes; blobs are content addressed so
// they never change.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.wizard.Images().GetImage(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write image", "id", r.PathValue("id"), "err", err)
	}
}

// navigated answers a controller call that hands over to another step
func (h *Handler) navigated(w http.ResponseWriter) func(wizard.Decision, *models.Session, error) {
	return func(decision wizard.Decision, session *models.Session, err error) {
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		h.writeJSON(w, navigation{Decision: decision, Redirected: decision.Redirected, Session: session})
	}
}

type bulkResponse struct {
	Session  *models.Session `json:"session"`
	Progress wizard.Progress `json:"progress"`
	Duration string          `json:"duration"`
}

func (h *Handler) bulk(w http.ResponseWriter, start time.Time, session *models.Session, progress wizard.Progress, err error) {
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, bulkResponse{Session: session, Progress: progress, Duration: time.Since(start).Round(time.Millisecond).String()})
}
