package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sitewizard/sitewizard/internal/gateway"
	"github.com/sitewizard/sitewizard/internal/images"
	"github.com/sitewizard/sitewizard/internal/storage"
	"github.com/sitewizard/sitewizard/internal/wizard"
)

const maxBodySize = 1 << 20

type Handler struct {
	wizard *wizard.Wizard
}

func New(w *wizard.Wizard) *Handler {
	return &Handler{wizard: w}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Debug(message, "status", code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode JSON error", "err", err)
	}
}

// writeFailure maps a controller error onto a response. Guard redirects
// are not failures: they are answered with the decision and a 200.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var redirect *wizard.RedirectError
	if errors.As(err, &redirect) {
		h.writeJSON(w, navigation{Decision: redirect.Decision, Redirected: true})
		return
	}
	if upstream, ok := gateway.AsStatus(err); ok {
		slog.Warn("Gateway call failed", "upstream_status", upstream, "err", err)
	}
	h.writeError(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case gateway.IsGatewayError(err):
		return http.StatusBadGateway
	case errors.Is(err, wizard.ErrArticleValidated),
		errors.Is(err, wizard.ErrNoTitles),
		errors.Is(err, wizard.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrNoSession),
		errors.Is(err, wizard.ErrUnknownVariation),
		errors.Is(err, wizard.ErrTitleNotFound),
		errors.Is(err, wizard.ErrArticleNotFound),
		errors.Is(err, storage.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrEmptyTheme),
		errors.Is(err, wizard.ErrUnsupportedLanguage),
		errors.Is(err, wizard.ErrNotAnImage),
		errors.Is(err, wizard.ErrLogoTooLarge),
		errors.Is(err, images.ErrImageTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads an optional JSON body into v
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		h.writeError(w, fmt.Sprintf("Invalid article index: %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return i, true
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
