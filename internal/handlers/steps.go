package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sitewizard/sitewizard/internal/wizard"
)

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req wizard.StartRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.wizard.Home().Start(r.Context(), req)
	h.navigated(w)(wizard.Decision{Requested: wizard.StepLogos, Step: wizard.StepLogos}, session, err)
}

func (h *Handler) HandleLogoDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.wizard.Logos().SetDescription(r.Context(), r.PathValue("vid"), req.Description)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

// HandleSuggestLogoDescription fills in a prompt derived from the
// variation's title and style
func (h *Handler) HandleSuggestLogoDescription(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Logos().SuggestDescription(r.Context(), r.PathValue("vid"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

// HandleLogoUpload replaces a variation's logo with an uploaded image
func (h *Handler) HandleLogoUpload(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	session, err := h.wizard.Logos().SetLogo(r.Context(), r.PathValue("vid"), data, contentType)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleGenerateLogo(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Logos().GenerateOne(r.Context(), r.PathValue("vid"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleGenerateLogos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	session, progress, err := h.wizard.Logos().GenerateAll(r.Context(), nil)
	h.bulk(w, start, session, progress, err)
}

type selectRequest struct {
	VariationID string `json:"variation_id"`
}

func (h *Handler) HandleLogosSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.wizard.Logos().SelectVariation(r.Context(), req.VariationID); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.navigated(w)(h.wizard.Navigate(r.Context(), wizard.StepContent, 0))
}

func (h *Handler) HandleLogosContinue(w http.ResponseWriter, r *http.Request) {
	h.navigated(w)(h.wizard.Logos().Continue(r.Context()))
}

func (h *Handler) HandleContentSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.wizard.Content().SelectVariation(r.Context(), req.VariationID)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleContentContext(w http.ResponseWriter, r *http.Request) {
	var req wizard.GenerationContext
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.wizard.Content().SetContext(r.Context(), req)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleGenerateTitles(w http.ResponseWriter, r *http.Request) {
	session, err := h.wizard.Content().GenerateTitles(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleEditTitle(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.wizard.Content().EditTitle(r.Context(), index, req.Title)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleRegenerateTitle(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	session, err := h.wizard.Content().RegenerateTitle(r.Context(), index)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleContentContinue(w http.ResponseWriter, r *http.Request) {
	h.navigated(w)(h.wizard.Content().Continue(r.Context()))
}

// HandleExportWordPress streams the gateway's export archive to the client
func (h *Handler) HandleExportWordPress(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizard.Content().ExportWordPress(r.Context(), r.PathValue("vid"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	defer result.Body.Close()

	attachment(w, result.ContentType, result.Filename)
	n, err := io.Copy(w, result.Body)
	if err != nil {
		slog.Error("WordPress export stream interrupted", "bytes", n, "err", err)
		return
	}
	slog.Info("WordPress export streamed", "variation_id", r.PathValue("vid"), "bytes", n)
}

func (h *Handler) HandlePublishWordPress(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizard.Content().PublishWordPress(r.Context(), r.PathValue("vid"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, result)
}
