package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sitewizard/sitewizard/internal/images"
)

func (h *Handler) HandleGenerateArticles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	session, progress, err := h.wizard.Articles().GenerateAll(r.Context(), nil)
	h.bulk(w, start, session, progress, err)
}

func (h *Handler) HandleGenerateArticle(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	session, err := h.wizard.Articles().GenerateArticle(r.Context(), index)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleArticle(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	view, err := h.wizard.Article(index).View(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, view)
}

// HandleArticleAction dispatches POST /api/articles/{index}/{action}
func (h *Handler) HandleArticleAction(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	detail := h.wizard.Article(index)

	var err error
	switch action := r.PathValue("action"); action {
	case "edit":
		_, err = detail.BeginEdit(ctx)
	case "cancel":
		err = detail.Cancel(ctx)
	case "save":
		_, err = detail.Save(ctx)
	case "validate":
		_, err = detail.Validate(ctx)
	case "unvalidate":
		_, err = detail.Unvalidate(ctx)
	case "regenerate":
		_, err = detail.Regenerate(ctx)
	case "translate":
		var req struct {
			Language string `json:"language"`
		}
		if !h.decode(w, r, &req) {
			return
		}
		_, err = detail.Translate(ctx, req.Language)
	case "image":
		var req struct {
			Prompt string `json:"prompt"`
		}
		if !h.decode(w, r, &req) {
			return
		}
		_, err = detail.GenerateImage(ctx, req.Prompt)
	default:
		h.writeError(w, "Unknown article action: "+action, http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	view, err := detail.View(ctx)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, view)
}

func (h *Handler) HandleArticleBuffer(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	detail := h.wizard.Article(index)
	if err := detail.SetBuffer(r.Context(), req.Content); err != nil {
		h.writeFailure(w, err)
		return
	}
	view, err := detail.View(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, view)
}

// HandleArticleUpload replaces an article's image with an upload
func (h *Handler) HandleArticleUpload(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	data, contentType, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	session, err := h.wizard.Article(index).SetImage(r.Context(), data, contentType)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, session)
}

// readUpload accepts an image either as a multipart "file" field or as the
// raw request body. The content type is empty when it should be sniffed.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	var data []byte
	var contentType string
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			h.writeError(w, "Failed to read file: "+ferr.Error(), http.StatusBadRequest)
			return nil, "", false
		}
		defer file.Close()
		contentType = header.Header.Get("Content-Type")
		data, err = io.ReadAll(io.LimitReader(file, images.MaxImageSize+1))
	} else {
		contentType = r.Header.Get("Content-Type")
		data, err = io.ReadAll(io.LimitReader(r.Body, images.MaxImageSize+1))
	}
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	if len(data) == 0 {
		h.writeError(w, "Empty upload", http.StatusBadRequest)
		return nil, "", false
	}
	if contentType == "application/octet-stream" {
		contentType = ""
	}
	return data, contentType, true
}

// HandleArticleExport renders the export in memory first so that a
// failure can still be reported as JSON.
func (h *Handler) HandleArticleExport(w http.ResponseWriter, r *http.Request) {
	index, ok := h.pathIndex(w, r)
	if !ok {
		return
	}
	detail := h.wizard.Article(index)

	var buf bytes.Buffer
	var filename, contentType string
	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		filename, err = detail.ExportJSON(r.Context(), &buf)
		contentType = "application/json"
	case "pdf":
		filename, err = detail.ExportPDF(r.Context(), &buf)
		contentType = "application/pdf"
	case "html":
		filename, err = detail.ExportHTML(r.Context(), &buf)
		contentType = "text/html; charset=utf-8"
	default:
		h.writeError(w, "Unsupported export format: "+format, http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	attachment(w, contentType, filename)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write export", "index", index, "err", err)
	}
}
