package handlers

import "net/http"

// Register mounts the wizard API on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", h.HandleCurrentSession)
	mux.HandleFunc("GET /api/sessions", h.HandleListSessions)
	mux.HandleFunc("DELETE /api/sessions", h.HandleClearSessions)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("GET /api/navigate", h.HandleNavigate)
	mux.HandleFunc("GET /api/images/{id}", h.HandleImage)

	mux.HandleFunc("POST /api/home", h.HandleStart)

	mux.HandleFunc("PUT /api/logos/{vid}/description", h.HandleLogoDescription)
	mux.HandleFunc("POST /api/logos/{vid}/suggest", h.HandleSuggestLogoDescription)
	mux.HandleFunc("PUT /api/logos/{vid}/image", h.HandleLogoUpload)
	mux.HandleFunc("POST /api/logos/{vid}", h.HandleGenerateLogo)
	mux.HandleFunc("POST /api/logos", h.HandleGenerateLogos)
	mux.HandleFunc("POST /api/logos/select", h.HandleLogosSelect)
	mux.HandleFunc("POST /api/logos/continue", h.HandleLogosContinue)

	mux.HandleFunc("POST /api/content/select", h.HandleContentSelect)
	mux.HandleFunc("PUT /api/content/context", h.HandleContentContext)
	mux.HandleFunc("POST /api/content/titles", h.HandleGenerateTitles)
	mux.HandleFunc("PUT /api/content/titles/{index}", h.HandleEditTitle)
	mux.HandleFunc("POST /api/content/titles/{index}/regenerate", h.HandleRegenerateTitle)
	mux.HandleFunc("POST /api/content/continue", h.HandleContentContinue)
	mux.HandleFunc("POST /api/export/wordpress/{vid}", h.HandleExportWordPress)
	mux.HandleFunc("POST /api/publish/wordpress/{vid}", h.HandlePublishWordPress)

	mux.HandleFunc("POST /api/articles", h.HandleGenerateArticles)
	mux.HandleFunc("POST /api/articles/{index}", h.HandleGenerateArticle)
	mux.HandleFunc("GET /api/articles/{index}", h.HandleArticle)
	mux.HandleFunc("POST /api/articles/{index}/{action}", h.HandleArticleAction)
	mux.HandleFunc("PUT /api/articles/{index}/buffer", h.HandleArticleBuffer)
	mux.HandleFunc("PUT /api/articles/{index}/image", h.HandleArticleUpload)
	mux.HandleFunc("GET /api/articles/{index}/export", h.HandleArticleExport)
}
