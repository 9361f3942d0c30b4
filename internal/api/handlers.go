package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List published posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Success		200	{array}		models.Post
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		h.writeError(w, err, "list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /api/posts/{idOrSlug}.
//
//	@Summary		Get a single post with rendered Markdown and HTML body
//	@Tags			posts
//	@Produce		json
//	@Param			idOrSlug	path		string	true	"Post id (dashed or undashed) or slug"
//	@Success		200			{object}	models.Post
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{idOrSlug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id or slug is required"))
		return
	}
	post, err := h.svc.GetPost(r.Context(), idOrSlug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.writeError(w, err, "get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// writeError maps pipeline failures to boundary responses. Upstream
// 4xx/5xx codes pass through; everything else is a generic 500. The
// real error is logged server-side only.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	var upstream *apperr.UpstreamError
	if errors.As(err, &upstream) {
		slog.Error(op+" failed upstream",
			slog.Int("status", upstream.StatusCode),
			slog.String("body", upstream.Body))
		writeJSON(w, upstream.HTTPStatus(), errorBody("upstream error"))
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
