package handler

import (
	"net/http"

	"github.com/vtarasov/blog-service/internal/service"
)

// Feed serves the RSS feed of published posts
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), service.ListOptions{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.feed.Build(posts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(out)
}
