package handler

import (
	"net/http"

	"github.com/vtarasov/blog-service/internal/service"
)

// ListPosts returns published posts, with optional search/tag filters.
// ?mine=true lists the caller's own posts including drafts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Mine:   r.URL.Query().Get("mine") == "true",
	}

	posts, err := h.svc.ListPosts(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

// GetPost returns a single post with its likes and comments
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

// CreatePost creates a new post for the authenticated user
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input service.PostInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

// UpdatePost edits a post as its author or an admin
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input service.PostInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post as its author or an admin
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted successfully"})
}

// ToggleLike flips the caller's like on a post
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.ToggleLike(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// AddComment appends a comment to a post
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), id, req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes a comment as its author
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.DeleteComment(r.Context(), postID, commentID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted successfully"})
}
