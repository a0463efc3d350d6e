package handlers

import (
	"context"
	"net/http"
	"strings"
)

func (h *Handler) Comments(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	ctx := r.Context()
	if _, err := h.store.Post(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	comments, err := h.store.Comments(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post_id": id, "comments": comments})
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "Empty comments are not allowed")
		return
	}
	uid, _ := currentUser(r)
	postID := pathID(r)
	id, err := h.store.CreateComment(r.Context(), postID, uid, text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "post_id": postID})
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.rateComment(w, r, h.store.LikeComment)
}

func (h *Handler) DislikeComment(w http.ResponseWriter, r *http.Request) {
	h.rateComment(w, r, h.store.DislikeComment)
}

func (h *Handler) rateComment(w http.ResponseWriter, r *http.Request, rate func(ctx context.Context, id int64) (int, error)) {
	id := pathID(r)
	rating, err := rate(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "rating": rating})
}
