package handlers

import (
	"net/http"
)

const subscribedMessage = "You have successfully subscribed to the category newsletter"

// CategoryPosts lists the posts of one category, with the reader's
// subscription state.
func (h *Handler) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := h.store.Category(ctx, pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, f, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q.CategoryID, f.CategoryID = category.ID, category.ID

	data, ok := h.listing(w, r, q, f)
	if !ok {
		return
	}
	uid, _ := currentUser(r)
	subscribed, err := h.registry.IsSubscriber(ctx, uid, category.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if data["is_not_author"], err = h.isNotAuthor(r); err != nil {
		h.fail(w, r, err)
		return
	}
	data["category"] = category
	data["is_not_subscriber"] = !subscribed
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	uid, _ := currentUser(r)
	category, err := h.registry.Subscribe(r.Context(), uid, pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "message": subscribedMessage})
}

// UpgradeMe puts the reader in the authors group and always sends them
// back to the listing.
func (h *Handler) UpgradeMe(w http.ResponseWriter, r *http.Request) {
	uid, _ := currentUser(r)
	if _, err := h.promoter.UpgradeMe(r.Context(), uid); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/news/", http.StatusSeeOther)
}

func (h *Handler) UpdateAuthorRating(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	rating, err := h.ratings.UpdateRating(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"author": id, "rating": rating})
}
