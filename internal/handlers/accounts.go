package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"newsroom/internal/auth"
	"newsroom/internal/store"
)

// Register creates the account and its author record.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	pass := r.FormValue("password")

	if email == "" || username == "" || pass == "" {
		writeError(w, http.StatusBadRequest, "All fields required")
		return
	}

	hash, err := auth.HashPassword(pass)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	uid, err := h.store.CreateUser(ctx, email, username, hash)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusBadRequest, "Email or username already taken")
		return
	} else if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.store.EnsureAuthor(ctx, uid); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("user registered", zap.Int64("user", uid), zap.String("username", username))
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")

	u, err := h.store.UserByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Wrong email or password")
		return
	} else if err != nil {
		h.fail(w, r, err)
		return
	}

	if !auth.CheckPassword(pass, u.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Wrong email or password")
		return
	}

	if err := h.sessions.Create(w, r, u.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/news/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/news/", http.StatusSeeOther)
}
