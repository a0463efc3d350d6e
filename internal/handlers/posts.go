package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"newsroom/internal/db"
	"newsroom/internal/models"
	"newsroom/internal/store"
)

const maxTitleLen = 128

type postView struct {
	models.Post
	Preview    string `json:"preview"`
	URL        string `json:"url"`
	CreatedAgo string `json:"created_ago"`
}

func viewOf(p models.Post) postView {
	return postView{Post: p, Preview: p.Preview(), URL: p.URL(), CreatedAgo: humanize.Time(p.CreatedAt)}
}

func viewsOf(posts []models.Post) []postView {
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, viewOf(p))
	}
	return out
}

type filterView struct {
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	Kind       string `json:"kind,omitempty"`
	CategoryID int64  `json:"category,omitempty"`
	After      string `json:"after,omitempty"`
}

// parseListQuery reads the listing filter from the query string. An
// unparseable page number is reported as ErrNotFound.
func parseListQuery(r *http.Request) (store.ListQuery, filterView, error) {
	v := r.URL.Query()
	f := filterView{
		Title:  strings.TrimSpace(v.Get("title")),
		Author: strings.TrimSpace(v.Get("author")),
		Kind:   v.Get("kind"),
		After:  v.Get("after"),
	}
	q := store.ListQuery{Title: f.Title, Author: f.Author, Page: 1}

	if f.Kind == string(models.KindNews) || f.Kind == string(models.KindArticle) {
		q.Kind = models.Kind(f.Kind)
	} else {
		f.Kind = ""
	}
	if c := v.Get("category"); c != "" {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			q.CategoryID, f.CategoryID = id, id
		}
	}
	if f.After != "" {
		if t, err := time.Parse(time.DateOnly, f.After); err == nil {
			q.After = t
		} else {
			f.After = ""
		}
	}
	if p := v.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return q, f, store.ErrNotFound
		}
		q.Page = n
	}
	return q, f, nil
}

func (h *Handler) listing(w http.ResponseWriter, r *http.Request, q store.ListQuery, f filterView) (map[string]any, bool) {
	page, err := h.store.ListPosts(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	categories, err := h.store.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return map[string]any{
		"posts":      viewsOf(page.Posts),
		"page":       pageInfo(page),
		"filter":     f,
		"categories": categories,
	}, true
}

func pageInfo(p store.Page) map[string]any {
	return map[string]any{
		"number":       p.Number,
		"num_pages":    p.NumPages,
		"count":        p.Count,
		"has_next":     p.HasNext,
		"has_previous": p.HasPrevious,
	}
}

// Search is the public filtered listing.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q, f, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, ok := h.listing(w, r, q, f)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Posts is the signed-in listing; it also tells whether the reader may
// still ask to become an author.
func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	q, f, err := parseListQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, ok := h.listing(w, r, q, f)
	if !ok {
		return
	}
	if data["is_not_author"], err = h.isNotAuthor(r); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) isNotAuthor(r *http.Request) (bool, error) {
	uid, _ := currentUser(r)
	member, err := h.identity.HasGroup(r.Context(), uid, db.AuthorsGroup)
	return !member, err
}

func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.detail.Post(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": viewOf(p)})
}

func readPostForm(r *http.Request) (store.PostInput, string) {
	if err := r.ParseForm(); err != nil {
		return store.PostInput{}, "Invalid form"
	}
	in := store.PostInput{
		Kind:  models.ParseKind(r.FormValue("kind")),
		Title: strings.TrimSpace(r.FormValue("title")),
		Text:  strings.TrimSpace(r.FormValue("text")),
	}
	if in.Title == "" || in.Text == "" {
		return in, "Title and text required"
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return in, "Title must be at most 128 characters"
	}
	for _, c := range r.Form["categories"] {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return in, "Invalid category"
		}
		in.CategoryIDs = append(in.CategoryIDs, id)
	}
	return in, ""
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, msg := readPostForm(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	uid, _ := currentUser(r)
	ctx := r.Context()

	authorID, err := h.store.EnsureAuthor(ctx, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := h.store.CreatePost(ctx, authorID, in)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Unknown category")
		return
	} else if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, models.Post{ID: id}.URL(), http.StatusSeeOther)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	ctx := r.Context()
	if _, err := h.store.Post(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	in, msg := readPostForm(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	err := h.store.UpdatePost(ctx, id, in)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Unknown category")
		return
	} else if err != nil {
		h.fail(w, r, err)
		return
	}
	h.detail.Invalidate(ctx, id)
	http.Redirect(w, r, models.Post{ID: id}.URL(), http.StatusSeeOther)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.detail.Invalidate(r.Context(), id)
	http.Redirect(w, r, "/news/", http.StatusSeeOther)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.ratePost(w, r, h.store.LikePost)
}

func (h *Handler) DislikePost(w http.ResponseWriter, r *http.Request) {
	h.ratePost(w, r, h.store.DislikePost)
}

func (h *Handler) ratePost(w http.ResponseWriter, r *http.Request, rate func(ctx context.Context, id int64) (int, error)) {
	id := pathID(r)
	rating, err := rate(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.detail.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "rating": rating})
}
