package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"newsroom/internal/auth"
	"newsroom/internal/cache"
	"newsroom/internal/rating"
	"newsroom/internal/store"
	"newsroom/internal/subscription"
)

// Services are the collaborators the HTTP layer is built on.
type Services struct {
	Store    *store.Store
	Sessions *auth.Manager
	Identity *auth.Identity
	Promoter *auth.Promoter
	Ratings  *rating.Engine
	Registry *subscription.Registry
	Detail   *cache.Detail
	Log      *zap.Logger
}

type Handler struct {
	store    *store.Store
	sessions *auth.Manager
	identity *auth.Identity
	promoter *auth.Promoter
	ratings  *rating.Engine
	registry *subscription.Registry
	detail   *cache.Detail
	log      *zap.Logger
}

func New(s Services) *Handler {
	return &Handler{
		store:    s.Store,
		sessions: s.Sessions,
		identity: s.Identity,
		promoter: s.Promoter,
		ratings:  s.Ratings,
		registry: s.Registry,
		detail:   s.Detail,
		log:      s.Log,
	}
}

// Routes builds the full HTTP surface, wrapped in request logging and
// panic recovery.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	n := r.PathPrefix("/news").Subrouter().StrictSlash(true)
	n.HandleFunc("/", chain(h.Posts, h.RequireAuth)).Methods(http.MethodGet)
	n.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	n.HandleFunc("/add", chain(h.CreatePost, h.RequirePermission(auth.PermAddPost))).Methods(http.MethodPost)
	n.HandleFunc("/upgrade/", chain(h.UpgradeMe, h.RequireAuth)).Methods(http.MethodGet, http.MethodPost)

	n.HandleFunc("/{id:[0-9]+}", h.PostDetail).Methods(http.MethodGet)
	n.HandleFunc("/{id:[0-9]+}/edit", chain(h.UpdatePost, h.RequirePermission(auth.PermChangePost))).Methods(http.MethodPost)
	n.HandleFunc("/{id:[0-9]+}/delete", chain(h.DeletePost, h.RequirePermission(auth.PermDeletePost))).Methods(http.MethodPost)
	n.HandleFunc("/{id:[0-9]+}/like", chain(h.LikePost, h.RequireAuth)).Methods(http.MethodPost)
	n.HandleFunc("/{id:[0-9]+}/dislike", chain(h.DislikePost, h.RequireAuth)).Methods(http.MethodPost)
	n.HandleFunc("/{id:[0-9]+}/comments", h.Comments).Methods(http.MethodGet)
	n.HandleFunc("/{id:[0-9]+}/comments", chain(h.CreateComment, h.RequireAuth)).Methods(http.MethodPost)
	n.HandleFunc("/comments/{id:[0-9]+}/like", chain(h.LikeComment, h.RequireAuth)).Methods(http.MethodPost)
	n.HandleFunc("/comments/{id:[0-9]+}/dislike", chain(h.DislikeComment, h.RequireAuth)).Methods(http.MethodPost)

	n.HandleFunc("/categories/{id:[0-9]+}", chain(h.CategoryPosts, h.RequireAuth)).Methods(http.MethodGet)
	n.HandleFunc("/categories/{id:[0-9]+}/subscribe", chain(h.Subscribe, h.RequireAuth)).Methods(http.MethodGet, http.MethodPost)
	n.HandleFunc("/authors/{id:[0-9]+}/rating", chain(h.UpdateAuthorRating, h.RequireAuth)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	return WithRecover(h.log, r)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

// fail answers with the status matching err. Unexpected errors are logged
// and hidden from the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict")
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}
