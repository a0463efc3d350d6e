package models

import (
	"strconv"
	"time"
)

// Kind is the category type of a post.
type Kind string

const (
	KindNews    Kind = "NW"
	KindArticle Kind = "AR"
)

// ParseKind maps a form value onto a Kind, falling back to KindArticle.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindNews:
		return KindNews
	default:
		return KindArticle
	}
}

// Label is the display name of the kind.
func (k Kind) Label() string {
	if k == KindNews {
		return "News"
	}
	return "Article"
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Author struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Post struct {
	ID         int64      `json:"id"`
	AuthorID   int64      `json:"author_id"`
	Author     string     `json:"author"`
	Kind       Kind       `json:"kind"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Rating     int        `json:"rating"`
	CreatedAt  time.Time  `json:"created_at"`
	Categories []Category `json:"categories"`
}

const previewLen = 123

// Preview returns the beginning of the post text.
func (p Post) Preview() string {
	r := []rune(p.Text)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r) + "..."
}

func (p Post) URL() string {
	return "/news/" + strconv.FormatInt(p.ID, 10)
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
