package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsroom/internal/models"
)

// PageSize is the number of posts per listing page.
const PageSize = 2

// ListQuery filters a post listing. Zero fields do not filter.
type ListQuery struct {
	Title      string
	Author     string
	Kind       models.Kind
	CategoryID int64
	After      time.Time
	Page       int
}

type Page struct {
	Posts       []models.Post `json:"posts"`
	Number      int           `json:"number"`
	NumPages    int           `json:"num_pages"`
	Count       int           `json:"count"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// ListPosts returns one page of posts, newest first. A page past the last
// one is ErrNotFound; the first page of an empty listing is not.
func (s *Store) ListPosts(ctx context.Context, q ListQuery) (Page, error) {
	var wheres []string
	var args []any

	if q.Title != "" {
		wheres = append(wheres, "p.title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.Title)+"%")
	}
	if q.Author != "" {
		wheres = append(wheres, "u.username = ?")
		args = append(args, q.Author)
	}
	if q.Kind != "" {
		wheres = append(wheres, "p.kind = ?")
		args = append(args, q.Kind)
	}
	if q.CategoryID != 0 {
		wheres = append(wheres, "EXISTS(SELECT 1 FROM post_categories pc WHERE pc.post_id = p.id AND pc.category_id = ?)")
		args = append(args, q.CategoryID)
	}
	if !q.After.IsZero() {
		wheres = append(wheres, "p.created_at >= ?")
		args = append(args, q.After.UTC())
	}
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}

	var page Page
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p
		JOIN authors a ON a.id = p.author_id JOIN users u ON u.id = a.user_id`+where, args...).Scan(&page.Count)
	if err != nil {
		return page, fmt.Errorf("count posts: %w", err)
	}

	page.NumPages = (page.Count + PageSize - 1) / PageSize
	if page.NumPages == 0 {
		page.NumPages = 1
	}
	page.Number = q.Page
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Number > page.NumPages {
		return page, fmt.Errorf("page %d of %d: %w", page.Number, page.NumPages, ErrNotFound)
	}
	page.HasPrevious = page.Number > 1
	page.HasNext = page.Number < page.NumPages

	rows, err := s.db.QueryContext(ctx, postColumns+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		append(args, PageSize, (page.Number-1)*PageSize)...)
	if err != nil {
		return page, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	page.Posts = []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return page, fmt.Errorf("scan post: %w", err)
		}
		page.Posts = append(page.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}
	rows.Close()

	for i := range page.Posts {
		cats, err := s.postCategories(ctx, page.Posts[i].ID)
		if err != nil {
			return page, err
		}
		page.Posts[i].Categories = cats
	}
	return page, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
