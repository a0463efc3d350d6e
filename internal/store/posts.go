package store

import (
	"context"
	"database/sql"
	"fmt"

	"newsroom/internal/models"
)

// PostInput carries the editable fields of a post.
type PostInput struct {
	Kind        models.Kind
	Title       string
	Text        string
	CategoryIDs []int64
}

func (s *Store) CreatePost(ctx context.Context, authorID int64, in PostInput) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO posts(author_id,kind,title,text,rating,created_at) VALUES(?,?,?,?,0,?)`,
			authorID, models.ParseKind(string(in.Kind)), in.Title, in.Text, s.now())
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return linkCategories(ctx, tx, id, in.CategoryIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("create post: %w", translate(err))
	}
	return id, nil
}

// UpdatePost replaces the editable fields and the category set of a post.
// The author and creation time never change.
func (s *Store) UpdatePost(ctx context.Context, id int64, in PostInput) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE posts SET kind = ?, title = ?, text = ? WHERE id = ?`,
			models.ParseKind(string(in.Kind)), in.Title, in.Text, id)
		if err != nil {
			return err
		}
		if err := affected(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ?`, id); err != nil {
			return err
		}
		return linkCategories(ctx, tx, id, in.CategoryIDs)
	})
	if err != nil {
		return fmt.Errorf("update post %d: %w", id, translate(err))
	}
	return nil
}

func linkCategories(ctx context.Context, tx *sql.Tx, postID int64, categoryIDs []int64) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_categories(post_id, category_id) VALUES(?, ?)`, postID, cid); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

const postColumns = `SELECT p.id, p.author_id, u.username, p.kind, p.title, p.text, p.rating, p.created_at
	FROM posts p JOIN authors a ON a.id = p.author_id JOIN users u ON u.id = a.user_id`

func scanPost(row interface{ Scan(...any) error }) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Kind, &p.Title, &p.Text, &p.Rating, &p.CreatedAt)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, err
}

// Post loads a single post with its categories.
func (s *Store) Post(ctx context.Context, id int64) (models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postColumns+` WHERE p.id = ?`, id))
	if err != nil {
		return p, fmt.Errorf("post %d: %w", id, translate(err))
	}
	if p.Categories, err = s.postCategories(ctx, id); err != nil {
		return p, fmt.Errorf("post %d categories: %w", id, err)
	}
	return p, nil
}

// LikePost and DislikePost change the rating in a single statement so
// concurrent votes never overwrite each other.
func (s *Store) LikePost(ctx context.Context, id int64) (int, error) {
	return s.adjustRating(ctx, "posts", id, 1)
}

func (s *Store) DislikePost(ctx context.Context, id int64) (int, error) {
	return s.adjustRating(ctx, "posts", id, -1)
}

func (s *Store) LikeComment(ctx context.Context, id int64) (int, error) {
	return s.adjustRating(ctx, "comments", id, 1)
}

func (s *Store) DislikeComment(ctx context.Context, id int64) (int, error) {
	return s.adjustRating(ctx, "comments", id, -1)
}

func (s *Store) adjustRating(ctx context.Context, table string, id int64, delta int) (int, error) {
	var rating int
	err := s.db.QueryRowContext(ctx,
		`UPDATE `+table+` SET rating = rating + ? WHERE id = ? RETURNING rating`, delta, id).Scan(&rating)
	if err != nil {
		return 0, fmt.Errorf("rate %s %d: %w", table, id, translate(err))
	}
	return rating, nil
}
