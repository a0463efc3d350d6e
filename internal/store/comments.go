package store

import (
	"context"
	"fmt"

	"newsroom/internal/models"
)

// CreateComment fails with ErrNotFound when the post or user is missing.
func (s *Store) CreateComment(ctx context.Context, postID, userID int64, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments(post_id,user_id,text,rating,created_at) VALUES(?,?,?,0,?)`,
		postID, userID, text, s.now())
	if err != nil {
		return 0, fmt.Errorf("comment on post %d: %w", postID, translate(err))
	}
	return res.LastInsertId()
}

func (s *Store) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.post_id, c.user_id, u.username, c.text, c.rating, c.created_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ? ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Author, &c.Text, &c.Rating, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
