package store

import (
	"context"
	"fmt"

	"newsroom/internal/models"
)

// Users

func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users(email,username,password_hash,created_at) VALUES(?,?,?,?)`,
		email, username, passwordHash, s.now())
	if err != nil {
		return 0, fmt.Errorf("create user %q: %w", username, translate(err))
	}
	return res.LastInsertId()
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return u, fmt.Errorf("user %q: %w", email, translate(err))
	}
	return u, nil
}

// Authors

// EnsureAuthor returns the author record of a user, creating it if missing.
func (s *Store) EnsureAuthor(ctx context.Context, userID int64) (int64, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO authors(user_id, rating) VALUES(?, 0)`, userID); err != nil {
		return 0, fmt.Errorf("ensure author for user %d: %w", userID, translate(err))
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM authors WHERE user_id = ?`, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure author for user %d: %w", userID, translate(err))
	}
	return id, nil
}

const authorColumns = `SELECT a.id, a.user_id, u.username, a.rating FROM authors a JOIN users u ON u.id = a.user_id`

func (s *Store) Author(ctx context.Context, id int64) (models.Author, error) {
	var a models.Author
	err := s.db.QueryRowContext(ctx, authorColumns+` WHERE a.id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Username, &a.Rating)
	if err != nil {
		return a, fmt.Errorf("author %d: %w", id, translate(err))
	}
	return a, nil
}

func (s *Store) AuthorByUser(ctx context.Context, userID int64) (models.Author, error) {
	var a models.Author
	err := s.db.QueryRowContext(ctx, authorColumns+` WHERE a.user_id = ?`, userID).
		Scan(&a.ID, &a.UserID, &a.Username, &a.Rating)
	if err != nil {
		return a, fmt.Errorf("author of user %d: %w", userID, translate(err))
	}
	return a, nil
}

func (s *Store) Authors(ctx context.Context) ([]models.Author, error) {
	rows, err := s.db.QueryContext(ctx, authorColumns+` ORDER BY a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.Rating); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// PostRatingSum sums the ratings of every post owned by the author.
// An author without posts sums to zero.
func (s *Store) PostRatingSum(ctx context.Context, authorID int64) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating), 0) FROM posts WHERE author_id = ?`, authorID).Scan(&sum)
	return sum, translate(err)
}

// CommentRatingSum sums the ratings of every comment written by the user,
// on any post.
func (s *Store) CommentRatingSum(ctx context.Context, userID int64) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating), 0) FROM comments WHERE user_id = ?`, userID).Scan(&sum)
	return sum, translate(err)
}

func (s *Store) SetAuthorRating(ctx context.Context, authorID int64, rating int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE authors SET rating = ? WHERE id = ?`, rating, authorID)
	if err != nil {
		return fmt.Errorf("set rating of author %d: %w", authorID, err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("set rating of author %d: %w", authorID, err)
	}
	return nil
}
