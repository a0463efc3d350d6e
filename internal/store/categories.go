package store

import (
	"context"
	"fmt"
	"strings"

	"newsroom/internal/models"
)

func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	res, err := s.db.ExecContext(ctx, `INSERT INTO categories(name) VALUES(?)`, name)
	if err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, translate(err))
	}
	return res.LastInsertId()
}

func (s *Store) Category(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return c, fmt.Errorf("category %d: %w", id, translate(err))
	}
	return c, nil
}

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) postCategories(ctx context.Context, postID int64) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.name FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = ? ORDER BY c.name`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cats := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Subscribers

// AddSubscriber puts the user in the category's subscriber set. Adding an
// existing subscriber changes nothing.
func (s *Store) AddSubscriber(ctx context.Context, categoryID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO category_subscribers(category_id, user_id) VALUES(?, ?)`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("subscribe user %d to category %d: %w", userID, categoryID, translate(err))
	}
	return nil
}

func (s *Store) IsSubscriber(ctx context.Context, categoryID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(
		SELECT 1 FROM category_subscribers WHERE category_id = ? AND user_id = ?)`, categoryID, userID).Scan(&ok)
	return ok, translate(err)
}

func (s *Store) Subscribers(ctx context.Context, categoryID int64) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT u.id, u.email, u.username, u.created_at FROM users u
		JOIN category_subscribers cs ON cs.user_id = u.id
		WHERE cs.category_id = ? ORDER BY u.id`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
