// Package rating computes the reputation of authors.
package rating

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"newsroom/internal/models"
)

// PostWeight multiplies the post rating sum in an author's reputation.
const PostWeight = 3

type Store interface {
	Author(ctx context.Context, id int64) (models.Author, error)
	Authors(ctx context.Context) ([]models.Author, error)
	PostRatingSum(ctx context.Context, authorID int64) (int, error)
	CommentRatingSum(ctx context.Context, userID int64) (int, error)
	SetAuthorRating(ctx context.Context, authorID int64, rating int) error
}

type Engine struct {
	store Store
	log   *zap.Logger
}

func NewEngine(store Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Compute returns 3 × the author's post ratings plus the ratings of every
// comment the author's user wrote.
func (e *Engine) Compute(ctx context.Context, a models.Author) (int, error) {
	posts, err := e.store.PostRatingSum(ctx, a.ID)
	if err != nil {
		return 0, fmt.Errorf("post ratings of author %d: %w", a.ID, err)
	}
	comments, err := e.store.CommentRatingSum(ctx, a.UserID)
	if err != nil {
		return 0, fmt.Errorf("comment ratings of user %d: %w", a.UserID, err)
	}
	return PostWeight*posts + comments, nil
}

// UpdateRating recomputes and persists the rating of one author.
func (e *Engine) UpdateRating(ctx context.Context, authorID int64) (int, error) {
	a, err := e.store.Author(ctx, authorID)
	if err != nil {
		return 0, err
	}
	return e.update(ctx, a)
}

func (e *Engine) update(ctx context.Context, a models.Author) (int, error) {
	r, err := e.Compute(ctx, a)
	if err != nil {
		return 0, err
	}
	if err := e.store.SetAuthorRating(ctx, a.ID, r); err != nil {
		return 0, err
	}
	e.log.Debug("author rating updated",
		zap.Int64("author", a.ID), zap.Int("previous", a.Rating), zap.Int("rating", r))
	return r, nil
}

// UpdateAll recomputes every author and returns how many were updated.
func (e *Engine) UpdateAll(ctx context.Context) (int, error) {
	authors, err := e.store.Authors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list authors: %w", err)
	}
	for i, a := range authors {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := e.update(ctx, a); err != nil {
			return i, err
		}
	}
	return len(authors), nil
}
