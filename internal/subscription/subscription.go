// Package subscription keeps the set of users subscribed to each category.
// Notification delivery reads Subscribers and lives outside this service.
package subscription

import (
	"context"

	"go.uber.org/zap"

	"newsroom/internal/models"
)

type Store interface {
	Category(ctx context.Context, id int64) (models.Category, error)
	AddSubscriber(ctx context.Context, categoryID, userID int64) error
	IsSubscriber(ctx context.Context, categoryID, userID int64) (bool, error)
	Subscribers(ctx context.Context, categoryID int64) ([]models.User, error)
}

type Registry struct {
	store Store
	log   *zap.Logger
}

func NewRegistry(store Store, log *zap.Logger) *Registry {
	return &Registry{store: store, log: log}
}

// Subscribe adds the user to the category. A missing category is
// store.ErrNotFound; subscribing twice is not an error.
func (r *Registry) Subscribe(ctx context.Context, userID, categoryID int64) (models.Category, error) {
	c, err := r.store.Category(ctx, categoryID)
	if err != nil {
		return c, err
	}
	if err := r.store.AddSubscriber(ctx, categoryID, userID); err != nil {
		return c, err
	}
	r.log.Info("subscribed", zap.Int64("user", userID), zap.String("category", c.Name))
	return c, nil
}

func (r *Registry) IsSubscriber(ctx context.Context, userID, categoryID int64) (bool, error) {
	return r.store.IsSubscriber(ctx, categoryID, userID)
}

func (r *Registry) Subscribers(ctx context.Context, categoryID int64) ([]models.User, error) {
	if _, err := r.store.Category(ctx, categoryID); err != nil {
		return nil, err
	}
	return r.store.Subscribers(ctx, categoryID)
}
