package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"newsroom/internal/models"
)

type Fetcher interface {
	Post(ctx context.Context, id int64) (models.Post, error)
}

// Detail is a read-through cache of single posts keyed "post-{id}".
type Detail struct {
	client     Client
	fetch      Fetcher
	invalidate bool
	group      singleflight.Group
	log        *zap.Logger
}

// NewDetail wraps fetch with client. With invalidateOnWrite unset,
// Invalidate is a no-op and entries stay until the client evicts them.
func NewDetail(client Client, fetch Fetcher, invalidateOnWrite bool, log *zap.Logger) *Detail {
	return &Detail{client: client, fetch: fetch, invalidate: invalidateOnWrite, log: log}
}

func Key(id int64) string {
	return "post-" + strconv.FormatInt(id, 10)
}

// Post returns the cached post or loads and caches it. Cache failures are
// logged and the post is read from the store instead.
func (d *Detail) Post(ctx context.Context, id int64) (models.Post, error) {
	key := Key(id)
	if p, ok := d.lookup(ctx, key); ok {
		return p, nil
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		// Shared by every waiting caller, so the first caller's cancellation
		// does not apply.
		p, err := d.fetch.Post(context.WithoutCancel(ctx), id)
		if err != nil {
			return p, err
		}
		d.store(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return v.(models.Post), nil
}

func (d *Detail) lookup(ctx context.Context, key string) (models.Post, bool) {
	var p models.Post
	raw, err := d.client.Get(ctx, key)
	switch {
	case errors.Is(err, ErrMiss):
		return p, false
	case err != nil:
		d.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return p, false
	case len(raw) == 0:
		return p, false
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		d.log.Warn("cache entry unreadable", zap.String("key", key), zap.Error(err))
		return p, false
	}
	return p, true
}

func (d *Detail) store(ctx context.Context, key string, p models.Post) {
	raw, err := json.Marshal(p)
	if err != nil {
		d.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := d.client.Set(ctx, key, raw); err != nil {
		d.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the cached post after a write.
func (d *Detail) Invalidate(ctx context.Context, id int64) {
	if !d.invalidate {
		return
	}
	key := Key(id)
	if err := d.client.Delete(ctx, key); err != nil {
		d.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
