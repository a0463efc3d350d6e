// Package cache holds the keyed cache in front of post detail lookups.
package cache

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrMiss is returned by Client.Get when the key holds no value.
var ErrMiss = errors.New("cache miss")

// Client is the cache service: any keyed byte store works, in-process or
// remote.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LRU is an in-process Client. Entries never expire; the least recently
// used one is evicted once size is reached.
type LRU struct {
	entries *lru.Cache[string, []byte]
}

func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: c}, nil
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (c *LRU) Set(_ context.Context, key string, value []byte) error {
	c.entries.Add(key, value)
	return nil
}

func (c *LRU) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *LRU) Len() int {
	return c.entries.Len()
}
