package subscription

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsroom/internal/db"
	"newsroom/internal/store"
)

func newRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	dbc, err := db.Open(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(context.Background(), dbc))
	s := store.New(dbc)
	return NewRegistry(s, zap.NewNop()), s
}

func TestSubscribeTech(t *testing.T) {
	reg, s := newRegistry(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "u@example.com", "u", "x")
	require.NoError(t, err)
	v, err := s.CreateUser(ctx, "v@example.com", "v", "x")
	require.NoError(t, err)
	tech, err := s.CreateCategory(ctx, "Tech")
	require.NoError(t, err)

	subs, err := reg.Subscribers(ctx, tech)
	require.NoError(t, err)
	assert.Empty(t, subs)

	c, err := reg.Subscribe(ctx, u, tech)
	require.NoError(t, err)
	assert.Equal(t, "Tech", c.Name)

	subs, err = reg.Subscribers(ctx, tech)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, u, subs[0].ID)

	ok, err := reg.IsSubscriber(ctx, u, tech)
	require.NoError(t, err)
	assert.True(t, ok, "U is subscribed")
	ok, err = reg.IsSubscriber(ctx, v, tech)
	require.NoError(t, err)
	assert.False(t, ok, "V is not subscribed")
}

func TestSubscribeTwiceKeepsOneEntry(t *testing.T) {
	reg, s := newRegistry(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "u@example.com", "u", "x")
	require.NoError(t, err)
	tech, err := s.CreateCategory(ctx, "Tech")
	require.NoError(t, err)

	_, err = reg.Subscribe(ctx, u, tech)
	require.NoError(t, err)
	_, err = reg.Subscribe(ctx, u, tech)
	require.NoError(t, err)

	subs, err := reg.Subscribers(ctx, tech)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscribeMissingCategory(t *testing.T) {
	reg, s := newRegistry(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "u@example.com", "u", "x")
	require.NoError(t, err)

	_, err = reg.Subscribe(ctx, u, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = reg.Subscribers(ctx, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
