package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"newsroom/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingFetcher struct {
	calls atomic.Int32
	posts map[int64]models.Post
	gate  chan struct{}
}

var errNoPost = errors.New("no such post")

func (f *countingFetcher) Post(ctx context.Context, id int64) (models.Post, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}
	if f.gate != nil {
		<-f.gate
	}
	p, ok := f.posts[id]
	if !ok {
		return p, errNoPost
	}
	return p, nil
}

type brokenClient struct{}

func (brokenClient) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenClient) Set(context.Context, string, []byte) error   { return errors.New("down") }
func (brokenClient) Delete(context.Context, string) error        { return errors.New("down") }

func samplePost() models.Post {
	return models.Post{
		ID:         7,
		AuthorID:   1,
		Author:     "alice",
		Kind:       models.KindNews,
		Title:      "Hello",
		Text:       "World",
		Rating:     3,
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Categories: []models.Category{{ID: 1, Name: "Tech"}},
	}
}

func newLRU(t *testing.T) *LRU {
	t.Helper()
	c, err := NewLRU(16)
	require.NoError(t, err)
	return c
}

func TestDetailReadThrough(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}}
	client := newLRU(t)
	d := NewDetail(client, f, true, zap.NewNop())

	first, err := d.Post(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())

	raw, err := client.Get(ctx, "post-7")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	second, err := d.Post(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, first, second)
}

func TestDetailMissingPostIsNotCached(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{posts: map[int64]models.Post{}}
	client := newLRU(t)
	d := NewDetail(client, f, true, zap.NewNop())

	_, err := d.Post(ctx, 1)
	assert.ErrorIs(t, err, errNoPost)
	assert.Zero(t, client.Len())
}

func TestDetailFallsThroughWhenCacheIsDown(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}}
	d := NewDetail(brokenClient{}, f, true, zap.NewNop())

	for i := 0; i < 2; i++ {
		p, err := d.Post(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Hello", p.Title)
	}
	assert.Equal(t, int32(2), f.calls.Load())
	d.Invalidate(ctx, 7)
}

func TestDetailIgnoresEmptyAndCorruptEntries(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}}
	client := newLRU(t)
	d := NewDetail(client, f, true, zap.NewNop())

	require.NoError(t, client.Set(ctx, Key(7), []byte{}))
	_, err := d.Post(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, client.Set(ctx, Key(7), []byte("{not json")))
	_, err = d.Post(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
}

func TestDetailInvalidate(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		invalidate bool
		wantCalls  int32
	}{
		{"invalidate on write", true, 2},
		{"keep stale entries", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}}
			d := NewDetail(newLRU(t), f, tt.invalidate, zap.NewNop())

			_, err := d.Post(ctx, 7)
			require.NoError(t, err)
			d.Invalidate(ctx, 7)
			_, err = d.Post(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, f.calls.Load())
		})
	}
}

func TestDetailSharesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}, gate: make(chan struct{})}
	d := NewDetail(newLRU(t), f, true, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Post(ctx, 7)
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining goroutines a chance to join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.LessOrEqual(t, f.calls.Load(), int32(2))
}

func TestLRUEvicts(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(1)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	require.NoError(t, c.Set(ctx, "b", []byte("2")))

	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	v, err := c.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	_, err = NewLRU(0)
	assert.Error(t, err)
}

func TestDetailFetchOutlivesCanceledCaller(t *testing.T) {
	f := &countingFetcher{posts: map[int64]models.Post{7: samplePost()}}
	d := NewDetail(newLRU(t), f, true, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := d.Post(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
}
