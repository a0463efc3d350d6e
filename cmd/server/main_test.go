package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom/internal/store"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{"PORT", "NEWS_DB_PATH", "NEWS_LOG_LEVEL", "NEWS_CACHE_SIZE"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(dir, "newsroom.yaml")
	body := "database:\n  path: " + filepath.Join(dir, "news.db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAdminCommands(t *testing.T) {
	path := writeConfig(t)

	_, err := execute(t, "migrate", "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "create-category", "Tech", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "category 1 Tech\n", out)

	_, err = execute(t, "create-category", "Tech", "--config", path)
	assert.Error(t, err)

	out, err = execute(t, "update-ratings", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "updated 0 authors\n", out)

	ctx := context.Background()
	dbc, err := openDB(ctx)
	require.NoError(t, err)
	s := store.New(dbc)
	uid, err := s.CreateUser(ctx, "reader@example.com", "reader", "x")
	require.NoError(t, err)
	require.NoError(t, s.AddSubscriber(ctx, 1, uid))
	require.NoError(t, dbc.Close())

	out, err = execute(t, "subscribers", "1", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com\n", out)

	_, err = execute(t, "subscribers", "404", "--config", path)
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	writeConfig(t)
	_, err := execute(t, "migrate", "--config", "missing.yaml")
	assert.Error(t, err)
}

func TestNewHandlerServesSearch(t *testing.T) {
	path := writeConfig(t)
	_, err := execute(t, "migrate", "--config", path)
	require.NoError(t, err)

	dbc, err := openDB(context.Background())
	require.NoError(t, err)
	defer dbc.Close()
	h, err := newHandler(dbc)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/search", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
