package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	dbc, err := Open(filepath.Join(t.TempDir(), "nested", "news.db"))
	require.NoError(t, err)
	defer dbc.Close()

	require.NoError(t, Migrate(ctx, dbc))
	require.NoError(t, Migrate(ctx, dbc))

	var grants int
	err = dbc.QueryRowContext(ctx, `SELECT COUNT(*) FROM group_permissions gp
		JOIN auth_groups g ON g.id = gp.group_id WHERE g.name = ?`, AuthorsGroup).Scan(&grants)
	require.NoError(t, err)
	assert.Equal(t, 3, grants)
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	dbc, err := Open(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	defer dbc.Close()
	require.NoError(t, Migrate(ctx, dbc))

	_, err = dbc.ExecContext(ctx, `INSERT INTO authors(user_id) VALUES (999)`)
	assert.Error(t, err)
}
