package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// AuthorsGroup is the group whose members may publish.
const AuthorsGroup = "authors"

// Open opens the sqlite database at path, creating its directory when needed.
// The pool is limited to one connection so per-connection pragmas hold.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions(
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS auth_groups(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS permissions(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			codename TEXT UNIQUE NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS group_permissions(
			group_id INTEGER NOT NULL REFERENCES auth_groups(id) ON DELETE CASCADE,
			permission_id INTEGER NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
			PRIMARY KEY(group_id, permission_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_groups(
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			group_id INTEGER NOT NULL REFERENCES auth_groups(id) ON DELETE CASCADE,
			PRIMARY KEY(user_id, group_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_permissions(
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			permission_id INTEGER NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
			PRIMARY KEY(user_id, permission_id)
		);`,
		`CREATE TABLE IF NOT EXISTS authors(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS categories(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL CHECK(length(name) <= 64)
		);`,
		`CREATE TABLE IF NOT EXISTS category_subscribers(
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY(category_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS posts(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
			kind TEXT NOT NULL DEFAULT 'AR' CHECK(kind IN ('NW','AR')),
			title TEXT NOT NULL CHECK(length(title) <= 128),
			text TEXT NOT NULL,
			rating INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS post_categories(
			post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			PRIMARY KEY(post_id, category_id)
		);`,
		`CREATE TABLE IF NOT EXISTS comments(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			rating INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_user ON comments(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_post_categories_category ON post_categories(category_id);`,
		// Publishing permissions and the group that holds them
		`INSERT OR IGNORE INTO permissions(codename) VALUES
			('add_post'),('change_post'),('delete_post');`,
		`INSERT OR IGNORE INTO auth_groups(name) VALUES ('` + AuthorsGroup + `');`,
		`INSERT OR IGNORE INTO group_permissions(group_id, permission_id)
			SELECT g.id, p.id FROM auth_groups g, permissions p
			WHERE g.name = '` + AuthorsGroup + `' AND p.codename IN ('add_post','change_post','delete_post');`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
