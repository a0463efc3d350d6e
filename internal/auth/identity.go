package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"newsroom/internal/db"
)

var ErrPermissionDenied = errors.New("permission denied")

// Permission codenames checked by the publishing routes.
const (
	PermAddPost    = "add_post"
	PermChangePost = "change_post"
	PermDeletePost = "delete_post"
)

// Identity answers group and permission questions about users.
type Identity struct {
	db *sql.DB
}

func NewIdentity(db *sql.DB) *Identity {
	return &Identity{db: db}
}

func (i *Identity) HasGroup(ctx context.Context, userID int64, name string) (bool, error) {
	var ok bool
	err := i.db.QueryRowContext(ctx, `SELECT EXISTS(
		SELECT 1 FROM user_groups ug JOIN auth_groups g ON g.id = ug.group_id
		WHERE ug.user_id = ? AND g.name = ?)`, userID, name).Scan(&ok)
	return ok, err
}

// HasPermission reports whether the user holds the permission directly or
// through any of its groups.
func (i *Identity) HasPermission(ctx context.Context, userID int64, codename string) (bool, error) {
	var ok bool
	err := i.db.QueryRowContext(ctx, `SELECT EXISTS(
		SELECT 1 FROM user_groups ug
		JOIN group_permissions gp ON gp.group_id = ug.group_id
		JOIN permissions p ON p.id = gp.permission_id
		WHERE ug.user_id = ? AND p.codename = ?
		UNION ALL
		SELECT 1 FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = ? AND p.codename = ?)`, userID, codename, userID, codename).Scan(&ok)
	return ok, err
}

// AddToGroup makes the user a member of the named group. Existing members
// are left alone.
func (i *Identity) AddToGroup(ctx context.Context, userID int64, name string) error {
	var gid int64
	err := i.db.QueryRowContext(ctx, `SELECT id FROM auth_groups WHERE name = ?`, name).Scan(&gid)
	if err != nil {
		return fmt.Errorf("group %q: %w", name, err)
	}
	_, err = i.db.ExecContext(ctx, `INSERT OR IGNORE INTO user_groups(user_id, group_id) VALUES(?, ?)`, userID, gid)
	if err != nil {
		return fmt.Errorf("add user %d to %q: %w", userID, name, err)
	}
	return nil
}

// Grant gives the user a permission outside of any group.
func (i *Identity) Grant(ctx context.Context, userID int64, codename string) error {
	_, err := i.db.ExecContext(ctx, `INSERT OR IGNORE INTO user_permissions(user_id, permission_id)
		SELECT ?, id FROM permissions WHERE codename = ?`, userID, codename)
	return err
}

// Authorize returns ErrPermissionDenied unless the user holds the permission.
func (i *Identity) Authorize(ctx context.Context, userID int64, codename string) error {
	ok, err := i.HasPermission(ctx, userID, codename)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", codename, ErrPermissionDenied)
	}
	return nil
}

type AuthorStore interface {
	EnsureAuthor(ctx context.Context, userID int64) (int64, error)
}

// Promoter moves users into the authors group.
type Promoter struct {
	identity *Identity
	authors  AuthorStore
	log      *zap.Logger
}

func NewPromoter(identity *Identity, authors AuthorStore, log *zap.Logger) *Promoter {
	return &Promoter{identity: identity, authors: authors, log: log}
}

// UpgradeMe adds the user to the authors group unless already a member.
// It reports whether membership changed.
func (p *Promoter) UpgradeMe(ctx context.Context, userID int64) (bool, error) {
	member, err := p.identity.HasGroup(ctx, userID, db.AuthorsGroup)
	if err != nil {
		return false, err
	}
	if member {
		return false, nil
	}
	if _, err := p.authors.EnsureAuthor(ctx, userID); err != nil {
		return false, err
	}
	if err := p.identity.AddToGroup(ctx, userID, db.AuthorsGroup); err != nil {
		return false, err
	}
	p.log.Info("user promoted", zap.Int64("user", userID), zap.String("group", db.AuthorsGroup))
	return true, nil
}
