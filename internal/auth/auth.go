package auth

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "news_session"

// Manager keeps cookie sessions in the sessions table. Expiry is stored as
// unix seconds.
type Manager struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

func NewManager(db *sql.DB, maxAge time.Duration) *Manager {
	return &Manager{db: db, maxAge: maxAge, now: time.Now}
}

// Create replaces any previous session of the user with a fresh one.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, userID int64) error {
	ctx := r.Context()
	if _, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return err
	}

	token := uuid.NewString()
	expires := m.now().Add(m.maxAge)
	if _, err := m.db.ExecContext(ctx,
		`INSERT INTO sessions(id, user_id, expires_at) VALUES(?, ?, ?)`, token, userID, expires.Unix()); err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(token, expires))
	return nil
}

// Destroy clears the cookie and forgets the request's session, if any.
// The cookie is cleared even when the delete fails.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0)))
	token := sessionToken(r)
	if token == "" {
		return nil
	}
	if _, err := m.db.ExecContext(r.Context(), `DELETE FROM sessions WHERE id = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *Manager) CurrentUserID(r *http.Request) (int64, bool) {
	token := sessionToken(r)
	if token == "" {
		return 0, false
	}
	var uid int64
	err := m.db.QueryRowContext(r.Context(),
		`SELECT user_id FROM sessions WHERE id = ? AND expires_at > ?`, token, m.now().Unix()).Scan(&uid)
	return uid, err == nil
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
