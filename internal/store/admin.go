package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// AdminSessionTTL bounds how long an admin cookie stays valid.
const AdminSessionTTL = 7 * 24 * time.Hour

// ErrNoAdminSession is returned for unknown or expired admin sessions.
var ErrNoAdminSession = errors.New("no valid admin session")

type AdminSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *DocStore) CreateAdminSession(ctx context.Context) (_ AdminSession, err error) {
	defer observe("insert", "admin_sessions", time.Now(), &err)
	now := s.now()
	sess := AdminSession{ID: newID(), CreatedAt: now, ExpiresAt: now.Add(AdminSessionTTL)}
	data, err := json.Marshal(sess)
	if err != nil {
		return AdminSession{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, expires_at, data) VALUES (?, ?, jsonb(?))`,
		sess.ID, sess.ExpiresAt.Format(time.RFC3339), string(data),
	)
	if err != nil {
		return AdminSession{}, fmt.Errorf("creating admin session: %w", err)
	}
	return sess, nil
}

// AdminSession returns a live session. Expired sessions are removed on
// the way out.
func (s *DocStore) AdminSession(ctx context.Context, id string) (sess AdminSession, err error) {
	defer observe("get", "admin_sessions", time.Now(), &err)
	var data string
	err = s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admin_sessions WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminSession{}, ErrNoAdminSession
	}
	if err != nil {
		return AdminSession{}, err
	}
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return AdminSession{}, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, id)
		return AdminSession{}, ErrNoAdminSession
	}
	return sess, nil
}

func (s *DocStore) DeleteAdminSession(ctx context.Context, id string) (err error) {
	defer observe("delete", "admin_sessions", time.Now(), &err)
	_, err = s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, id)
	return err
}
