package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
)

type celebrationDoc struct {
	UserEmail string    `json:"userEmail"`
	MapID     string    `json:"mapId"`
	SeenAt    time.Time `json:"seenAt"`
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateInteraction applies fn to the interaction of (email, eventID)
// inside a transaction, so concurrent commits for the same pair add up
// instead of overwriting each other.
func (s *DocStore) UpdateInteraction(ctx context.Context, email, eventID string,
	fn func(rec eventmap.InteractionRecord, found bool) eventmap.InteractionRecord,
) (out eventmap.InteractionRecord, err error) {
	defer observe("upsert", "interactions", time.Now(), &err)
	email = emailKey(email)
	if email == "" {
		return eventmap.InteractionRecord{}, eventmap.ErrMissingIdentity
	}

	err = s.inTx(ctx, func(q querier) error {
		var (
			rec   eventmap.InteractionRecord
			data  string
			found bool
		)
		err := q.QueryRowContext(ctx,
			`SELECT json(data) FROM interactions WHERE user_email = ? AND event_id = ?`,
			email, eventID,
		).Scan(&data)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(data), &rec); err != nil {
				return err
			}
			found = true
		}

		out = fn(rec, found)
		out.UserEmail = email
		out.EventID = eventID
		doc, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO interactions (user_email, event_id, completed, data) VALUES (?, ?, ?, jsonb(?))
			 ON CONFLICT(user_email, event_id) DO UPDATE SET completed = excluded.completed, data = excluded.data`,
			email, eventID, boolInt(out.Completed), string(doc),
		)
		return err
	})
	if err != nil {
		return eventmap.InteractionRecord{}, fmt.Errorf("updating interaction: %w", err)
	}
	return out, nil
}

// CompletedEventIDs returns the ids of every event the user has completed,
// across all maps.
func (s *DocStore) CompletedEventIDs(ctx context.Context, email string) (_ []string, err error) {
	defer observe("list", "interactions", time.Now(), &err)
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id FROM interactions WHERE user_email = ? AND completed = 1 ORDER BY event_id`,
		emailKey(email),
	)
	if err != nil {
		return nil, fmt.Errorf("listing completed events: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListInteractions returns the raw interaction records of a user.
func (s *DocStore) ListInteractions(ctx context.Context, email string) (_ []eventmap.InteractionRecord, err error) {
	defer observe("list", "interactions", time.Now(), &err)
	recs, err := all[eventmap.InteractionRecord](ctx, s.db,
		`SELECT json(data) FROM interactions WHERE user_email = ?`, emailKey(email))
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	slices.SortStableFunc(recs, func(a, b eventmap.InteractionRecord) int {
		return strings.Compare(a.EventID, b.EventID)
	})
	return recs, nil
}

func (s *DocStore) CelebrationSeen(ctx context.Context, email, mapID string) (_ bool, err error) {
	defer observe("get", "celebrations", time.Now(), &err)
	var n int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM celebrations WHERE user_email = ? AND map_id = ?`,
		emailKey(email), mapID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking celebration: %w", err)
	}
	return n > 0, nil
}

// MarkCelebrationSeen is idempotent; the first timestamp wins.
func (s *DocStore) MarkCelebrationSeen(ctx context.Context, email, mapID string, at time.Time) (err error) {
	defer observe("insert", "celebrations", time.Now(), &err)
	email = emailKey(email)
	if email == "" {
		return eventmap.ErrMissingIdentity
	}
	data, err := json.Marshal(celebrationDoc{UserEmail: email, MapID: mapID, SeenAt: at.UTC()})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO celebrations (user_email, map_id, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(user_email, map_id) DO NOTHING`,
		email, mapID, string(data),
	)
	if err != nil {
		return fmt.Errorf("marking celebration: %w", err)
	}
	return nil
}

// UpsertSessionHeartbeat stores the latest totals of a map session.
// Durations never move backwards: a late or reordered heartbeat keeps the
// larger stored values and is counted as stale.
func (s *DocStore) UpsertSessionHeartbeat(ctx context.Context, hb eventmap.Heartbeat) (err error) {
	defer observe("upsert", "map_sessions", time.Now(), &err)
	if strings.TrimSpace(hb.SessionID) == "" {
		return fmt.Errorf("%w: session id required", eventmap.ErrValidation)
	}
	if hb.TotalDuration < 0 || hb.ActiveDuration < 0 {
		return fmt.Errorf("%w: negative session duration", eventmap.ErrValidation)
	}

	outcome := "stored"
	err = s.inTx(ctx, func(q querier) error {
		var sess eventmap.MapSession
		err := get(ctx, q, "map_sessions", hb.SessionID, &sess)
		switch {
		case errors.Is(err, ErrNotFound):
			sess = eventmap.MapSession{SessionID: hb.SessionID, MapID: hb.MapID, StartedAt: s.now()}
		case err != nil:
			return err
		}

		if hb.TotalDuration < sess.TotalDuration || hb.ActiveDuration < sess.ActiveDuration {
			outcome = "stale"
		}
		sess.Identity = sess.Identity.Merge(hb.Identity)
		sess.UserEmail = emailKey(sess.UserEmail)
		sess.TotalDuration = max(sess.TotalDuration, hb.TotalDuration)
		sess.ActiveDuration = max(sess.ActiveDuration, hb.ActiveDuration)
		sess.LastUpdate = s.now()
		if hb.Final {
			sess.Completed = true
			if outcome != "stale" {
				outcome = "final"
			}
		}

		data, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO map_sessions (id, map_id, user_email, data) VALUES (?, ?, ?, jsonb(?))
			 ON CONFLICT(id) DO UPDATE SET user_email = excluded.user_email, data = excluded.data`,
			sess.SessionID, sess.MapID, sess.UserEmail, string(data),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("storing heartbeat: %w", err)
	}
	metrics.RecordHeartbeat(outcome)
	return nil
}

func (s *DocStore) GetSession(ctx context.Context, sessionID string) (sess eventmap.MapSession, err error) {
	defer observe("get", "map_sessions", time.Now(), &err)
	err = get(ctx, s.db, "map_sessions", sessionID, &sess)
	return sess, err
}
