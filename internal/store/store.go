// Package store persists the event map domain in libSQL, one table per
// model with the document kept in a JSONB data column.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = eventmap.ErrNotFound

var (
	_ progress.Store = (*DocStore)(nil)
	_ quiz.Store     = (*DocStore)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DocStore implements the persistence needs of the progress, quiz and
// session packages plus the admin surface. The schema is owned by the
// migrations package.
type DocStore struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *DocStore {
	return &DocStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle for health checks.
func (s *DocStore) DB() *sql.DB { return s.db }

func newID() string {
	return uuid.NewString()
}

// observe records a query once the calling method returns. Use it as
// defer observe(op, table, time.Now(), &err) with a named error result.
func observe(op, table string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(op, table, time.Since(start), err)
}

// inTx runs fn inside a transaction. fn must only use the querier it is
// given; the pool may hold a single connection.
func (s *DocStore) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func get(ctx context.Context, q querier, table, id string, dest any) error {
	var data string
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func del(ctx context.Context, q querier, table, id string) error {
	result, err := q.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// all decodes every data document returned by query into a T.
func all[T any](ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
