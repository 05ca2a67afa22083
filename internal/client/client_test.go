package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/eventmap/internal/database"
	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/marker"
	"github.com/playperu/eventmap/internal/metrics"
	"github.com/playperu/eventmap/internal/migrations"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/server"
	"github.com/playperu/eventmap/internal/store"
	"github.com/playperu/eventmap/internal/viewer"
	"github.com/playperu/eventmap/internal/viewport"
)

var walker = eventmap.Identity{UserEmail: "walker@example.com", UserName: "Walker"}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// newAPI serves the real API over a seeded in-memory database.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	st := store.New(db)
	_, err = st.SeedDemo(ctx)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewHandler(discard(), server.Options{
		Store:       st,
		CORSOrigins: []string{"*"},
		QuizLimit:   5,
	}, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestBackendAgainstAPI(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL, discard())

	cat, err := c.FetchCatalog(ctx, "")
	require.NoError(t, err)
	mapID := cat.Map.ID
	assert.True(t, cat.Map.Active)
	assert.Len(t, cat.Events, 4)
	assert.Len(t, cat.Routes, 3)

	first, err := c.CheckFirstTimeVisitor(ctx, walker, mapID)
	require.NoError(t, err)
	assert.True(t, first)

	res, err := c.RecordInteraction(ctx, eventmap.Interaction{
		Identity: walker, EventID: "e-main-stage", MapID: mapID, ViewDuration: 6, AudioListenDuration: 2,
	})
	require.NoError(t, err)
	assert.True(t, res.Record.Completed)
	require.NotNil(t, res.Progress)
	assert.Equal(t, []string{"e-main-stage"}, res.Progress.CompletedEventIDs)

	p, err := c.FetchProgress(ctx, walker, mapID)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Total())
	assert.Equal(t, 1, p.Viewed())

	first, err = c.CheckFirstTimeVisitor(ctx, walker, mapID)
	require.NoError(t, err)
	assert.False(t, first)

	seen, err := c.CheckCelebrationSeen(ctx, walker, mapID)
	require.NoError(t, err)
	assert.False(t, seen)
	require.NoError(t, c.MarkCelebrationSeen(ctx, walker, mapID))
	seen, err = c.CheckCelebrationSeen(ctx, walker, mapID)
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, c.UpsertSessionHeartbeat(ctx, eventmap.Heartbeat{
		SessionID: "s-1", Identity: walker, MapID: mapID, TotalDuration: 10, ActiveDuration: 8,
	}))
	require.NoError(t, c.UpsertSessionHeartbeat(ctx, eventmap.Heartbeat{
		SessionID: "s-1", Identity: walker, MapID: mapID, TotalDuration: 20, ActiveDuration: 15, Final: true,
	}))

	qs, err := c.FetchQuizQuestions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, qs, 2)

	result, err := c.SubmitQuiz(ctx, quiz.Submission{
		Identity:  walker,
		SessionID: "s-1",
		Answers:   []eventmap.QuizAnswer{{QuestionID: "q-fountain", SelectedOption: "1651"}},
	})
	require.NoError(t, err)
	assert.Equal(t, eventmap.QuizResult{Score: 1, Total: 1, Percentage: 100}, result)
}

func TestBackendErrorMapping(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL, discard())

	_, err := c.FetchCatalog(ctx, "missing")
	assert.ErrorIs(t, err, eventmap.ErrNotFound)

	_, err = c.RecordInteraction(ctx, eventmap.Interaction{EventID: "e-wellness", ViewDuration: 3})
	assert.ErrorIs(t, err, eventmap.ErrValidation)

	err = c.UpsertSessionHeartbeat(ctx, eventmap.Heartbeat{MapID: "m"})
	assert.ErrorIs(t, err, eventmap.ErrValidation)

	_, err = c.SubmitQuiz(ctx, quiz.Submission{SessionID: "s-1"})
	assert.ErrorIs(t, err, eventmap.ErrValidation)
}

func TestJourneyOverHTTP(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL, discard())

	j := viewer.New(c, walker, discard())
	require.NoError(t, j.Load(ctx, "", viewport.Size{Width: 390, Height: 844}))

	assert.Equal(t, "Lima Centro Festival", j.Catalog().Map.Name)
	assert.Len(t, j.Paths(), 3)
	assert.True(t, j.Zones().FirstTime())
	assert.Equal(t, 0, j.Progress().Viewed())

	action, err := j.Open(ctx, "e-tickets")
	require.NoError(t, err)
	assert.Equal(t, marker.Action{Kind: eventmap.ClickLink, Target: "https://example.com/tickets"}, action)
	assert.Empty(t, j.Selected())
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"internal error"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard(), WithFailureThreshold(2), WithOpenTimeout(time.Minute))
	ctx := context.Background()

	for range 2 {
		_, err := c.FetchCatalog(ctx, "")
		require.ErrorIs(t, err, eventmap.ErrPersistence)
	}
	_, err := c.FetchCatalog(ctx, "")
	require.ErrorIs(t, err, eventmap.ErrPersistence)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(breakerName)))
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"eventId is required"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, discard(), WithFailureThreshold(1))
	for range 3 {
		_, err := c.RecordInteraction(context.Background(), eventmap.Interaction{Identity: walker})
		require.ErrorIs(t, err, eventmap.ErrValidation)
		assert.Contains(t, err.Error(), "eventId is required")
	}
	assert.Equal(t, gobreaker.StateClosed, c.cb.State())
}
