package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/marker"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/viewport"
)

type fakeBackend struct {
	catalog    eventmap.Catalog
	catalogErr error
	completed  map[string]bool
	seen       bool

	recordErr    error
	firstTimeErr error
	seenErr      error
	submitErr    error

	recorded []eventmap.Interaction
	calls    []string
	beats    []eventmap.Heartbeat
}

func (f *fakeBackend) FetchCatalog(context.Context, string) (eventmap.Catalog, error) {
	return f.catalog, f.catalogErr
}

func (f *fakeBackend) progress() eventmap.Progress {
	var ids []string
	for id, ok := range f.completed {
		if ok {
			ids = append(ids, id)
		}
	}
	return progress.Aggregate(f.catalog.Events, ids)
}

func (f *fakeBackend) RecordInteraction(_ context.Context, in eventmap.Interaction) (progress.RecordResult, error) {
	f.calls = append(f.calls, "record")
	if f.recordErr != nil {
		return progress.RecordResult{}, f.recordErr
	}
	f.recorded = append(f.recorded, in)
	if in.ViewDuration > eventmap.CompletionThreshold {
		f.completed[in.EventID] = true
	}
	p := f.progress()
	return progress.RecordResult{Progress: &p}, nil
}

func (f *fakeBackend) FetchProgress(context.Context, eventmap.Identity, string) (eventmap.Progress, error) {
	return f.progress(), nil
}

func (f *fakeBackend) CheckFirstTimeVisitor(context.Context, eventmap.Identity, string) (bool, error) {
	if f.firstTimeErr != nil {
		return false, f.firstTimeErr
	}
	return len(f.completed) == 0, nil
}

func (f *fakeBackend) CheckCelebrationSeen(context.Context, eventmap.Identity, string) (bool, error) {
	return f.seen, f.seenErr
}

func (f *fakeBackend) MarkCelebrationSeen(context.Context, eventmap.Identity, string) error {
	f.calls = append(f.calls, "mark")
	f.seen = true
	return nil
}

func (f *fakeBackend) UpsertSessionHeartbeat(_ context.Context, hb eventmap.Heartbeat) error {
	f.beats = append(f.beats, hb)
	return nil
}

func (f *fakeBackend) FetchQuizQuestions(context.Context, int) ([]eventmap.PublicQuestion, error) {
	return []eventmap.PublicQuestion{{ID: "q1", Text: "?", Options: []string{"a", "b"}}}, nil
}

func (f *fakeBackend) SubmitQuiz(_ context.Context, sub quiz.Submission) (eventmap.QuizResult, error) {
	if f.submitErr != nil {
		return eventmap.QuizResult{}, f.submitErr
	}
	return eventmap.QuizResult{Score: 1, Total: len(sub.Answers), Percentage: 100}, nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		completed: make(map[string]bool),
		catalog: eventmap.Catalog{
			Map: eventmap.MapDefinition{
				ID:                "m1",
				Style:             eventmap.StyleGridCity,
				CompletionMessage: "You did it!",
				BlurZones:         []eventmap.BlurZone{{ID: "z1", Width: 10, Height: 10}},
			},
			Events: []eventmap.EventMarker{
				{ID: "a1", Group: "A", Order: 1, Status: eventmap.StatusActive, Position: eventmap.Point{X: 20, Y: 40}, AudioURL: "/a1.mp3", AltAudioURL: "/a1-en.mp3"},
				{ID: "a2", Group: "A", Order: 2, Status: eventmap.StatusActive},
				{ID: "b1", Group: "B", Order: 3, Status: eventmap.StatusActive},
				{ID: "web", Order: 4, Click: eventmap.ClickBehavior{Kind: eventmap.ClickLink, Target: "https://example.com"}},
			},
			Routes: []eventmap.Route{
				{ID: "r1", From: "a1", To: "a2"},
				{ID: "r2", From: "a2", To: "gone"},
			},
		},
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var visitor = eventmap.Identity{UserEmail: "ana@example.com"}

func load(t *testing.T, b *fakeBackend, id eventmap.Identity) (*Journey, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	j := New(b, id, slog.New(slog.NewTextHandler(io.Discard, nil)))
	j.now = c.now
	require.NoError(t, j.Load(context.Background(), "", viewport.Size{Width: 1280, Height: 800}))
	return j, c
}

func TestLoadBuildsScene(t *testing.T) {
	b := newBackend()
	j, _ := load(t, b, visitor)

	assert.Len(t, j.Paths(), 1, "dangling route dropped")
	assert.Equal(t, "r1", j.Paths()[0].RouteID)
	assert.Equal(t, 2.5, j.Viewport().Config().CeilingFactor)
	assert.Len(t, j.Zones().Visible(), 1)
	assert.Len(t, j.Placements(), 4)
	assert.Equal(t, 3, j.Progress().Total())
	assert.Equal(t, AvatarHome, j.AvatarTarget())
	assert.NotEmpty(t, j.Session().SessionID())
}

func TestLoadFailsOnlyWithoutCatalog(t *testing.T) {
	b := newBackend()
	b.catalogErr = errors.New("offline")
	j := New(b, visitor, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, j.Load(context.Background(), "m1", viewport.Size{Width: 400, Height: 800}))
}

func TestViewCommittedOnCloseAndSwitch(t *testing.T) {
	b := newBackend()
	j, c := load(t, b, visitor)
	ctx := context.Background()

	_, err := j.Open(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, eventmap.Point{X: 20, Y: 40}, j.AvatarTarget())
	c.advance(3 * time.Second)

	// Switching commits the first view.
	_, err = j.Open(ctx, "a2")
	require.NoError(t, err)
	require.Len(t, b.recorded, 1)
	assert.Equal(t, "a1", b.recorded[0].EventID)
	assert.Equal(t, 3.0, b.recorded[0].ViewDuration)
	assert.Equal(t, "m1", b.recorded[0].MapID)

	c.advance(8 * time.Second)
	j.Close(ctx)
	require.Len(t, b.recorded, 2)
	assert.Equal(t, 8.0, b.recorded[1].ViewDuration)
	assert.Equal(t, 1, j.Progress().Viewed())

	// Closing twice commits nothing more.
	j.Close(ctx)
	assert.Len(t, b.recorded, 2)
}

func TestLinksAreNotTimed(t *testing.T) {
	b := newBackend()
	j, _ := load(t, b, visitor)

	action, err := j.Open(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, marker.Action{Kind: eventmap.ClickLink, Target: "https://example.com"}, action)
	assert.Empty(t, j.Selected())

	_, err = j.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, eventmap.ErrNotFound)
}

func TestAudioTime(t *testing.T) {
	b := newBackend()
	j, c := load(t, b, visitor)
	ctx := context.Background()

	_, ok := j.PlayAudio(false)
	assert.False(t, ok, "nothing open")

	_, err := j.Open(ctx, "a1")
	require.NoError(t, err)
	url, ok := j.PlayAudio(false)
	require.True(t, ok)
	assert.Equal(t, "/a1.mp3", url)
	c.advance(4 * time.Second)
	j.PauseAudio()
	c.advance(2 * time.Second)

	url, _ = j.PlayAudio(true)
	assert.Equal(t, "/a1-en.mp3", url)
	c.advance(time.Second)
	j.Close(ctx)

	require.Len(t, b.recorded, 1)
	assert.Equal(t, 5.0, b.recorded[0].AudioListenDuration)
	assert.Equal(t, 7.0, b.recorded[0].ViewDuration)
}

func TestCelebrationFiresOnceAfterMarking(t *testing.T) {
	b := newBackend()
	j, c := load(t, b, visitor)
	ctx := context.Background()

	var messages []string
	j.OnCelebrate = func(msg string) {
		messages = append(messages, msg)
		assert.Equal(t, "mark", b.calls[len(b.calls)-1], "seen flag persisted before display")
	}

	for _, id := range []string{"a1", "a2", "b1", "a1"} {
		_, err := j.Open(ctx, id)
		require.NoError(t, err)
		c.advance(10 * time.Second)
		j.Close(ctx)
	}
	assert.Equal(t, []string{"You did it!"}, messages)
	assert.True(t, j.Celebrated())
	assert.True(t, j.Progress().Complete())
}

func TestCelebrationCheckFailureSuppresses(t *testing.T) {
	b := newBackend()
	b.seenErr = errors.New("timeout")
	j, c := load(t, b, visitor)
	ctx := context.Background()

	fired := false
	j.OnCelebrate = func(string) { fired = true }
	for _, id := range []string{"a1", "a2", "b1"} {
		_, _ = j.Open(ctx, id)
		c.advance(10 * time.Second)
		j.Close(ctx)
	}
	assert.False(t, fired)
}

func TestPersistenceFailuresDegrade(t *testing.T) {
	b := newBackend()
	b.firstTimeErr = errors.New("down")
	b.recordErr = errors.New("down")
	j, c := load(t, b, visitor)
	ctx := context.Background()

	assert.True(t, j.Zones().FirstTime(), "unknown means first-time")

	_, err := j.Open(ctx, "a1")
	require.NoError(t, err)
	c.advance(10 * time.Second)
	j.Close(ctx)
	assert.Equal(t, 0, j.Progress().Viewed())
	assert.Empty(t, j.Selected())
}

func TestAnonymousVisitorIsNotRecorded(t *testing.T) {
	b := newBackend()
	j, c := load(t, b, eventmap.Identity{})
	ctx := context.Background()

	_, err := j.Open(ctx, "a1")
	require.NoError(t, err)
	c.advance(10 * time.Second)
	j.Close(ctx)
	assert.Empty(t, b.calls)
	assert.True(t, j.Zones().FirstTime())

	// No identity, no session.
	j.RunSession(ctx)
	assert.Empty(t, b.beats)
}

func TestSequenceNavigation(t *testing.T) {
	b := newBackend()
	j, _ := load(t, b, visitor)
	ctx := context.Background()

	_, err := j.OpenNext(ctx)
	assert.Error(t, err)

	_, err = j.Open(ctx, "a2")
	require.NoError(t, err)
	_, err = j.OpenNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b1", j.Selected())
	_, err = j.OpenPrev(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", j.Selected())
	assert.Len(t, b.recorded, 2)
}

func TestQuizSubmitSurfacesFailure(t *testing.T) {
	b := newBackend()
	j, _ := load(t, b, visitor)
	ctx := context.Background()

	qs, err := j.Quiz(ctx, 5)
	require.NoError(t, err)
	require.Len(t, qs, 1)

	answers := []eventmap.QuizAnswer{{QuestionID: "q1", SelectedOption: "a"}}
	res, err := j.SubmitQuiz(ctx, "s1", answers)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Percentage)

	b.submitErr = eventmap.ErrPersistence
	_, err = j.SubmitQuiz(ctx, "s1", answers)
	assert.ErrorIs(t, err, eventmap.ErrPersistence)
}

func TestRunSessionFlushesOnCancel(t *testing.T) {
	b := newBackend()
	j, c := load(t, b, visitor)
	c.advance(42 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j.RunSession(ctx)

	require.Len(t, b.beats, 1)
	assert.True(t, b.beats[0].Final)
	assert.Equal(t, 42.0, b.beats[0].TotalDuration)
}
