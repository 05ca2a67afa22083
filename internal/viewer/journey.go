package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/eventmap/internal/blurzone"
	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/marker"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/route"
	"github.com/playperu/eventmap/internal/session"
	"github.com/playperu/eventmap/internal/viewport"
)

// AvatarHome is where the walking avatar rests when nothing is selected.
var AvatarHome = eventmap.Point{X: 50, Y: 90}

type openView struct {
	event      eventmap.EventMarker
	openedAt   time.Time
	audioOn    bool
	audioSince time.Time
	audioAcc   time.Duration
}

// Journey is owned by the UI event loop. Only the session tracker it holds
// runs work on another goroutine.
type Journey struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	identity eventmap.Identity
	catalog  eventmap.Catalog
	paths    []route.Path
	sequence marker.Sequence
	layer    marker.Layer

	viewport    *viewport.Controller
	zones       *blurzone.Manager
	tracker     *session.Tracker
	celebration *progress.Celebration
	progress    eventmap.Progress

	open *openView

	// OnCelebrate runs once when the visitor completes the map.
	OnCelebrate func(message string)
}

func New(backend Backend, identity eventmap.Identity, logger *slog.Logger) *Journey {
	return &Journey{
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		identity: identity,
		layer:    marker.NewLayer(),
	}
}

// Load fetches the catalog and the visitor's state for a map. Only a
// catalog failure is returned; every other lookup falls back to a safe
// default.
func (j *Journey) Load(ctx context.Context, mapID string, size viewport.Size) error {
	cat, err := j.backend.FetchCatalog(ctx, mapID)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	j.catalog = cat
	m := cat.Map

	j.viewport = viewport.New(viewport.ConfigForMap(m))
	j.viewport.SetViewport(size)
	j.viewport.Align(eventmap.Point{X: 0, Y: 100}, viewport.AnchorBottomLeft)

	j.paths = route.Render(route.StrategyFor(m.Style), cat.Routes, cat.Events)
	j.sequence = marker.NewSequence(cat.Events)

	firstTime, err := j.backend.CheckFirstTimeVisitor(ctx, j.identity, m.ID)
	if err != nil {
		j.logger.WarnContext(ctx, "first-time check failed", "map_id", m.ID, "error", err)
		firstTime = true
	}
	j.zones = blurzone.New(m.BlurZones, firstTime, nil)

	seen := false
	if j.identity.Key() != "" {
		seen, err = j.backend.CheckCelebrationSeen(ctx, j.identity, m.ID)
		if err != nil {
			// Unknown is treated as seen so a flaky store cannot replay it.
			j.logger.WarnContext(ctx, "celebration check failed", "map_id", m.ID, "error", err)
			seen = true
		}
	}
	j.celebration = progress.NewCelebration(seen)

	j.progress = progress.Aggregate(cat.Events, nil)
	j.refreshProgress(ctx)

	j.tracker = session.New(j.backend, j.logger, session.Config{Now: j.now})
	if err := j.tracker.Start(j.identity, m.ID); err != nil {
		j.logger.DebugContext(ctx, "session not tracked", "map_id", m.ID, "error", err)
	}
	return nil
}

func (j *Journey) refreshProgress(ctx context.Context) {
	if j.identity.Key() == "" {
		return
	}
	p, err := j.backend.FetchProgress(ctx, j.identity, j.catalog.Map.ID)
	if err != nil {
		j.logger.WarnContext(ctx, "progress fetch failed", "map_id", j.catalog.Map.ID, "error", err)
		return
	}
	j.applyProgress(ctx, p)
}

func (j *Journey) applyProgress(ctx context.Context, p eventmap.Progress) {
	j.progress = p
	if !j.celebration.Check(p) {
		return
	}
	// Persist before showing so a refresh race cannot celebrate twice.
	if err := j.backend.MarkCelebrationSeen(ctx, j.identity, j.catalog.Map.ID); err != nil {
		j.logger.WarnContext(ctx, "mark celebration failed", "map_id", j.catalog.Map.ID, "error", err)
	}
	if j.OnCelebrate != nil {
		j.OnCelebrate(j.catalog.Map.CompletionMessage)
	}
}

// RunSession sends heartbeats until ctx is done, then flushes once.
func (j *Journey) RunSession(ctx context.Context) {
	if j.tracker == nil || j.tracker.State() != session.Tracking {
		return
	}
	j.tracker.Run(ctx)
}

func (j *Journey) SetVisible(visible bool) {
	if j.tracker != nil {
		j.tracker.SetVisible(visible)
	}
}

// Open handles a tap on a marker. Panel events start a timed view, closing
// and committing any view already open. Links and named actions are handed
// back to the caller untimed.
func (j *Journey) Open(ctx context.Context, eventID string) (marker.Action, error) {
	ev, ok := j.catalog.EventByID(eventID)
	if !ok {
		return marker.Action{}, fmt.Errorf("event %q: %w", eventID, eventmap.ErrNotFound)
	}
	action := marker.ActionFor(ev)
	if action.Kind != eventmap.ClickPanel {
		return action, nil
	}
	if j.open != nil {
		if j.open.event.ID == eventID {
			return action, nil
		}
		j.Close(ctx)
	}
	j.open = &openView{event: ev, openedAt: j.now()}
	return action, nil
}

// OpenNext moves the detail panel to the following event in order.
func (j *Journey) OpenNext(ctx context.Context) (marker.Action, error) {
	if j.open == nil {
		return marker.Action{}, errors.New("no event open")
	}
	next, ok := j.sequence.Next(j.open.event.ID)
	if !ok {
		return marker.Action{}, fmt.Errorf("no event after %q: %w", j.open.event.ID, eventmap.ErrNotFound)
	}
	return j.Open(ctx, next)
}

func (j *Journey) OpenPrev(ctx context.Context) (marker.Action, error) {
	if j.open == nil {
		return marker.Action{}, errors.New("no event open")
	}
	prev, ok := j.sequence.Prev(j.open.event.ID)
	if !ok {
		return marker.Action{}, fmt.Errorf("no event before %q: %w", j.open.event.ID, eventmap.ErrNotFound)
	}
	return j.Open(ctx, prev)
}

// PlayAudio starts the guide for the open event. alt picks the secondary
// language track when the event has one. It returns the URL to play.
func (j *Journey) PlayAudio(alt bool) (string, bool) {
	v := j.open
	if v == nil {
		return "", false
	}
	url := v.event.AudioURL
	if alt && v.event.AltAudioURL != "" {
		url = v.event.AltAudioURL
	}
	if url == "" {
		return "", false
	}
	if !v.audioOn {
		v.audioOn = true
		v.audioSince = j.now()
	}
	return url, true
}

func (j *Journey) PauseAudio() {
	v := j.open
	if v == nil || !v.audioOn {
		return
	}
	v.audioAcc += j.now().Sub(v.audioSince)
	v.audioOn = false
}

// Close ends the open view, stops audio, and commits the view exactly once.
func (j *Journey) Close(ctx context.Context) {
	v := j.open
	if v == nil {
		return
	}
	j.PauseAudio()
	j.open = nil

	if j.identity.Key() == "" {
		return
	}
	in := eventmap.Interaction{
		Identity:            j.identity,
		EventID:             v.event.ID,
		MapID:               j.catalog.Map.ID,
		ViewDuration:        j.now().Sub(v.openedAt).Seconds(),
		AudioListenDuration: v.audioAcc.Seconds(),
	}
	res, err := j.backend.RecordInteraction(ctx, in)
	if err != nil {
		j.logger.WarnContext(ctx, "recording view failed", "event_id", v.event.ID, "error", err)
		return
	}
	if res.Progress != nil {
		j.applyProgress(ctx, *res.Progress)
		return
	}
	j.refreshProgress(ctx)
}

func (j *Journey) Catalog() eventmap.Catalog      { return j.catalog }
func (j *Journey) Paths() []route.Path            { return j.paths }
func (j *Journey) Progress() eventmap.Progress    { return j.progress }
func (j *Journey) Viewport() *viewport.Controller { return j.viewport }
func (j *Journey) Zones() *blurzone.Manager       { return j.zones }
func (j *Journey) Session() *session.Tracker      { return j.tracker }
func (j *Journey) Celebrated() bool               { return j.celebration != nil && j.celebration.Fired() }

// Selected returns the id of the open event, or "".
func (j *Journey) Selected() string {
	if j.open == nil {
		return ""
	}
	return j.open.event.ID
}

// Placements lays out markers for the current zoom.
func (j *Journey) Placements() []marker.Placement {
	return j.layer.Place(j.catalog.Events, j.Selected(), j.viewport.Transform().Scale)
}

// AvatarTarget is where the walking avatar should head.
func (j *Journey) AvatarTarget() eventmap.Point {
	if j.open == nil {
		return AvatarHome
	}
	return j.open.event.Position
}

// Quiz fetches questions for the end-of-journey quiz.
func (j *Journey) Quiz(ctx context.Context, limit int) ([]eventmap.PublicQuestion, error) {
	qs, err := j.backend.FetchQuizQuestions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading quiz: %w", err)
	}
	return qs, nil
}

// SubmitQuiz is the one call whose failure the visitor sees, so they can
// retry without losing their answers.
func (j *Journey) SubmitQuiz(ctx context.Context, sessionID string, answers []eventmap.QuizAnswer) (eventmap.QuizResult, error) {
	res, err := j.backend.SubmitQuiz(ctx, quiz.Submission{Identity: j.identity, SessionID: sessionID, Answers: answers})
	if err != nil {
		return eventmap.QuizResult{}, fmt.Errorf("submitting quiz: %w", err)
	}
	return res, nil
}
