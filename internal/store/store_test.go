package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/eventmap/internal/database"
	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/migrations"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
)

func newTestStore(t *testing.T) *DocStore {
	t.Helper()
	db, err := database.Open(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return New(db)
}

func mustCreateMap(t *testing.T, s *DocStore, name string) eventmap.MapDefinition {
	t.Helper()
	m, err := s.CreateMap(context.Background(), eventmap.MapDefinition{Name: name, Style: eventmap.StyleFloorPlan})
	if err != nil {
		t.Fatalf("creating map %q: %v", name, err)
	}
	return m
}

func TestCreateMapDefaults(t *testing.T) {
	s := newTestStore(t)
	m := mustCreateMap(t, s, "Hall A")

	if m.ID == "" {
		t.Fatal("expected generated id")
	}
	if m.Active {
		t.Error("new maps must start inactive")
	}
	if m.Config != eventmap.DefaultVisualConfig() {
		t.Errorf("config = %+v, want defaults", m.Config)
	}

	got, err := s.GetMap(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMap: %v", err)
	}
	if got.Name != "Hall A" || got.Style != eventmap.StyleFloorPlan {
		t.Errorf("GetMap = %+v", got)
	}
}

func TestCreateMapValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		m    eventmap.MapDefinition
	}{
		{"missing name", eventmap.MapDefinition{Style: eventmap.StyleGridCity}},
		{"unknown style", eventmap.MapDefinition{Name: "x", Style: "hexagon"}},
		{"bad corner radius", eventmap.MapDefinition{Name: "x", Style: eventmap.StyleGridCity,
			Config: eventmap.VisualConfig{Ground: eventmap.GroundConfig{CornerRadius: "2 -1"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateMap(ctx, tt.m)
			if !errors.Is(err, eventmap.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGetMapNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetMap(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestActiveMapFallsBackToFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ActiveMap(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store: err = %v, want ErrNotFound", err)
	}

	first := mustCreateMap(t, s, "First")
	s.now = func() time.Time { return time.Now().UTC().Add(time.Minute) }
	mustCreateMap(t, s, "Second")

	got, err := s.ActiveMap(ctx)
	if err != nil {
		t.Fatalf("ActiveMap: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("ActiveMap = %s, want oldest map %s", got.ID, first.ID)
	}

	reg, err := s.MapRegistry(ctx)
	if err != nil {
		t.Fatalf("MapRegistry: %v", err)
	}
	if len(reg.Maps) != 2 || reg.ActiveMapID != first.ID {
		t.Errorf("registry = %+v", reg)
	}
}

func TestSetActiveMapIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreateMap(t, s, "A")
	b := mustCreateMap(t, s, "B")

	if err := s.SetActiveMap(ctx, a.ID); err != nil {
		t.Fatalf("activate A: %v", err)
	}
	if err := s.SetActiveMap(ctx, b.ID); err != nil {
		t.Fatalf("activate B: %v", err)
	}
	// Activating the already active map is a no-op.
	if err := s.SetActiveMap(ctx, b.ID); err != nil {
		t.Fatalf("activate B again: %v", err)
	}

	maps, err := s.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps: %v", err)
	}
	active := 0
	for _, m := range maps {
		if m.Active {
			active++
			if m.ID != b.ID {
				t.Errorf("active map = %s, want %s", m.ID, b.ID)
			}
		}
	}
	if active != 1 {
		t.Errorf("%d active maps, want 1", active)
	}

	if err := s.SetActiveMap(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown map: err = %v, want ErrNotFound", err)
	}
	got, _ := s.ActiveMap(ctx)
	if got.ID != b.ID {
		t.Errorf("failed activation changed the active map to %s", got.ID)
	}
}

func TestUpdateMapKeepsActiveFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := mustCreateMap(t, s, "Old")
	if err := s.SetActiveMap(ctx, m.ID); err != nil {
		t.Fatalf("SetActiveMap: %v", err)
	}

	m.Name = "New"
	m.Active = false
	got, err := s.UpdateMap(ctx, m)
	if err != nil {
		t.Fatalf("UpdateMap: %v", err)
	}
	if got.Name != "New" || !got.Active {
		t.Errorf("UpdateMap = %+v, want renamed and still active", got)
	}
}

func TestEventsAndRoutes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := mustCreateMap(t, s, "Fest")

	events, err := s.ReplaceEvents(ctx, m.ID, []eventmap.EventMarker{
		{ID: "b", Title: "B", Order: 2, Position: eventmap.Point{X: 120, Y: -5}, Status: eventmap.StatusActive},
		{ID: "a", Title: "A", Order: 1, Status: eventmap.StatusActive},
		{Title: "Draft", Order: 3, Status: "Draft"},
	})
	if err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}
	if events[0].Position != (eventmap.Point{X: 100, Y: 0}) {
		t.Errorf("position = %+v, want clamped to (100, 0)", events[0].Position)
	}
	if events[2].ID == "" {
		t.Error("expected generated event id")
	}

	listed, err := s.ListEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != "a" || listed[1].ID != "b" {
		t.Errorf("ListEvents order = %v", ids(listed))
	}

	if _, err := s.ReplaceRoutes(ctx, m.ID, []eventmap.Route{{From: "a", To: "ghost"}}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("dangling route: err = %v, want ErrValidation", err)
	}
	if _, err := s.ReplaceRoutes(ctx, m.ID, []eventmap.Route{{ID: "r1", From: "a", To: "b"}}); err != nil {
		t.Fatalf("ReplaceRoutes: %v", err)
	}

	if err := s.SetActiveMap(ctx, m.ID); err != nil {
		t.Fatalf("SetActiveMap: %v", err)
	}
	cat, err := s.Catalog(ctx, "")
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if cat.Map.ID != m.ID || len(cat.Events) != 3 || len(cat.Routes) != 1 {
		t.Errorf("Catalog = map %s, %d events, %d routes", cat.Map.ID, len(cat.Events), len(cat.Routes))
	}
}

func TestReplaceEventsUnknownMap(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReplaceEvents(context.Background(), "missing", []eventmap.EventMarker{{Title: "A"}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEventPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := mustCreateMap(t, s, "Fest")
	other := mustCreateMap(t, s, "Other")
	if _, err := s.ReplaceEvents(ctx, m.ID, []eventmap.EventMarker{{ID: "a", Title: "A"}}); err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}

	got, err := s.UpdateEventPosition(ctx, m.ID, "a", eventmap.Point{X: 42.5, Y: 180})
	if err != nil {
		t.Fatalf("UpdateEventPosition: %v", err)
	}
	if got.Position != (eventmap.Point{X: 42.5, Y: 100}) {
		t.Errorf("position = %+v", got.Position)
	}

	if _, err := s.UpdateEventPosition(ctx, other.ID, "a", eventmap.Point{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("event of another map: err = %v, want ErrNotFound", err)
	}
}

func TestBlurZoneIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.CreateMap(ctx, eventmap.MapDefinition{Name: "Fog", Style: eventmap.StyleGridCity,
		BlurZones: []eventmap.BlurZone{{X: 10, Y: 10, Width: 20, Height: 20}, {X: 50, Y: 50, Width: 20, Height: 20}}})
	if err != nil {
		t.Fatalf("CreateMap: %v", err)
	}
	a, b := m.BlurZones[0].ID, m.BlurZones[1].ID
	if a == "" || b == "" || a == b {
		t.Errorf("zone ids = %q, %q; want distinct generated ids", a, b)
	}

	m.BlurZones = append(m.BlurZones, eventmap.BlurZone{X: 80, Y: 80, Width: 10, Height: 10})
	got, err := s.UpdateMap(ctx, m)
	if err != nil {
		t.Fatalf("UpdateMap: %v", err)
	}
	if got.BlurZones[0].ID != a || got.BlurZones[2].ID == "" {
		t.Errorf("zone ids after update = %+v", got.BlurZones)
	}

	dup := []eventmap.BlurZone{{ID: "z", Width: 1, Height: 1}, {ID: "z", X: 5, Width: 1, Height: 1}}
	if _, err := s.CreateMap(ctx, eventmap.MapDefinition{Name: "Dup", Style: eventmap.StyleGridCity, BlurZones: dup}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("create with duplicate zone ids: err = %v, want ErrValidation", err)
	}
	m.BlurZones = dup
	if _, err := s.UpdateMap(ctx, m); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("update with duplicate zone ids: err = %v, want ErrValidation", err)
	}
}

func TestReplaceKeepsIDsOnTheirMap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreateMap(t, s, "A")
	b := mustCreateMap(t, s, "B")
	if _, err := s.ReplaceEvents(ctx, a.ID, []eventmap.EventMarker{{ID: "e1", Title: "One"}, {ID: "e2", Title: "Two"}}); err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}
	if _, err := s.ReplaceRoutes(ctx, a.ID, []eventmap.Route{{ID: "r1", From: "e1", To: "e2"}}); err != nil {
		t.Fatalf("ReplaceRoutes: %v", err)
	}

	if _, err := s.ReplaceEvents(ctx, b.ID, []eventmap.EventMarker{{ID: "e1", Title: "Taken"}}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("event id of another map: err = %v, want ErrValidation", err)
	}
	events, err := s.ListEvents(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 || events[0].ID != "e1" || events[0].Title != "One" {
		t.Errorf("map A events = %+v, want untouched", events)
	}

	if _, err := s.ReplaceEvents(ctx, b.ID, []eventmap.EventMarker{{ID: "x", Title: "X"}, {ID: "x", Title: "Y"}}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("duplicate event ids: err = %v, want ErrValidation", err)
	}
	if _, err := s.ReplaceEvents(ctx, b.ID, []eventmap.EventMarker{{ID: "f1", Title: "F1"}, {ID: "f2", Title: "F2"}}); err != nil {
		t.Fatalf("ReplaceEvents on B: %v", err)
	}
	if _, err := s.ReplaceRoutes(ctx, b.ID, []eventmap.Route{{ID: "r1", From: "f1", To: "f2"}}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("route id of another map: err = %v, want ErrValidation", err)
	}
	routes, err := s.ListRoutes(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListRoutes: %v", err)
	}
	if len(routes) != 1 || routes[0].From != "e1" {
		t.Errorf("map A routes = %+v, want untouched", routes)
	}

	// Re-saving a map's own ids is the normal editor flow.
	if _, err := s.ReplaceEvents(ctx, a.ID, []eventmap.EventMarker{{ID: "e1", Title: "Renamed"}, {ID: "e2", Title: "Two"}}); err != nil {
		t.Errorf("re-save own ids: %v", err)
	}
}

func TestDeleteMapCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := mustCreateMap(t, s, "Gone")
	if _, err := s.ReplaceEvents(ctx, m.ID, []eventmap.EventMarker{{ID: "a", Title: "A"}}); err != nil {
		t.Fatalf("ReplaceEvents: %v", err)
	}

	if err := s.DeleteMap(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMap: %v", err)
	}
	events, err := s.ListEvents(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("%d events left after delete", len(events))
	}
	if err := s.DeleteMap(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateInteractionAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	view := func(email string, secs float64) eventmap.InteractionRecord {
		t.Helper()
		in := eventmap.Interaction{
			Identity:     eventmap.Identity{UserEmail: email, UserName: "Ana"},
			EventID:      "e1",
			ViewDuration: secs,
		}
		rec, err := s.UpdateInteraction(ctx, email, "e1", func(rec eventmap.InteractionRecord, found bool) eventmap.InteractionRecord {
			return progress.Merge(rec, found, in, now)
		})
		if err != nil {
			t.Fatalf("UpdateInteraction: %v", err)
		}
		return rec
	}

	first := view("Ana@Example.com", 3)
	if first.Completed {
		t.Error("3s view must not complete")
	}
	second := view("ana@example.com ", 3)
	if second.ViewDuration != 6 || !second.Completed {
		t.Errorf("second view = %+v, want 6s and completed", second)
	}

	ids, err := s.CompletedEventIDs(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("CompletedEventIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "e1" {
		t.Errorf("CompletedEventIDs = %v", ids)
	}

	recs, err := s.ListInteractions(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(recs) != 1 || recs[0].UserName != "Ana" {
		t.Errorf("ListInteractions = %+v", recs)
	}

	if _, err := s.UpdateInteraction(ctx, " ", "e1", nil); !errors.Is(err, eventmap.ErrMissingIdentity) {
		t.Errorf("blank email: err = %v, want ErrMissingIdentity", err)
	}
}

func TestCelebrationSeen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen, err := s.CelebrationSeen(ctx, "a@x.io", "m1")
	if err != nil || seen {
		t.Fatalf("CelebrationSeen = %v, %v; want false, nil", seen, err)
	}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for range 2 {
		if err := s.MarkCelebrationSeen(ctx, "A@x.io", "m1", at); err != nil {
			t.Fatalf("MarkCelebrationSeen: %v", err)
		}
	}
	seen, err = s.CelebrationSeen(ctx, "a@x.io", "m1")
	if err != nil || !seen {
		t.Errorf("CelebrationSeen = %v, %v; want true, nil", seen, err)
	}
	if seen, _ := s.CelebrationSeen(ctx, "a@x.io", "m2"); seen {
		t.Error("celebration leaked to another map")
	}
}

func TestUpsertSessionHeartbeatIsMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := eventmap.Identity{UserEmail: "v@x.io"}

	beats := []eventmap.Heartbeat{
		{SessionID: "s1", Identity: id, MapID: "m1", TotalDuration: 20, ActiveDuration: 20},
		{SessionID: "s1", Identity: id, MapID: "m1", TotalDuration: 40, ActiveDuration: 30},
		{SessionID: "s1", Identity: id, MapID: "m1", TotalDuration: 20, ActiveDuration: 20}, // late
	}
	for _, hb := range beats {
		if err := s.UpsertSessionHeartbeat(ctx, hb); err != nil {
			t.Fatalf("UpsertSessionHeartbeat: %v", err)
		}
	}

	sess, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.TotalDuration != 40 || sess.ActiveDuration != 30 {
		t.Errorf("durations = %v/%v, want 40/30", sess.TotalDuration, sess.ActiveDuration)
	}
	if sess.Completed {
		t.Error("session completed before the final heartbeat")
	}

	final := eventmap.Heartbeat{SessionID: "s1", Identity: id, MapID: "m1", TotalDuration: 45, ActiveDuration: 31, Final: true}
	if err := s.UpsertSessionHeartbeat(ctx, final); err != nil {
		t.Fatalf("final heartbeat: %v", err)
	}
	sess, _ = s.GetSession(ctx, "s1")
	if !sess.Completed || sess.TotalDuration != 45 || sess.UserEmail != "v@x.io" {
		t.Errorf("final session = %+v", sess)
	}

	if err := s.UpsertSessionHeartbeat(ctx, eventmap.Heartbeat{}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("missing session id: err = %v, want ErrValidation", err)
	}
}

func TestQuizQuestions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateQuestion(ctx, eventmap.QuizQuestion{Text: "Q", Options: []string{"a", "b"}, CorrectAnswer: "c"}); !errors.Is(err, eventmap.ErrValidation) {
		t.Errorf("answer outside options: err = %v, want ErrValidation", err)
	}

	q1, err := s.CreateQuestion(ctx, eventmap.QuizQuestion{ID: "q1", Text: "One?", Options: []string{"a", "b"}, CorrectAnswer: "a"})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if !q1.Active {
		t.Error("new question must be active")
	}
	if _, err := s.CreateQuestion(ctx, eventmap.QuizQuestion{ID: "q2", Text: "Two?", Options: []string{"a", "b"}, CorrectAnswer: "b"}); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if _, err := s.SetQuestionActive(ctx, "q2", false); err != nil {
		t.Fatalf("SetQuestionActive: %v", err)
	}

	active, err := s.ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("ActiveQuestions: %v", err)
	}
	if len(active) != 1 || active[0].ID != "q1" {
		t.Errorf("ActiveQuestions = %+v", active)
	}

	byID, err := s.QuestionsByID(ctx, []string{"q1", "q2", "ghost"})
	if err != nil {
		t.Fatalf("QuestionsByID: %v", err)
	}
	if len(byID) != 2 {
		t.Errorf("QuestionsByID returned %d questions, want 2", len(byID))
	}

	all, err := s.ListQuestions(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListQuestions = %d, %v", len(all), err)
	}
	if err := s.DeleteQuestion(ctx, "q2"); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if err := s.DeleteQuestion(ctx, "q2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestQuizEngineAgainstStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	engine := quiz.NewEngine(s)
	res, err := engine.Submit(ctx, quiz.Submission{
		Identity:  eventmap.Identity{UserEmail: "q@x.io"},
		SessionID: "quiz-1",
		Answers: []eventmap.QuizAnswer{
			{QuestionID: "q-fountain", SelectedOption: "1651"},
			{QuestionID: "q-liberator", SelectedOption: "Bolivar"},
		},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 1 || res.Total != 2 || res.Percentage != 50 {
		t.Errorf("result = %+v, want 1/2 = 50%%", res)
	}

	subs, err := s.ListSubmissions(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 1 || len(subs[0].Answers) != 2 || subs[0].Identity.UserEmail != "q@x.io" {
		t.Errorf("submissions = %+v", subs)
	}
}

func TestProgressServiceAgainstStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.SeedDemo(ctx); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	svc := progress.NewService(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	id := eventmap.Identity{UserEmail: "walker@x.io"}

	first, err := svc.FirstTimeVisitor(ctx, id, demoMapID)
	if err != nil || !first {
		t.Fatalf("FirstTimeVisitor = %v, %v; want true", first, err)
	}

	for _, eventID := range []string{"e-main-stage", "e-wellness", "e-food-court", "e-tickets"} {
		res, err := svc.Record(ctx, eventmap.Interaction{Identity: id, EventID: eventID, MapID: demoMapID, ViewDuration: 6})
		if err != nil {
			t.Fatalf("Record %s: %v", eventID, err)
		}
		if res.Progress == nil {
			t.Fatalf("Record %s returned no progress", eventID)
		}
	}

	p, err := svc.Progress(ctx, id, demoMapID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if !p.Complete() || p.Total() != 4 || p.Percentage() != 100 {
		t.Errorf("progress = %+v (%d%%)", p, p.Percentage())
	}

	first, err = svc.FirstTimeVisitor(ctx, id, demoMapID)
	if err != nil || first {
		t.Errorf("FirstTimeVisitor after visits = %v, %v; want false", first, err)
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedDemo(ctx)
	if err != nil || !seeded {
		t.Fatalf("first SeedDemo = %v, %v", seeded, err)
	}
	seeded, err = s.SeedDemo(ctx)
	if err != nil || seeded {
		t.Fatalf("second SeedDemo = %v, %v; want no-op", seeded, err)
	}

	reg, err := s.MapRegistry(ctx)
	if err != nil {
		t.Fatalf("MapRegistry: %v", err)
	}
	if len(reg.Maps) != 1 || reg.ActiveMapID != demoMapID || !reg.Maps[0].Active {
		t.Errorf("registry = %+v", reg)
	}
}

func TestAdminSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	sess, err := s.CreateAdminSession(ctx)
	if err != nil {
		t.Fatalf("CreateAdminSession: %v", err)
	}
	if _, err := s.AdminSession(ctx, sess.ID); err != nil {
		t.Fatalf("AdminSession: %v", err)
	}

	now = now.Add(AdminSessionTTL)
	if _, err := s.AdminSession(ctx, sess.ID); !errors.Is(err, ErrNoAdminSession) {
		t.Errorf("expired session: err = %v, want ErrNoAdminSession", err)
	}

	now = now.Add(-AdminSessionTTL)
	other, _ := s.CreateAdminSession(ctx)
	if err := s.DeleteAdminSession(ctx, other.ID); err != nil {
		t.Fatalf("DeleteAdminSession: %v", err)
	}
	if _, err := s.AdminSession(ctx, other.ID); !errors.Is(err, ErrNoAdminSession) {
		t.Errorf("deleted session: err = %v, want ErrNoAdminSession", err)
	}
}

func ids(events []eventmap.EventMarker) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
