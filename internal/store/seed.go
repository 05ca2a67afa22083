package store

import (
	"context"
	"fmt"

	"github.com/playperu/eventmap/internal/eventmap"
)

const demoMapID = "m0000000deadbeef"

// SeedDemo creates a demo festival map with events, routes and quiz
// questions. Idempotent: does nothing if any map exists.
func (s *DocStore) SeedDemo(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM maps`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	m, err := s.CreateMap(ctx, eventmap.MapDefinition{
		ID:                demoMapID,
		Name:              "Lima Centro Festival",
		Style:             eventmap.StyleGridCity,
		Description:       "Walk the historic center and catch every stage.",
		Config:            eventmap.DefaultVisualConfig(),
		CompletionMessage: "You visited every stop of the festival!",
		BlurZones: []eventmap.BlurZone{
			{ID: "z-north", X: 20, Y: 5, Width: 60, Height: 20, Message: "Tap to reveal the north plaza"},
		},
	})
	if err != nil {
		return false, fmt.Errorf("seeding map: %w", err)
	}

	events := []eventmap.EventMarker{
		{ID: "e-main-stage", Title: "Main Stage", MarkerTitle: "Stage", Position: eventmap.Point{X: 30, Y: 40},
			Category: "performance", Color: "#e4572e", Group: "Music", Order: 1, Status: eventmap.StatusActive,
			Description: "Live sets all afternoon in Plaza Mayor.", Location: "Plaza Mayor",
			AudioURL: "/media/main-stage-es.mp3", AltAudioURL: "/media/main-stage-en.mp3"},
		{ID: "e-wellness", Title: "Wellness Dome", Position: eventmap.Point{X: 70, Y: 35},
			Category: "wellness", Color: "#29b6f6", Group: "Wellness", Order: 2, Status: eventmap.StatusActive,
			Description: "Guided breathing every hour.", Location: "San Francisco"},
		{ID: "e-food-court", Title: "Food Court", Position: eventmap.Point{X: 55, Y: 70},
			Category: "food", Color: "#f3a712", Group: "Food", Order: 3, Status: eventmap.StatusActive,
			Description: "Ceviche, anticuchos and picarones.", Location: "Jiron de la Union"},
		{ID: "e-tickets", Title: "Tickets", Position: eventmap.Point{X: 50, Y: 88},
			Order: 4, Status: eventmap.StatusActive,
			Click: eventmap.ClickBehavior{Kind: eventmap.ClickLink, Target: "https://example.com/tickets"}},
	}
	if _, err := s.ReplaceEvents(ctx, m.ID, events); err != nil {
		return false, fmt.Errorf("seeding events: %w", err)
	}

	routes := []eventmap.Route{
		{ID: "r-1", From: "e-tickets", To: "e-main-stage"},
		{ID: "r-2", From: "e-main-stage", To: "e-wellness"},
		{ID: "r-3", From: "e-wellness", To: "e-food-court"},
	}
	if _, err := s.ReplaceRoutes(ctx, m.ID, routes); err != nil {
		return false, fmt.Errorf("seeding routes: %w", err)
	}

	if err := s.SetActiveMap(ctx, m.ID); err != nil {
		return false, fmt.Errorf("activating demo map: %w", err)
	}

	questions := []eventmap.QuizQuestion{
		{ID: "q-fountain", Text: "What year was the fountain in Plaza Mayor built?", Options: []string{"1535", "1651", "1821"}, CorrectAnswer: "1651", Category: "history"},
		{ID: "q-catacombs", Text: "What lies beneath the San Francisco church?", Options: []string{"Catacombs", "A river", "A mine"}, CorrectAnswer: "Catacombs", Category: "history"},
		{ID: "q-liberator", Text: "Which liberator has a statue on Jiron de la Union?", Options: []string{"Bolivar", "San Martin", "Sucre"}, CorrectAnswer: "San Martin", Category: "history"},
	}
	for _, q := range questions {
		if _, err := s.CreateQuestion(ctx, q); err != nil {
			return false, fmt.Errorf("seeding question %s: %w", q.ID, err)
		}
	}
	return true, nil
}
