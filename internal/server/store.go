package server

import (
	"context"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/session"
	"github.com/playperu/eventmap/internal/store"
)

// Store is everything the HTTP handlers persist or read.
type Store interface {
	progress.Store
	quiz.Store
	session.Sink

	Catalog(ctx context.Context, mapID string) (eventmap.Catalog, error)
	ActiveMap(ctx context.Context) (eventmap.MapDefinition, error)
	MapRegistry(ctx context.Context) (store.Registry, error)
	ListMaps(ctx context.Context) ([]eventmap.MapDefinition, error)
	GetMap(ctx context.Context, id string) (eventmap.MapDefinition, error)
	CreateMap(ctx context.Context, m eventmap.MapDefinition) (eventmap.MapDefinition, error)
	UpdateMap(ctx context.Context, m eventmap.MapDefinition) (eventmap.MapDefinition, error)
	DeleteMap(ctx context.Context, id string) error
	SetActiveMap(ctx context.Context, id string) error

	ReplaceEvents(ctx context.Context, mapID string, events []eventmap.EventMarker) ([]eventmap.EventMarker, error)
	ReplaceRoutes(ctx context.Context, mapID string, routes []eventmap.Route) ([]eventmap.Route, error)
	UpdateEventPosition(ctx context.Context, mapID, eventID string, p eventmap.Point) (eventmap.EventMarker, error)

	GetSession(ctx context.Context, sessionID string) (eventmap.MapSession, error)

	ListQuestions(ctx context.Context) ([]eventmap.QuizQuestion, error)
	CreateQuestion(ctx context.Context, q eventmap.QuizQuestion) (eventmap.QuizQuestion, error)
	SetQuestionActive(ctx context.Context, id string, active bool) (eventmap.QuizQuestion, error)
	DeleteQuestion(ctx context.Context, id string) error

	CreateAdminSession(ctx context.Context) (store.AdminSession, error)
	AdminSession(ctx context.Context, id string) (store.AdminSession, error)
	DeleteAdminSession(ctx context.Context, id string) error
}

var _ Store = (*store.DocStore)(nil)
