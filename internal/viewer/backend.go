// Package viewer drives one visitor's journey through a map: loading the
// catalog, timing event views, tracking the session and deciding when to
// celebrate. Persistence failures never block the map; they are logged and
// the affected operation becomes a no-op.
package viewer

import (
	"context"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/session"
)

// Backend is everything the viewer reads from or writes to persistence.
type Backend interface {
	session.Sink

	// FetchCatalog returns the named map, or the active map when mapID is
	// empty.
	FetchCatalog(ctx context.Context, mapID string) (eventmap.Catalog, error)
	RecordInteraction(ctx context.Context, in eventmap.Interaction) (progress.RecordResult, error)
	FetchProgress(ctx context.Context, id eventmap.Identity, mapID string) (eventmap.Progress, error)
	CheckFirstTimeVisitor(ctx context.Context, id eventmap.Identity, mapID string) (bool, error)
	CheckCelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) (bool, error)
	MarkCelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) error
	FetchQuizQuestions(ctx context.Context, limit int) ([]eventmap.PublicQuestion, error)
	SubmitQuiz(ctx context.Context, sub quiz.Submission) (eventmap.QuizResult, error)
}
