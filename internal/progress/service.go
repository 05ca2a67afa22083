package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
)

// Store is the persistence the service needs. Implementations must run
// UpdateInteraction as one atomic read-modify-write.
type Store interface {
	UpdateInteraction(ctx context.Context, email, eventID string,
		fn func(rec eventmap.InteractionRecord, found bool) eventmap.InteractionRecord) (eventmap.InteractionRecord, error)
	CompletedEventIDs(ctx context.Context, email string) ([]string, error)
	ListEvents(ctx context.Context, mapID string) ([]eventmap.EventMarker, error)
	CelebrationSeen(ctx context.Context, email, mapID string) (bool, error)
	MarkCelebrationSeen(ctx context.Context, email, mapID string, at time.Time) error
}

type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// RecordResult is the stored record plus, when the caller named a map, the
// visitor's progress on it computed after the write.
type RecordResult struct {
	Record   eventmap.InteractionRecord `json:"record"`
	Progress *eventmap.Progress         `json:"progress,omitempty"`
}

func validDuration(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Record commits one open→close view. It does not deduplicate: callers send
// exactly one commit per view.
func (s *Service) Record(ctx context.Context, in eventmap.Interaction) (RecordResult, error) {
	email := in.Identity.Key()
	if email == "" {
		return RecordResult{}, eventmap.ErrMissingIdentity
	}
	if in.EventID == "" {
		return RecordResult{}, fmt.Errorf("%w: event id required", eventmap.ErrValidation)
	}
	if !validDuration(in.ViewDuration) || !validDuration(in.AudioListenDuration) {
		return RecordResult{}, fmt.Errorf("%w: durations must be non-negative", eventmap.ErrValidation)
	}
	if in.MapID != "" {
		if err := s.requireEvent(ctx, in.MapID, in.EventID); err != nil {
			return RecordResult{}, err
		}
	}

	var wasCompleted bool
	rec, err := s.store.UpdateInteraction(ctx, email, in.EventID,
		func(existing eventmap.InteractionRecord, found bool) eventmap.InteractionRecord {
			wasCompleted = found && existing.Completed
			return Merge(existing, found, in, s.now().UTC())
		})
	if err != nil {
		return RecordResult{}, fmt.Errorf("recording interaction: %w", err)
	}
	metrics.RecordInteraction(rec.Completed && !wasCompleted)

	res := RecordResult{Record: rec}
	if in.MapID != "" {
		p, err := s.Progress(ctx, in.Identity, in.MapID)
		if err != nil {
			// The write landed; a failed read only costs the caller a refetch.
			s.logger.WarnContext(ctx, "progress after record", "map_id", in.MapID, "error", err)
			return res, nil
		}
		res.Progress = &p
	}
	return res, nil
}

// requireEvent rejects views of events the map does not have, so stray ids
// never enter the visitor's history.
func (s *Service) requireEvent(ctx context.Context, mapID, eventID string) error {
	events, err := s.store.ListEvents(ctx, mapID)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	for _, e := range events {
		if e.ID == eventID {
			return nil
		}
	}
	return fmt.Errorf("event %q on map %s: %w", eventID, mapID, eventmap.ErrNotFound)
}

// Progress joins the map's active events with the visitor's completed views.
func (s *Service) Progress(ctx context.Context, id eventmap.Identity, mapID string) (eventmap.Progress, error) {
	email := id.Key()
	if email == "" {
		return eventmap.Progress{}, eventmap.ErrMissingIdentity
	}
	if mapID == "" {
		return eventmap.Progress{}, fmt.Errorf("%w: map id required", eventmap.ErrValidation)
	}
	events, err := s.store.ListEvents(ctx, mapID)
	if err != nil {
		return eventmap.Progress{}, fmt.Errorf("listing events: %w", err)
	}
	completed, err := s.store.CompletedEventIDs(ctx, email)
	if err != nil {
		return eventmap.Progress{}, fmt.Errorf("listing completed events: %w", err)
	}
	return Aggregate(events, completed), nil
}

// FirstTimeVisitor reports whether the visitor has completed no event of
// the map, whatever its status. An unknown visitor is always first-time.
// On a store failure it still returns true alongside the error.
func (s *Service) FirstTimeVisitor(ctx context.Context, id eventmap.Identity, mapID string) (bool, error) {
	email := id.Key()
	if email == "" {
		return true, nil
	}
	events, err := s.store.ListEvents(ctx, mapID)
	if err != nil {
		return true, fmt.Errorf("listing events: %w", err)
	}
	completed, err := s.store.CompletedEventIDs(ctx, email)
	if err != nil {
		return true, fmt.Errorf("listing completed events: %w", err)
	}
	done := make(map[string]struct{}, len(completed))
	for _, c := range completed {
		done[c] = struct{}{}
	}
	for _, e := range events {
		if _, ok := done[e.ID]; ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) CelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) (bool, error) {
	email := id.Key()
	if email == "" {
		return false, eventmap.ErrMissingIdentity
	}
	seen, err := s.store.CelebrationSeen(ctx, email, mapID)
	if errors.Is(err, eventmap.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking celebration: %w", err)
	}
	return seen, nil
}

// MarkCelebrationSeen is idempotent; once set the flag is never cleared.
func (s *Service) MarkCelebrationSeen(ctx context.Context, id eventmap.Identity, mapID string) error {
	email := id.Key()
	if email == "" {
		return eventmap.ErrMissingIdentity
	}
	if mapID == "" {
		return fmt.Errorf("%w: map id required", eventmap.ErrValidation)
	}
	if err := s.store.MarkCelebrationSeen(ctx, email, mapID, s.now().UTC()); err != nil {
		return fmt.Errorf("marking celebration: %w", err)
	}
	metrics.CelebrationsMarked.Inc()
	return nil
}
