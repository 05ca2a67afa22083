// Package progress records event views and turns them into per-group
// completion for a visitor on a map.
package progress

import (
	"slices"
	"time"

	"github.com/playperu/eventmap/internal/eventmap"
)

// Merge folds one committed view into a visitor's record for an event.
// Durations add up across visits. Completed latches once a single visit
// lasts longer than eventmap.CompletionThreshold. Identity metadata is
// refreshed from the incoming view but never cleared.
func Merge(existing eventmap.InteractionRecord, found bool, in eventmap.Interaction, now time.Time) eventmap.InteractionRecord {
	done := in.ViewDuration > eventmap.CompletionThreshold
	if !found {
		return eventmap.InteractionRecord{
			Identity:            in.Identity,
			EventID:             in.EventID,
			ViewDuration:        in.ViewDuration,
			AudioListenDuration: in.AudioListenDuration,
			Completed:           done,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
	}
	rec := existing
	rec.Identity = existing.Identity.Merge(in.Identity)
	rec.ViewDuration += in.ViewDuration
	rec.AudioListenDuration += in.AudioListenDuration
	rec.Completed = rec.Completed || done
	rec.UpdatedAt = now
	return rec
}

// Aggregate groups the active events of a map by their group label, in
// order of first appearance, and counts how many the visitor completed.
// Inactive events are ignored entirely.
func Aggregate(events []eventmap.EventMarker, completed []string) eventmap.Progress {
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	p := eventmap.Progress{
		Groups:            []eventmap.GroupProgress{},
		CompletedEventIDs: []string{},
	}
	index := make(map[string]int)
	for _, e := range events {
		if !e.IsActive() {
			continue
		}
		name := e.GroupName()
		i, ok := index[name]
		if !ok {
			i = len(p.Groups)
			index[name] = i
			p.Groups = append(p.Groups, eventmap.GroupProgress{Name: name})
		}
		p.Groups[i].Total++
		if _, ok := done[e.ID]; ok && !slices.Contains(p.CompletedEventIDs, e.ID) {
			p.Groups[i].Viewed++
			p.CompletedEventIDs = append(p.CompletedEventIDs, e.ID)
		}
	}
	return p
}

// ShouldCelebrate reports whether a completion celebration is due.
func ShouldCelebrate(p eventmap.Progress, seen bool) bool {
	return !seen && p.Complete()
}

// Celebration is the viewer-side latch that fires at most once per page
// load, and never when the store already says the visitor has seen it.
type Celebration struct {
	seen  bool
	fired bool
}

func NewCelebration(seen bool) *Celebration {
	return &Celebration{seen: seen}
}

// Check returns true exactly once, the first time p is complete.
func (c *Celebration) Check(p eventmap.Progress) bool {
	if c.fired || !ShouldCelebrate(p, c.seen) {
		return false
	}
	c.fired = true
	c.seen = true
	return true
}

func (c *Celebration) Fired() bool { return c.fired }
