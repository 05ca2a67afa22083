package eventmap

import (
	"math"
	"time"
)

// CompletionThreshold is how long (seconds) a single view must last for the
// event to count as completed.
const CompletionThreshold = 5.0

// Interaction is one committed open→close view of an event. Durations are in
// seconds.
type Interaction struct {
	Identity            Identity `json:"identity"`
	EventID             string   `json:"eventId"`
	MapID               string   `json:"mapId,omitempty"`
	ViewDuration        float64  `json:"viewDuration"`
	AudioListenDuration float64  `json:"audioListenDuration"`
}

// InteractionRecord accumulates every view of one event by one visitor.
// Completed never goes back to false once set.
type InteractionRecord struct {
	Identity
	EventID             string    `json:"eventId"`
	ViewDuration        float64   `json:"viewDuration"`
	AudioListenDuration float64   `json:"audioListenDuration"`
	Completed           bool      `json:"completed"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type GroupProgress struct {
	Name   string `json:"name"`
	Total  int    `json:"total"`
	Viewed int    `json:"viewed"`
}

type Progress struct {
	Groups            []GroupProgress `json:"groups"`
	CompletedEventIDs []string        `json:"completedEventIds"`
}

func (p Progress) Total() int {
	n := 0
	for _, g := range p.Groups {
		n += g.Total
	}
	return n
}

func (p Progress) Viewed() int {
	n := 0
	for _, g := range p.Groups {
		n += g.Viewed
	}
	return n
}

// Percentage is the rounded overall completion shown on the legend.
func (p Progress) Percentage() int {
	total := p.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Viewed()) / float64(total) * 100))
}

// Complete reports whether every active event has been viewed. A map with
// no active events is never complete.
func (p Progress) Complete() bool {
	total := p.Total()
	return total > 0 && p.Viewed() >= total
}

// Heartbeat is a full snapshot of a page-load session. Each one overwrites
// the previous snapshot for the same SessionID.
type Heartbeat struct {
	SessionID      string   `json:"sessionId"`
	Identity       Identity `json:"identity"`
	MapID          string   `json:"mapId"`
	TotalDuration  float64  `json:"totalDuration"`
	ActiveDuration float64  `json:"activeDuration"`
	Final          bool     `json:"final,omitempty"`
}

type MapSession struct {
	Identity
	SessionID      string    `json:"sessionId"`
	MapID          string    `json:"mapId"`
	StartedAt      time.Time `json:"startedAt"`
	LastUpdate     time.Time `json:"lastUpdate"`
	TotalDuration  float64   `json:"totalDuration"`
	ActiveDuration float64   `json:"activeDuration"`
	Completed      bool      `json:"completed"`
}
