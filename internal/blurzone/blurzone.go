// Package blurzone tracks which hidden map regions a visitor has revealed
// during the current page load.
package blurzone

import (
	"strconv"

	"github.com/playperu/eventmap/internal/eventmap"
)

type State int

const (
	Hidden State = iota
	Confirming
	Revealed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Confirming:
		return "confirming"
	case Revealed:
		return "revealed"
	}
	return "unknown"
}

// Manager holds the per-zone state. Reveals are kept in memory only and are
// lost on reload. Whether zones render at all is decided once, at
// construction, by the first-time flag.
type Manager struct {
	zones     []eventmap.BlurZone
	state     map[string]State
	firstTime bool
	onReveal  func(eventmap.BlurZone)
}

// New builds a manager for a map's zones. onReveal may be nil. A zone with
// no id, or one whose id is already taken, is keyed by its position as
// "zone-<index>"; Visible and HitTest report that key as the zone's ID.
func New(zones []eventmap.BlurZone, firstTime bool, onReveal func(eventmap.BlurZone)) *Manager {
	m := &Manager{
		zones:     make([]eventmap.BlurZone, len(zones)),
		state:     make(map[string]State, len(zones)),
		firstTime: firstTime,
		onReveal:  onReveal,
	}
	for i, z := range zones {
		if _, taken := m.state[z.ID]; z.ID == "" || taken {
			z.ID = "zone-" + strconv.Itoa(i)
		}
		m.zones[i] = z
		m.state[z.ID] = Hidden
	}
	return m
}

func (m *Manager) FirstTime() bool { return m.firstTime }

func (m *Manager) State(id string) State {
	s, ok := m.state[id]
	if !ok {
		return Revealed
	}
	return s
}

// Tap is the first step: a hidden zone asks for confirmation. It reports
// whether the zone consumed the tap.
func (m *Manager) Tap(id string) bool {
	if !m.firstTime {
		return false
	}
	switch m.State(id) {
	case Hidden:
		m.state[id] = Confirming
		return true
	case Confirming:
		return true
	}
	return false
}

// Confirm reveals a zone that is waiting for confirmation. Revealing is
// permanent for this manager.
func (m *Manager) Confirm(id string) bool {
	if m.State(id) != Confirming {
		return false
	}
	m.state[id] = Revealed
	if m.onReveal != nil {
		for _, z := range m.zones {
			if z.ID == id {
				m.onReveal(z)
				break
			}
		}
	}
	return true
}

// Cancel backs out of the confirmation step.
func (m *Manager) Cancel(id string) {
	if m.State(id) == Confirming {
		m.state[id] = Hidden
	}
}

// Visible returns the zones that should be drawn. Returning visitors never
// see any.
func (m *Manager) Visible() []eventmap.BlurZone {
	if !m.firstTime {
		return nil
	}
	var out []eventmap.BlurZone
	for _, z := range m.zones {
		if m.state[z.ID] != Revealed {
			out = append(out, z)
		}
	}
	return out
}

// HitTest returns the topmost visible zone containing p. Later zones are
// drawn above earlier ones.
func (m *Manager) HitTest(p eventmap.Point) (eventmap.BlurZone, bool) {
	vis := m.Visible()
	for i := len(vis) - 1; i >= 0; i-- {
		if vis[i].Contains(p) {
			return vis[i], true
		}
	}
	return eventmap.BlurZone{}, false
}
