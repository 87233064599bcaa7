package input

import (
	"time"

	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Manager dispatches front-end actions to registered callbacks. Press and
// Release events for the same action closer than the debounce window are
// dropped. Not safe for concurrent use; it lives on the frontend goroutine.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	debounce      time.Duration
	now           func() time.Time
}

func NewManager() *Manager {
	return NewManagerWithDebounce(debounceDuration)
}

// NewManagerWithDebounce creates a manager with a custom debounce window.
// Zero disables debouncing.
func NewManagerWithDebounce(window time.Duration) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		debounce:      window,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger runs the callbacks for the action and event type. It reports whether
// the event was delivered, false when it was debounced.
func (m *Manager) Trigger(act action.Action, evt event.Type) bool {
	if evt == event.Press || evt == event.Release {
		now := m.now()
		if m.lastTriggered[act] == nil {
			m.lastTriggered[act] = make(map[event.Type]time.Time)
		}
		if last, ok := m.lastTriggered[act][evt]; ok && now.Sub(last) < m.debounce {
			return false
		}
		m.lastTriggered[act][evt] = now
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
	return true
}
