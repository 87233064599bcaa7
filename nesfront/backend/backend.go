package backend

import (
	"log/slog"

	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/input/event"
)

// Backend is a presentation and input host for the front end. Backends are
// responsible for:
// - Rendering the RGBA pixel buffer to their output (terminal, SDL window, ...)
// - Reporting key events by key name, leaving the mapping to the caller
// - Synthesizing actions of their own, such as a window close
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config Config) error

	// Update presents the pixels of the current frame and returns the input
	// events collected since the previous call. pixels is only valid for
	// the duration of the call.
	Update(pixels []byte) ([]InputEvent, error)

	// Cleanup releases resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title    string
	ROMName  string
	Width    int
	Height   int
	Scale    int
	LogLevel slog.Level  // initial level for backends that display logs
	Paused   func() bool // reports whether the session is paused
}

// ActionHandler is implemented by backends that react to front-end actions
// themselves, such as changing the log filter.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// InputEvent is a key transition reported by a backend. Key is the host key
// name ("x", "Enter", "F12", ...). Events synthesized by the backend itself
// leave Key empty and set Action.
type InputEvent struct {
	Key    string
	Action action.Action
	Type   event.Type
}

// IsAction reports whether the event carries a synthesized action.
func (e InputEvent) IsAction() bool {
	return e.Key == ""
}

// QuitEvent is sent when the backend wants the front end to stop.
var QuitEvent = InputEvent{Action: action.Quit, Type: event.Press}
