package input

import (
	"maps"

	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/machine"
)

// Keymap maps a host key name to a controller button. Key names are the ones
// produced by the backends ("x", "Enter", "Up", ...).
type Keymap map[string]machine.Button

// DefaultKeymap returns a fresh copy of the standard controller layout.
func DefaultKeymap() Keymap {
	return Keymap{
		"x":     machine.ButtonA,
		"z":     machine.ButtonB,
		"Space": machine.ButtonSelect,
		"Enter": machine.ButtonStart,
		"Up":    machine.ButtonUp,
		"Down":  machine.ButtonDown,
		"Left":  machine.ButtonLeft,
		"Right": machine.ButtonRight,
	}
}

// Lookup returns the button bound to key, if any.
func (k Keymap) Lookup(key string) (machine.Button, bool) {
	b, ok := k[key]
	return b, ok
}

// Clone returns a copy that can be modified without affecting k.
func (k Keymap) Clone() Keymap {
	return maps.Clone(k)
}

// DefaultActionKeys binds front-end actions to keys that do not collide with
// DefaultKeymap.
var DefaultActionKeys = map[string]action.Action{
	"p":      action.PauseToggle,
	"r":      action.Reset,
	"l":      action.Reload,
	"F12":    action.Snapshot,
	"Escape": action.Quit,
	"q":      action.Quit,
	"+":      action.LogLevelIncrease,
	"=":      action.LogLevelIncrease, // without shift
	"-":      action.LogLevelDecrease,
	"_":      action.LogLevelDecrease,
}

// GetActionMapping returns the action bound to key, if one exists.
func GetActionMapping(key string) (action.Action, bool) {
	act, ok := DefaultActionKeys[key]
	return act, ok
}
