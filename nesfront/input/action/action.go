package action

// Action represents a front-end command bound to a key. Controller buttons
// are not actions; they go through the keymap straight to the machine.
type Action int

const (
	PauseToggle Action = iota
	Reset
	Reload
	Snapshot
	Quit
	LogLevelIncrease
	LogLevelDecrease
)

var names = [...]string{
	"PauseToggle",
	"Reset",
	"Reload",
	"Snapshot",
	"Quit",
	"LogLevelIncrease",
	"LogLevelDecrease",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(names) {
		return "Unknown"
	}
	return names[a]
}
