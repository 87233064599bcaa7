package event

// Type represents the type of input event
type Type int

const (
	Press   Type = iota // key went down (debounced for actions)
	Release             // key went up (debounced for actions)
	Hold                // repeated while down, never debounced
)

func (t Type) String() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Hold:
		return "Hold"
	default:
		return "Unknown"
	}
}
