package machine

// Button is a logical controller button on the first game pad.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [...]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return "Unknown"
	}
	return buttonNames[b]
}

// Screen dimensions of the NES picture, in pixels.
const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

// Timing of the NTSC console.
const (
	// CPUFrequency is the nominal 2A03 clock in Hz.
	CPUFrequency = 1789773
	// CyclesPerFrame is the number of CPU cycles in one NTSC video frame (29780.5 rounded up).
	CyclesPerFrame = 29781
	// SampleRate is the rate at which cores emit audio samples.
	SampleRate = 44100
)
