package timing

import (
	"time"

	"github.com/valerio/go-nesfront/nesfront/machine"
)

// Limiter paces the host loop at the display refresh rate. Each return from
// WaitForNextFrame is one refresh notification for the pacer.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// SimulatedLimiter never sleeps; each wait moves a SimulatedClock forward
// by one refresh period instead. Headless runs use it so the pacer sees
// exactly one frame of time per tick.
type SimulatedLimiter struct {
	clock  *SimulatedClock
	period uint64
}

func NewSimulatedLimiter(clock *SimulatedClock, period time.Duration) *SimulatedLimiter {
	return &SimulatedLimiter{clock: clock, period: uint64(period)}
}

func (s *SimulatedLimiter) WaitForNextFrame() {
	s.clock.Advance(s.period)
}

func (s *SimulatedLimiter) Reset() {}

// TargetFPS calculates the exact NTSC frame rate.
func TargetFPS() float64 {
	return float64(machine.CPUFrequency) / float64(machine.CyclesPerFrame)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// NewLimiter picks a limiter by name: "adaptive", "ticker" or "none".
// Unknown names fall back to adaptive.
func NewLimiter(name string) Limiter {
	switch name {
	case "ticker":
		return NewTickerLimiter()
	case "none":
		return NewNoOpLimiter()
	default:
		return NewAdaptiveLimiter()
	}
}
