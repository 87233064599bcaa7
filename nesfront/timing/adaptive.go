package timing

import (
	"log/slog"
	"time"
)

// spinThreshold is the remaining wait below which the limiter busy-waits
// instead of sleeping; sleep granularity on most hosts is coarser than this.
const spinThreshold = 2 * time.Millisecond

// AdaptiveLimiter sleeps for most of the frame and spins for the last couple
// of milliseconds. If the loop falls more than a few frames behind it
// re-anchors instead of rushing to catch up; the pacer already makes up the
// lost emulated time on its own.
type AdaptiveLimiter struct {
	period    time.Duration
	next      time.Time
	frames    int64
	lateFrame int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return NewAdaptiveLimiterWithPeriod(FrameDuration())
}

func NewAdaptiveLimiterWithPeriod(period time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		period: period,
		next:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	wait := a.next.Sub(now)

	switch {
	case wait > spinThreshold:
		time.Sleep(wait - time.Millisecond)
		fallthrough
	case wait > 0:
		for time.Now().Before(a.next) {
		}
	case wait < -3*a.period:
		a.lateFrame++
		a.next = now
	}

	a.next = a.next.Add(a.period)
	a.frames++

	if a.frames%600 == 0 && a.lateFrame > 0 {
		slog.Debug("Refresh limiter re-anchored", "frames", a.frames, "late", a.lateFrame)
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = time.Now()
	a.frames = 0
	a.lateFrame = 0
}
