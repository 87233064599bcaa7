package timing

import (
	"sync"
	"time"
)

// Clock supplies monotonic elapsed time in nanoseconds. Only differences
// between readings are meaningful.
type Clock interface {
	NowNs() uint64
}

// WallClock reads the host monotonic clock relative to its creation.
type WallClock struct {
	origin time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{origin: time.Now()}
}

func (w *WallClock) NowNs() uint64 {
	return uint64(time.Since(w.origin).Nanoseconds())
}

// PositionSource reports how many sample frames an audio device has played.
type PositionSource interface {
	FramesPlayed() uint64
}

// PositionClock derives time from an audio device's playback position, so
// pacing follows the rate the hardware actually consumes samples at.
// Readings never go backwards even if the source's estimate wobbles.
type PositionClock struct {
	source     PositionSource
	sampleRate uint64
	last       uint64
}

func NewPositionClock(source PositionSource, sampleRate int) *PositionClock {
	return &PositionClock{
		source:     source,
		sampleRate: uint64(sampleRate),
	}
}

func (p *PositionClock) NowNs() uint64 {
	frames := p.source.FramesPlayed()
	// split to keep frames*1e9 from overflowing on long sessions
	secs := frames / p.sampleRate
	rem := frames % p.sampleRate
	now := secs*uint64(time.Second) + rem*uint64(time.Second)/p.sampleRate
	if now < p.last {
		return p.last
	}
	p.last = now
	return now
}

// SimulatedClock only moves when told to. Headless runs advance it by one
// refresh period per host tick; tests set it directly.
type SimulatedClock struct {
	mu  sync.Mutex
	now uint64
}

func NewSimulatedClock() *SimulatedClock {
	return &SimulatedClock{}
}

func (s *SimulatedClock) NowNs() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d nanoseconds.
func (s *SimulatedClock) Advance(d uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += d
}

// Set moves the clock to t. Earlier values are ignored.
func (s *SimulatedClock) Set(t uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t > s.now {
		s.now = t
	}
}
