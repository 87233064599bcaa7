package timing

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-nesfront/nesfront/machine"
)

// CyclePeriodNs returns the duration of one CPU cycle in whole nanoseconds
// for the given frequency. The truncated period is bumped by one so integer
// division never leaves the core permanently a cycle behind.
func CyclePeriodNs(frequency int) uint64 {
	return uint64(1e9/float64(frequency)) + 1
}

// Pacer converts clock time into a cycle target and steps a machine until the
// target is met. Time spent paused is excluded by shifting the epoch forward
// on resume.
//
// Pacer is not safe for concurrent use; it belongs to the stepping context.
type Pacer struct {
	clock         Clock
	cyclePeriodNs uint64

	startTimeNs uint64
	pausedAt    uint64
	paused      bool

	cycles       uint64
	instructions uint64
	target       uint64
}

// NewPacer creates a running pacer whose epoch is the clock's current time.
func NewPacer(clock Clock, cyclePeriodNs uint64) *Pacer {
	if cyclePeriodNs == 0 {
		cyclePeriodNs = 1
	}
	return &Pacer{
		clock:         clock,
		cyclePeriodNs: cyclePeriodNs,
		startTimeNs:   clock.NowNs(),
	}
}

// Advance steps m until the executed cycle count reaches the number of cycles
// implied by the time elapsed since the epoch. It does nothing while paused.
// There is no cap on how much work one call may do: after a stall the machine
// catches up in a single call rather than losing time.
func (p *Pacer) Advance(m machine.Machine, video machine.VideoSink, audio machine.AudioSink) error {
	if p.paused {
		return nil
	}

	now := p.clock.NowNs()
	var elapsed uint64
	if now > p.startTimeNs {
		elapsed = now - p.startTimeNs
	}
	p.target = elapsed / p.cyclePeriodNs

	for p.cycles < p.target {
		cycles, err := m.Step(video, audio)
		if err != nil {
			return fmt.Errorf("%w at cycle %d: %w", machine.ErrFault, p.cycles, err)
		}
		if cycles <= 0 {
			return fmt.Errorf("%w at cycle %d: step consumed %d cycles", machine.ErrFault, p.cycles, cycles)
		}

		p.cycles += uint64(cycles)
		p.instructions++
	}

	return nil
}

// Pause suspends stepping and remembers when it happened.
func (p *Pacer) Pause() {
	if p.paused {
		return
	}
	p.pausedAt = p.clock.NowNs()
	p.paused = true
	slog.Debug("Pacer paused", "at_ns", p.pausedAt, "cycles", p.cycles)
}

// Resume restarts stepping, moving the epoch forward by the time spent paused
// so no catch-up debt exists for that interval.
func (p *Pacer) Resume() {
	if !p.paused {
		return
	}
	now := p.clock.NowNs()
	if now > p.pausedAt {
		p.startTimeNs += now - p.pausedAt
	}
	p.paused = false
	p.pausedAt = 0
	slog.Debug("Pacer resumed", "epoch_ns", p.startTimeNs, "cycles", p.cycles)
}

// Reset starts a fresh epoch at the current time, zeroes the counters and
// leaves the pacer running regardless of its previous state.
func (p *Pacer) Reset() {
	p.startTimeNs = p.clock.NowNs()
	p.paused = false
	p.pausedAt = 0
	p.cycles = 0
	p.instructions = 0
	p.target = 0
}

// Paused reports whether the pacer is frozen.
func (p *Pacer) Paused() bool { return p.paused }

// Epoch returns the timestamp, on the pacer's clock, at which cycle zero began.
func (p *Pacer) Epoch() uint64 { return p.startTimeNs }

// Cycles returns the machine cycles executed since the last reset.
func (p *Pacer) Cycles() uint64 { return p.cycles }

// Instructions returns the machine steps executed since the last reset.
func (p *Pacer) Instructions() uint64 { return p.instructions }

// TargetCycles returns the cycle target computed by the most recent Advance.
func (p *Pacer) TargetCycles() uint64 { return p.target }

// CyclePeriodNs returns the duration of one machine cycle in nanoseconds.
func (p *Pacer) CyclePeriodNs() uint64 { return p.cyclePeriodNs }
