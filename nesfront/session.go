// Package nesfront ties a machine core to the host: it paces the core against
// a clock, collects its frames and samples, and maps host keys to buttons.
package nesfront

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-nesfront/nesfront/cartridge"
	"github.com/valerio/go-nesfront/nesfront/input"
	"github.com/valerio/go-nesfront/nesfront/machine"
	"github.com/valerio/go-nesfront/nesfront/timing"
	"github.com/valerio/go-nesfront/nesfront/video"
)

var (
	// ErrNoROM is returned by Reload when nothing was loaded from a file.
	ErrNoROM = errors.New("no ROM file loaded")
	// ErrNoFactory is returned by New when the config has no machine factory.
	ErrNoFactory = errors.New("no machine factory configured")
)

// Config holds the session parameters.
type Config struct {
	// CPUFrequency is the emulated CPU clock in Hz.
	CPUFrequency int
	Width        int
	Height       int
	Keymap       input.Keymap
	Factory      machine.Factory
}

// DefaultConfig returns the NTSC NES configuration for the given core.
func DefaultConfig(factory machine.Factory) Config {
	return Config{
		CPUFrequency: machine.CPUFrequency,
		Width:        machine.ScreenWidth,
		Height:       machine.ScreenHeight,
		Keymap:       input.DefaultKeymap(),
		Factory:      factory,
	}
}

// Stats is a snapshot of session counters.
type Stats struct {
	ROM            string
	Paused         bool
	Cycles         uint64
	Instructions   uint64
	TargetCycles   uint64
	Frames         uint64
	RejectedFrames uint64
	SamplesWritten int
	DroppedSamples uint64
	Underruns      uint64
}

// bufferCounters is implemented by sample sinks that track buffer pressure.
type bufferCounters interface {
	Dropped() uint64
	Underruns() uint64
}

// Session owns one machine instance and everything that paces and presents
// it. All methods must be called from the stepping goroutine; only the
// sample sink's ring is shared with the audio callback.
type Session struct {
	cfg     Config
	pacer   *timing.Pacer
	frames  *video.FrameSink
	samples machine.AudioSink

	machine machine.Machine
	image   *cartridge.Image
	romPath string
}

// New creates a session with no machine loaded. samples receives the core's
// audio and is usually an *audio.SampleSink or *audio.NullSink.
func New(cfg Config, clock timing.Clock, samples machine.AudioSink) (*Session, error) {
	if cfg.Factory == nil {
		return nil, ErrNoFactory
	}
	if cfg.CPUFrequency <= 0 {
		return nil, fmt.Errorf("invalid CPU frequency %d", cfg.CPUFrequency)
	}
	if cfg.Keymap == nil {
		cfg.Keymap = input.DefaultKeymap()
	}

	return &Session{
		cfg:     cfg,
		pacer:   timing.NewPacer(clock, timing.CyclePeriodNs(cfg.CPUFrequency)),
		frames:  video.NewFrameSink(cfg.Width, cfg.Height),
		samples: samples,
	}, nil
}

// Advance runs the machine up to the cycle count owed by the clock. It is a
// no-op while paused or before a ROM is loaded. A machine fault unloads the
// machine and is returned wrapping machine.ErrFault.
func (s *Session) Advance() error {
	if s.machine == nil {
		return nil
	}

	s.frames.BeginBatch()
	if err := s.pacer.Advance(s.machine, s.frames, s.samples); err != nil {
		slog.Error("Machine fault, session terminated", "rom", s.romName(), "error", err)
		s.machine = nil
		return err
	}
	return nil
}

func (s *Session) Pause() {
	s.pacer.Pause()
}

func (s *Session) Resume() {
	s.pacer.Resume()
}

// TogglePause flips between paused and running.
func (s *Session) TogglePause() {
	if s.pacer.Paused() {
		s.Resume()
		slog.Info("Resumed")
	} else {
		s.Pause()
		slog.Info("Paused")
	}
}

// Reset returns the machine to power-on state and starts a new epoch. The
// session is running afterwards even if it was paused.
func (s *Session) Reset() {
	if s.machine != nil {
		s.machine.Reset()
	}
	s.pacer.Reset()
	slog.Info("Reset", "rom", s.romName())
}

// Load replaces the machine with one built from image, then resets. On
// error the current machine, epoch and counters are left as they were.
func (s *Session) Load(image *cartridge.Image) error {
	if image == nil {
		return errors.New("no cartridge image")
	}
	m, err := s.cfg.Factory(image)
	if err != nil {
		return fmt.Errorf("creating machine: %w", err)
	}

	s.machine = m
	s.image = image
	s.pacer.Reset()
	slog.Info("ROM loaded", "rom", image.String())
	return nil
}

// LoadFile reads, parses and loads a ROM file.
func (s *Session) LoadFile(path string) error {
	image, err := cartridge.LoadFile(path)
	if err != nil {
		return err
	}
	if err := s.Load(image); err != nil {
		return err
	}
	s.romPath = path
	return nil
}

// Reload loads the current ROM file again. Stepping is paused while the file
// is read; if loading fails the previous pause state is restored.
func (s *Session) Reload() error {
	if s.romPath == "" {
		return ErrNoROM
	}

	wasPaused := s.Paused()
	s.Pause()
	if err := s.LoadFile(s.romPath); err != nil {
		if !wasPaused {
			s.Resume()
		}
		return err
	}
	return nil
}

// Pixels returns the RGBA bytes of the last complete frame, Width*Height*4
// long. The slice is overwritten by later frames.
func (s *Session) Pixels() []byte {
	return s.frames.Pixels()
}

// KeyDown presses the button bound to key. Unbound keys are ignored.
func (s *Session) KeyDown(key string) {
	s.setKey(key, true)
}

// KeyUp releases the button bound to key. Unbound keys are ignored.
func (s *Session) KeyUp(key string) {
	s.setKey(key, false)
}

func (s *Session) setKey(key string, pressed bool) {
	button, ok := s.cfg.Keymap.Lookup(key)
	if !ok || s.machine == nil {
		return
	}
	s.machine.SetButtonPressed(button, pressed)
}

func (s *Session) Paused() bool { return s.pacer.Paused() }

// Loaded reports whether a machine is present.
func (s *Session) Loaded() bool { return s.machine != nil }

// Pacer exposes the pacing state for inspection.
func (s *Session) Pacer() *timing.Pacer { return s.pacer }

// ROMPath returns the path of the last ROM loaded from a file.
func (s *Session) ROMPath() string { return s.romPath }

func (s *Session) Stats() Stats {
	st := Stats{
		ROM:            s.romName(),
		Paused:         s.pacer.Paused(),
		Cycles:         s.pacer.Cycles(),
		Instructions:   s.pacer.Instructions(),
		TargetCycles:   s.pacer.TargetCycles(),
		Frames:         s.frames.Frames(),
		RejectedFrames: s.frames.Rejected(),
		SamplesWritten: s.samples.SamplesWritten(),
	}
	if c, ok := s.samples.(bufferCounters); ok {
		st.DroppedSamples = c.Dropped()
		st.Underruns = c.Underruns()
	}
	return st
}

// LogValue lets Stats be logged as a group.
func (st Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("rom", st.ROM),
		slog.Bool("paused", st.Paused),
		slog.Uint64("cycles", st.Cycles),
		slog.Uint64("instructions", st.Instructions),
		slog.Uint64("frames", st.Frames),
		slog.Int("samples", st.SamplesWritten),
		slog.Uint64("dropped", st.DroppedSamples),
		slog.Uint64("underruns", st.Underruns),
	)
}

func (s *Session) romName() string {
	if s.image == nil {
		return ""
	}
	return s.image.Name
}
