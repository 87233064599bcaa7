package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/valerio/go-nesfront/nesfront"
	"github.com/valerio/go-nesfront/nesfront/audio"
	"github.com/valerio/go-nesfront/nesfront/backend"
	"github.com/valerio/go-nesfront/nesfront/backend/headless"
	"github.com/valerio/go-nesfront/nesfront/backend/sdl2"
	"github.com/valerio/go-nesfront/nesfront/backend/terminal"
	"github.com/valerio/go-nesfront/nesfront/machine"
	"github.com/valerio/go-nesfront/nesfront/machine/tileview"
	"github.com/valerio/go-nesfront/nesfront/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "nesfront"
	app.Description = "Real-time front end for NES cores"
	app.Usage = "nesfront [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the iNES ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Presentation backend: terminal or sdl2 (sdl2 needs -tags sdl2)",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without presentation or audio, on simulated time",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "no-audio",
			Usage: "Disable audio output and pace from the wall clock",
		},
		cli.StringFlag{
			Name:  "record-audio",
			Usage: "Write all produced audio to this WAV file",
		},
		cli.IntFlag{
			Name:  "audio-buffer",
			Usage: "Sample ring capacity in samples",
			Value: 8192,
		},
		cli.DurationFlag{
			Name:  "audio-latency",
			Usage: "Requested audio device buffer duration (0 = driver default)",
			Value: 50 * time.Millisecond,
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Refresh limiter: adaptive, ticker or none",
			Value: "adaptive",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runFrontend

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running nesfront", "error", err)
		os.Exit(1)
	}
}

func runFrontend(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	isHeadless := c.Bool("headless")
	if isHeadless {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	out, err := openOutput(outputOptions{
		headless:    isHeadless,
		noAudio:     c.Bool("no-audio"),
		bufferSize:  c.Int("audio-buffer"),
		latency:     c.Duration("audio-latency"),
		recordAudio: c.String("record-audio"),
	})
	if err != nil {
		return err
	}
	defer out.close()

	session, err := nesfront.New(nesfront.DefaultConfig(tileview.New), out.clock, out.samples)
	if err != nil {
		return err
	}
	if err := session.LoadFile(romPath); err != nil {
		return err
	}

	b, limiter, err := selectBackend(c, out, romPath)
	if err != nil {
		return err
	}

	fe := nesfront.NewFrontend(session, b, limiter, nesfront.FrontendConfig{
		Backend: backend.Config{
			Title:    "nesfront - " + session.Stats().ROM,
			ROMName:  session.Stats().ROM,
			LogLevel: level,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fe.Run(ctx)
	})
	g.Go(func() error {
		for st := range fe.Stats() {
			slog.Debug("Stats", "stats", st)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Session finished", "stats", session.Stats())
	return nil
}

// audioDevice is the playback side of an opened output device.
type audioDevice interface {
	FramesPlayed() uint64
	SampleRate() int
	Start()
	Close() error
}

// openDevice opens the host audio output; replaced in tests.
var openDevice = func(ring *audio.Ring, sampleRate int, latency time.Duration) (audioDevice, error) {
	dev, err := audio.OpenDevice(ring, sampleRate, latency)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

type outputOptions struct {
	headless    bool
	noAudio     bool
	bufferSize  int
	latency     time.Duration
	recordAudio string
}

// output bundles the clock and sample path chosen for this run.
type output struct {
	clock    timing.Clock
	simClock *timing.SimulatedClock
	samples  machine.AudioSink
	device   audioDevice
	recorder *audio.Recorder
}

func openOutput(opts outputOptions) (*output, error) {
	out := &output{}

	switch {
	case opts.headless:
		out.simClock = timing.NewSimulatedClock()
		out.clock = out.simClock
		out.samples = &audio.NullSink{}
	case opts.noAudio:
		out.clock = timing.NewWallClock()
		out.samples = &audio.NullSink{}
	default:
		if opts.bufferSize <= 0 {
			return nil, fmt.Errorf("invalid --audio-buffer %d: must be positive", opts.bufferSize)
		}
		ring := audio.NewRing(opts.bufferSize)
		dev, err := openDevice(ring, machine.SampleRate, opts.latency)
		if err != nil {
			slog.Warn("Audio disabled, pacing from wall clock", "error", err)
			out.clock = timing.NewWallClock()
			out.samples = &audio.NullSink{}
			break
		}
		out.device = dev
		out.clock = timing.NewPositionClock(dev, dev.SampleRate())
		out.samples = audio.NewSampleSink(ring)
		dev.Start()
	}

	if path := opts.recordAudio; path != "" {
		rec, err := audio.NewRecorder(path, machine.SampleRate, out.samples)
		if err != nil {
			out.close()
			return nil, err
		}
		out.recorder = rec
		out.samples = rec
	}
	return out, nil
}

func (o *output) close() {
	if o.recorder != nil {
		if err := o.recorder.Close(); err != nil {
			slog.Error("Failed to finish audio recording", "error", err)
		}
	}
	if o.device != nil {
		if err := o.device.Close(); err != nil {
			slog.Warn("Failed to close audio device", "error", err)
		}
	}
}

func selectBackend(c *cli.Context, out *output, romPath string) (backend.Backend, timing.Limiter, error) {
	if out.simClock != nil {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}
		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshots), timing.NewSimulatedLimiter(out.simClock, timing.FrameDuration()), nil
	}

	limiter := timing.NewLimiter(c.String("limiter"))
	switch c.String("backend") {
	case "terminal":
		return terminal.New(), limiter, nil
	case "sdl2":
		return sdl2.New(), limiter, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", c.String("backend"))
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
