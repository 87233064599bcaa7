package nesfront

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-nesfront/nesfront/backend"
	"github.com/valerio/go-nesfront/nesfront/debug"
	"github.com/valerio/go-nesfront/nesfront/input"
	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/input/event"
	"github.com/valerio/go-nesfront/nesfront/timing"
)

const defaultStatsInterval = 60

// FrontendConfig configures the host loop.
type FrontendConfig struct {
	Backend backend.Config
	// ActionKeys binds keys to front-end actions. Nil uses
	// input.DefaultActionKeys.
	ActionKeys map[string]action.Action
	// Manager dispatches actions. Nil creates one with the default debounce.
	Manager *input.Manager
	// StatsInterval is the number of ticks between Stats publications.
	StatsInterval int
}

// Frontend drives a Session from the host refresh: one Advance per limiter
// tick, then presentation and input through a backend.
type Frontend struct {
	session    *Session
	backend    backend.Backend
	limiter    timing.Limiter
	manager    *input.Manager
	actionKeys map[string]action.Action
	config     FrontendConfig

	stats chan Stats
	ticks uint64
	quit  bool
}

func NewFrontend(session *Session, b backend.Backend, limiter timing.Limiter, cfg FrontendConfig) *Frontend {
	if cfg.ActionKeys == nil {
		cfg.ActionKeys = input.DefaultActionKeys
	}
	if cfg.Manager == nil {
		cfg.Manager = input.NewManager()
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = defaultStatsInterval
	}
	if cfg.Backend.Width == 0 {
		cfg.Backend.Width = session.cfg.Width
		cfg.Backend.Height = session.cfg.Height
	}
	if cfg.Backend.Paused == nil {
		cfg.Backend.Paused = session.Paused
	}

	f := &Frontend{
		session:    session,
		backend:    b,
		limiter:    limiter,
		manager:    cfg.Manager,
		actionKeys: cfg.ActionKeys,
		config:     cfg,
		stats:      make(chan Stats, 1),
	}
	f.registerActions()
	return f
}

func (f *Frontend) registerActions() {
	f.manager.On(action.PauseToggle, event.Press, f.session.TogglePause)
	f.manager.On(action.Reset, event.Press, f.session.Reset)
	f.manager.On(action.Reload, event.Press, func() {
		if err := f.session.Reload(); err != nil {
			slog.Error("Failed to reload ROM", "path", f.session.ROMPath(), "error", err)
		}
	})
	f.manager.On(action.Snapshot, event.Press, func() {
		debug.TakeSnapshot(f.session.Pixels(), f.session.romName())
	})
	f.manager.On(action.Quit, event.Press, func() {
		slog.Info("Quit requested")
		f.quit = true
	})

	if h, ok := f.backend.(backend.ActionHandler); ok {
		for _, act := range []action.Action{action.LogLevelIncrease, action.LogLevelDecrease} {
			f.manager.On(act, event.Press, func() { h.HandleAction(act) })
		}
	}
}

// Stats delivers periodic snapshots. Sends never block; a slow reader sees
// the newest value it has room for. The channel is closed when Run returns.
func (f *Frontend) Stats() <-chan Stats {
	return f.stats
}

// Run initializes the backend and loops until quit, context cancellation or
// a machine fault. Only the fault is returned as an error.
func (f *Frontend) Run(ctx context.Context) error {
	defer close(f.stats)

	if err := f.backend.Init(f.config.Backend); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if err := f.backend.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}()

	f.limiter.Reset()
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Stopping", "reason", context.Cause(ctx))
			return nil
		}

		if err := f.Tick(); err != nil {
			return err
		}
		if f.quit {
			return nil
		}

		f.limiter.WaitForNextFrame()
	}
}

// Tick performs one refresh: advance, present, dispatch input.
func (f *Frontend) Tick() error {
	if err := f.session.Advance(); err != nil {
		return err
	}

	events, err := f.backend.Update(f.session.Pixels())
	if err != nil {
		return fmt.Errorf("backend update: %w", err)
	}
	for _, ev := range events {
		f.handleEvent(ev)
	}

	f.ticks++
	if f.ticks%uint64(f.config.StatsInterval) == 0 {
		f.publishStats()
	}
	return nil
}

// Ticks returns the number of completed refreshes.
func (f *Frontend) Ticks() uint64 {
	return f.ticks
}

func (f *Frontend) handleEvent(ev backend.InputEvent) {
	if ev.IsAction() {
		f.manager.Trigger(ev.Action, ev.Type)
		return
	}
	if act, ok := f.actionKeys[ev.Key]; ok {
		f.manager.Trigger(act, ev.Type)
		return
	}

	switch ev.Type {
	case event.Press:
		f.session.KeyDown(ev.Key)
	case event.Release:
		f.session.KeyUp(ev.Key)
	}
}

func (f *Frontend) publishStats() {
	st := f.session.Stats()
	select {
	case f.stats <- st:
	default:
		// drop the stale value so the reader gets the newest
		select {
		case <-f.stats:
		default:
		}
		select {
		case f.stats <- st:
		default:
		}
	}
}
