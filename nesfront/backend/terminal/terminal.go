package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-nesfront/nesfront/backend"
	"github.com/valerio/go-nesfront/nesfront/backend/terminal/render"
	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/input/event"
)

const (
	minTermWidth   = 40
	minTermHeight  = 12
	minLogWidth    = 30
	logBufferSize  = 200
	statusLineRows = 1

	// keyTimeout is slightly longer than the usual key repeat interval.
	// Terminals do not report releases, so a key counts as held while repeats
	// keep arriving within this window.
	keyTimeout = 100 * time.Millisecond
)

var directionKeys = []string{"Up", "Down", "Left", "Right"}

// Backend renders frames with half-block characters in 24-bit color and
// shows recent log records beside the picture.
type Backend struct {
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	config    backend.Config
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	now       func() time.Time

	keyStates  map[string]time.Time // last time each key was seen
	activeKeys map[string]bool      // keys reported active on the previous update
	eventQueue []backend.InputEvent
}

// New creates a new terminal backend on the process terminal
func New() *Backend {
	return &Backend{newScreen: tcell.NewScreen, now: time.Now}
}

// NewWithScreen creates a terminal backend drawing to the given screen,
// typically a tcell.SimulationScreen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		newScreen: func() (tcell.Screen, error) { return screen, nil },
		now:       time.Now,
	}
}

// Init initializes the terminal and routes slog into the log panel
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[string]time.Time)
	t.activeKeys = make(map[string]bool)

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.screen = screen

	t.logBuffer = render.NewLogBuffer(logBufferSize)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(config.LogLevel)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Update renders the frame and returns key transitions since the last call
func (t *Backend) Update(pixels []byte) ([]backend.InputEvent, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.eventQueue
	t.eventQueue = nil
	events = append(events, t.keyTransitions(now)...)

	t.render(pixels)
	t.screen.Show()

	return events, nil
}

// Cleanup restores the terminal
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// ChangeLogLevel widens (direction > 0) or narrows the log panel filter.
func (t *Backend) ChangeLogLevel(direction int) {
	old := t.logLevel.Level()
	t.logLevel.Set(render.StepLevel(old, direction))
	if old != t.logLevel.Level() {
		slog.Info("Log filter changed", "from", old, "to", t.logLevel.Level())
	}
}

// keyTransitions emulates press, hold and release from the repeat stream.
func (t *Backend) keyTransitions(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent
	current := make(map[string]bool, len(t.keyStates))

	for key, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) >= keyTimeout {
			delete(t.keyStates, key)
			continue
		}
		current[key] = true
		if t.activeKeys[key] {
			events = append(events, backend.InputEvent{Key: key, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Key: key, Type: event.Press})
		}
	}

	for key := range t.activeKeys {
		if !current[key] {
			events = append(events, backend.InputEvent{Key: key, Type: event.Release})
		}
	}

	t.activeKeys = current
	return events
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.eventQueue = append(t.eventQueue, backend.QuitEvent)
		return
	}

	name, ok := keyName(ev)
	if !ok {
		return
	}

	for _, dir := range directionKeys {
		if name == dir {
			// one direction at a time, the previous one is released
			for _, other := range directionKeys {
				if other != name {
					delete(t.keyStates, other)
				}
			}
			break
		}
	}
	t.keyStates[name] = now
}

var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF12:    "F12",
}

// keyName converts a tcell key event to the names used by the keymaps.
func keyName(ev *tcell.EventKey) (string, bool) {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return "Space", true
		}
		return string(ev.Rune()), true
	}
	name, ok := tcellKeyNames[ev.Key()]
	return name, ok
}

func (t *Backend) render(pixels []byte) {
	t.screen.Clear()
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	rows := termHeight - statusLineRows
	step := render.SampleStep(t.config.Width, t.config.Height, termWidth, rows)
	pictureWidth := t.config.Width / step
	t.drawPicture(pixels, step)
	t.drawStatus(termHeight - 1)

	logX := pictureWidth + 1
	if termWidth-logX >= minLogWidth {
		t.drawLogs(logX, 0, termWidth-logX, rows)
	}
}

func (t *Backend) drawPicture(pixels []byte, step int) {
	w, h := t.config.Width, t.config.Height
	for cy := 0; cy*2*step < h; cy++ {
		top := cy * 2 * step
		bottom := top + step
		for cx := 0; cx*step < w; cx++ {
			x := cx * step
			tr, tg, tb := render.PixelAt(pixels, w, x, top)
			br, bg, bb := render.PixelAt(pixels, w, x, bottom)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))
			t.screen.SetContent(cx, cy, render.UpperHalfBlock, nil, style)
		}
	}
}

func (t *Backend) drawStatus(y int) {
	state := "RUNNING"
	if t.config.Paused != nil && t.config.Paused() {
		state = "PAUSED"
	}
	line := fmt.Sprintf(" %s | %s | log %s | p pause  r reset  l reload  F12 snapshot  q quit",
		t.config.Title, state, t.logLevel.Level())
	width, _ := t.screen.Size()
	t.drawText(0, y, width, line, tcell.StyleDefault.Foreground(tcell.ColorYellow))
}

func (t *Backend) drawLogs(startX, startY, width, height int) {
	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	for i, entry := range t.logBuffer.GetRecent(height, t.logLevel.Level()) {
		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}
		t.drawText(startX, startY+i, width, render.FormatLogEntry(entry), style)
	}
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= width {
			break
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

// HandleAction lets the front end forward actions that affect the backend.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.LogLevelIncrease:
		t.ChangeLogLevel(1)
	case action.LogLevelDecrease:
		t.ChangeLogLevel(-1)
	}
}
