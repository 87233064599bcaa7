//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-nesfront/nesfront/backend"
	"github.com/valerio/go-nesfront/nesfront/input/event"
)

const defaultScale = 3

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	config   backend.Config
	events   []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init opens a window scaled to the configured size
func (s *Backend) Init(config backend.Config) error {
	s.config = config
	scale := config.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(config.Width*scale),
		int32(config.Height*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	// no PRESENTVSYNC: the front end paces presentation with its own limiter
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// ABGR8888 matches R,G,B,A byte order on little endian hosts
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(config.Width),
		int32(config.Height),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

// Update polls window events and presents the frame
func (s *Backend) Update(pixels []byte) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	if len(pixels) > 0 {
		if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), s.config.Width*4); err != nil {
			return nil, fmt.Errorf("failed to update texture: %w", err)
		}
	}
	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	events := s.events
	s.events = nil
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.events = append(s.events, backend.QuitEvent)

	case *sdl.KeyboardEvent:
		// key repeat is not a new press
		if e.Repeat != 0 {
			return
		}
		name, ok := keyNames[e.Keysym.Sym]
		if !ok {
			return
		}
		typ := event.Press
		if e.Type == sdl.KEYUP {
			typ = event.Release
		}
		s.events = append(s.events, backend.InputEvent{Key: name, Type: typ})
	}
}

var keyNames = map[sdl.Keycode]string{
	sdl.K_x:      "x",
	sdl.K_z:      "z",
	sdl.K_SPACE:  "Space",
	sdl.K_RETURN: "Enter",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
	sdl.K_p:      "p",
	sdl.K_r:      "r",
	sdl.K_l:      "l",
	sdl.K_q:      "q",
	sdl.K_F12:    "F12",
	sdl.K_ESCAPE: "Escape",
}
