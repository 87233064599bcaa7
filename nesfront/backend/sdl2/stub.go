//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-nesfront/nesfront/backend"
)

// ErrUnavailable is returned by the stub built without the sdl2 tag.
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend that returns an error
func New() *Backend {
	return &Backend{}
}

// Init returns an error indicating SDL2 is not available
func (s *Backend) Init(config backend.Config) error {
	return ErrUnavailable
}

// Update returns an error
func (s *Backend) Update(pixels []byte) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

// Cleanup does nothing
func (s *Backend) Cleanup() error {
	return nil
}
