package headless_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-nesfront/nesfront/backend"
	"github.com/valerio/go-nesfront/nesfront/backend/headless"
	"github.com/valerio/go-nesfront/nesfront/input/action"
	"github.com/valerio/go-nesfront/nesfront/input/event"
	"github.com/valerio/go-nesfront/nesfront/machine"
	"github.com/valerio/go-nesfront/nesfront/video"
)

func framePixels() []byte {
	return video.NewFrameBuffer(machine.ScreenWidth, machine.ScreenHeight).Bytes()
}

func TestHeadlessBackend(t *testing.T) {
	t.Run("quits after max frames", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.Config{Title: "Test"}))

		pixels := framePixels()
		for i := 0; i < 3; i++ {
			events, err := h.Update(pixels)
			require.NoError(t, err)

			if i < 2 {
				assert.Empty(t, events)
			} else {
				require.Len(t, events, 1)
				assert.True(t, events[0].IsAction())
				assert.Equal(t, action.Quit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}
		assert.Equal(t, 3, h.Frames())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("unbounded run never quits", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.Config{}))
		for i := 0; i < 100; i++ {
			events, err := h.Update(framePixels())
			require.NoError(t, err)
			assert.Empty(t, events)
		}
	})

	t.Run("snapshots", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := headless.CreateSnapshotConfig(2, dir, "/roms/game.nes")
		require.NoError(t, err)
		assert.Equal(t, "game", cfg.ROMName)

		h := headless.New(5, cfg)
		require.NoError(t, h.Init(backend.Config{}))
		for i := 0; i < 5; i++ {
			_, err := h.Update(framePixels())
			require.NoError(t, err)
		}

		// frames 2 and 4 plus the final frame
		snaps := h.Snapshots()
		require.Len(t, snaps, 3)
		for _, p := range snaps {
			assert.Equal(t, dir, filepath.Dir(p))
		}
	})
}

func TestCreateSnapshotConfig_Disabled(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "game.nes")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Directory)
}
