package main

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-nesfront/nesfront/audio"
	"github.com/valerio/go-nesfront/nesfront/timing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

type fakeDevice struct {
	started bool
	closed  bool
}

func (d *fakeDevice) FramesPlayed() uint64 { return 0 }
func (d *fakeDevice) SampleRate() int      { return 44100 }
func (d *fakeDevice) Start()               { d.started = true }
func (d *fakeDevice) Close() error         { d.closed = true; return nil }

func stubOpenDevice(t *testing.T, dev audioDevice, err error) *int {
	t.Helper()
	calls := 0
	prev := openDevice
	openDevice = func(ring *audio.Ring, sampleRate int, latency time.Duration) (audioDevice, error) {
		calls++
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
	t.Cleanup(func() { openDevice = prev })
	return &calls
}

func TestOpenOutput_DeviceUnavailableFallsBackToWallClock(t *testing.T) {
	calls := stubOpenDevice(t, nil, fmt.Errorf("no output: %w", audio.ErrDeviceUnavailable))

	out, err := openOutput(outputOptions{bufferSize: 8192})
	require.NoError(t, err)
	defer out.close()

	assert.Equal(t, 1, *calls)
	assert.IsType(t, &timing.WallClock{}, out.clock)
	assert.IsType(t, &audio.NullSink{}, out.samples)
	assert.Nil(t, out.device)
	assert.Nil(t, out.simClock)
}

func TestOpenOutput_DevicePacesFromPlaybackPosition(t *testing.T) {
	dev := &fakeDevice{}
	stubOpenDevice(t, dev, nil)

	out, err := openOutput(outputOptions{bufferSize: 8192, latency: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.IsType(t, &timing.PositionClock{}, out.clock)
	assert.IsType(t, &audio.SampleSink{}, out.samples)
	assert.True(t, dev.started)

	out.close()
	assert.True(t, dev.closed)
}

func TestOpenOutput_Modes(t *testing.T) {
	tests := []struct {
		name       string
		opts       outputOptions
		wantErr    bool
		wantClock  timing.Clock
		wantOpened int
	}{
		{"headless", outputOptions{headless: true}, false, &timing.SimulatedClock{}, 0},
		{"no audio", outputOptions{noAudio: true}, false, &timing.WallClock{}, 0},
		{"headless ignores buffer size", outputOptions{headless: true, bufferSize: 0}, false, &timing.SimulatedClock{}, 0},
		{"zero buffer", outputOptions{bufferSize: 0}, true, nil, 0},
		{"negative buffer", outputOptions{bufferSize: -1}, true, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := stubOpenDevice(t, &fakeDevice{}, nil)

			out, err := openOutput(tt.opts)
			assert.Equal(t, tt.wantOpened, *calls)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "--audio-buffer")
				return
			}
			require.NoError(t, err)
			defer out.close()
			assert.IsType(t, tt.wantClock, out.clock)
			assert.IsType(t, &audio.NullSink{}, out.samples)
		})
	}
}
