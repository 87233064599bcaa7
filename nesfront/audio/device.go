//go:build !headless

package audio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSample = 4 // mono float32

// Device plays ring samples through the host audio system. oto calls Read
// from its own goroutine at the hardware's pace; that is the only place the
// ring is drained.
type Device struct {
	ctx        *oto.Context
	player     *oto.Player
	ring       *Ring
	sampleRate int

	buf       []float32
	bytesRead atomic.Uint64

	mu      sync.Mutex // guards player; never held in Read
	started bool
}

// OpenDevice opens the default output at sampleRate, mono float32. latency
// is the requested device buffer duration; zero lets oto choose.
func OpenDevice(ring *Ring, sampleRate int, latency time.Duration) (*Device, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	<-ready

	d := &Device{
		ctx:        ctx,
		ring:       ring,
		sampleRate: sampleRate,
		buf:        make([]float32, 4096),
	}
	d.player = ctx.NewPlayer(d)

	slog.Info("Audio device opened", "sample_rate", sampleRate, "latency", latency)
	return d, nil
}

// Read is the playback callback. It never blocks: missing samples are
// rendered as silence.
func (d *Device) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	if len(d.buf) < n {
		d.buf = make([]float32, n)
	}
	samples := d.buf[:n]
	d.ring.Drain(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}

	d.bytesRead.Add(uint64(n * bytesPerSample))
	return n * bytesPerSample, nil
}

// FramesPlayed estimates the playback position: everything handed to oto
// minus what is still sitting in the player's buffer.
func (d *Device) FramesPlayed() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	read := d.bytesRead.Load()
	if d.player == nil {
		return read / bytesPerSample
	}
	buffered := uint64(d.player.BufferedSize())
	if buffered > read {
		return 0
	}
	return (read - buffered) / bytesPerSample
}

func (d *Device) SampleRate() int { return d.sampleRate }

func (d *Device) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		d.player.Play()
		d.started = true
	}
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = false
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
