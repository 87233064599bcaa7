//go:build headless

package audio

import "time"

// Device is unavailable in headless builds; OpenDevice always fails so
// callers fall back to the wall clock and a NullSink.
type Device struct{}

func OpenDevice(ring *Ring, sampleRate int, latency time.Duration) (*Device, error) {
	return nil, ErrDeviceUnavailable
}

func (d *Device) Read(p []byte) (int, error) { return 0, ErrDeviceUnavailable }
func (d *Device) FramesPlayed() uint64       { return 0 }
func (d *Device) SampleRate() int            { return 0 }
func (d *Device) Start()                     {}
func (d *Device) Close() error               { return nil }
