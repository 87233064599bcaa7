package audio

import "github.com/valerio/go-nesfront/nesfront/machine"

// SampleSink forwards core samples into the playback ring. A full ring drops
// the newest sample; the emulation side never waits for the device.
type SampleSink struct {
	ring    *Ring
	written int
}

var _ machine.AudioSink = (*SampleSink)(nil)

func NewSampleSink(ring *Ring) *SampleSink {
	return &SampleSink{ring: ring}
}

func (s *SampleSink) WriteSample(value float32) {
	s.ring.Push(value)
	s.written++
}

// SamplesWritten counts every sample offered, including dropped ones.
func (s *SampleSink) SamplesWritten() int {
	return s.written
}

func (s *SampleSink) Ring() *Ring {
	return s.ring
}

func (s *SampleSink) Dropped() uint64 { return s.ring.Dropped() }

func (s *SampleSink) Underruns() uint64 { return s.ring.Underruns() }

// NullSink discards samples. Used when no audio device is available.
type NullSink struct {
	written int
}

var _ machine.AudioSink = (*NullSink)(nil)

func (n *NullSink) WriteSample(float32) { n.written++ }

func (n *NullSink) SamplesWritten() int { return n.written }
