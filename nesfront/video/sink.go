package video

import (
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-nesfront/nesfront/machine"
)

// FrameSink expands palette-index planes from the core into RGBA pixels.
//
// Frames are written into a back buffer which is then swapped to the front
// in one atomic store, so readers of Front always see a whole frame.
type FrameSink struct {
	width  int
	height int

	front atomic.Pointer[FrameBuffer]
	back  *FrameBuffer

	written  bool
	frames   uint64
	rejected uint64
}

var _ machine.VideoSink = (*FrameSink)(nil)

func NewFrameSink(width, height int) *FrameSink {
	s := &FrameSink{
		width:  width,
		height: height,
		back:   NewFrameBuffer(width, height),
	}
	s.front.Store(NewFrameBuffer(width, height))
	return s
}

// WriteFrame converts a full plane of palette indices. Planes of the wrong
// size are dropped instead of being merged into the previous frame.
func (s *FrameSink) WriteFrame(plane []byte) {
	if len(plane) != s.width*s.height {
		s.rejected++
		slog.Warn("Dropping frame with unexpected size", "got", len(plane), "want", s.width*s.height)
		return
	}

	dst := s.back.pixels
	for i, index := range plane {
		c := Palette[int(index)%PaletteSize]
		offset := i * BytesPerPixel
		dst[offset] = uint8(c >> 16)
		dst[offset+1] = uint8(c >> 8)
		dst[offset+2] = uint8(c)
		dst[offset+3] = Alpha
	}

	s.back = s.front.Swap(s.back)
	s.written = true
	s.frames++
}

// FrameWritten reports whether a frame completed since the last BeginBatch.
func (s *FrameSink) FrameWritten() bool {
	return s.written
}

// BeginBatch clears the frame-written flag ahead of a run of core steps.
func (s *FrameSink) BeginBatch() {
	s.written = false
}

// Front returns the last complete frame.
func (s *FrameSink) Front() *FrameBuffer {
	return s.front.Load()
}

// Pixels returns the RGBA bytes of the last complete frame.
func (s *FrameSink) Pixels() []byte {
	return s.front.Load().pixels
}

func (s *FrameSink) Frames() uint64   { return s.frames }
func (s *FrameSink) Rejected() uint64 { return s.rejected }
