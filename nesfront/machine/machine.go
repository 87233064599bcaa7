package machine

import (
	"errors"

	"github.com/valerio/go-nesfront/nesfront/cartridge"
)

// ErrFault marks an unrecoverable condition inside a machine core. Callers
// check for it with errors.Is and end the session; there is no retry.
var ErrFault = errors.New("machine fault")

// VideoSink receives completed video frames from the core.
// The plane holds one palette index per pixel, row-major, Width*Height long.
type VideoSink interface {
	WriteFrame(plane []byte)
	FrameWritten() bool
}

// AudioSink receives audio samples at the core's fixed sample rate.
type AudioSink interface {
	WriteSample(value float32)
	SamplesWritten() int
}

// Machine is the boundary with an emulated console core. Step executes one
// instruction, pushing any frame or samples it produces into the sinks, and
// returns the number of CPU cycles consumed. Sinks are only valid for the
// duration of the call.
type Machine interface {
	Step(video VideoSink, audio AudioSink) (int, error)
	Reset()
	SetButtonPressed(button Button, pressed bool)
}

// Factory builds a machine from a cartridge image. The image is owned by the
// machine afterwards.
type Factory func(image *cartridge.Image) (Machine, error)
