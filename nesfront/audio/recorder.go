package audio

import (
	"fmt"
	"log/slog"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/valerio/go-nesfront/nesfront/machine"
)

const (
	recorderBitDepth  = 16
	recorderChunkSize = 4096
	wavFormatPCM      = 1
)

// Recorder captures every sample the core produces into a 16-bit mono WAV
// file and passes it on to the wrapped sink.
type Recorder struct {
	next    machine.AudioSink
	path    string
	file    *os.File
	enc     *wav.Encoder
	chunk   *goaudio.IntBuffer
	written int
	err     error
}

var _ machine.AudioSink = (*Recorder)(nil)

func NewRecorder(path string, sampleRate int, next machine.AudioSink) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}

	r := &Recorder{
		next: next,
		path: path,
		file: f,
		enc:  wav.NewEncoder(f, sampleRate, recorderBitDepth, 1, wavFormatPCM),
		chunk: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, 0, recorderChunkSize),
			SourceBitDepth: recorderBitDepth,
		},
	}

	slog.Info("Recording audio", "path", path, "sample_rate", sampleRate)
	return r, nil
}

func (r *Recorder) WriteSample(value float32) {
	r.written++
	r.chunk.Data = append(r.chunk.Data, toPCM16(value))
	if len(r.chunk.Data) == recorderChunkSize {
		r.flush()
	}
	r.next.WriteSample(value)
}

func (r *Recorder) SamplesWritten() int {
	return r.written
}

// Dropped reports the wrapped sink's dropped samples, if it counts them.
func (r *Recorder) Dropped() uint64 {
	if d, ok := r.next.(interface{ Dropped() uint64 }); ok {
		return d.Dropped()
	}
	return 0
}

// Underruns reports the wrapped sink's playback underruns, if it counts them.
func (r *Recorder) Underruns() uint64 {
	if u, ok := r.next.(interface{ Underruns() uint64 }); ok {
		return u.Underruns()
	}
	return 0
}

func (r *Recorder) flush() {
	if r.err != nil || len(r.chunk.Data) == 0 {
		r.chunk.Data = r.chunk.Data[:0]
		return
	}
	if err := r.enc.Write(r.chunk); err != nil {
		r.err = err
		slog.Error("Audio recording failed, further samples are discarded", "path", r.path, "error", err)
	}
	r.chunk.Data = r.chunk.Data[:0]
}

// Close writes any pending samples and finalises the WAV header.
func (r *Recorder) Close() error {
	r.flush()
	encErr := r.enc.Close()
	fileErr := r.file.Close()

	switch {
	case r.err != nil:
		return fmt.Errorf("recorder: %w", r.err)
	case encErr != nil:
		return fmt.Errorf("recorder: %w", encErr)
	case fileErr != nil:
		return fmt.Errorf("recorder: %w", fileErr)
	}

	slog.Info("Audio recording saved", "path", r.path, "samples", r.written)
	return nil
}

func toPCM16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
