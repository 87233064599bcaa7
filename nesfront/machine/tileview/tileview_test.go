package tileview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-nesfront/nesfront/cartridge"
	"github.com/valerio/go-nesfront/nesfront/machine"
)

type recordingVideo struct {
	frames int
	last   []byte
}

func (v *recordingVideo) WriteFrame(plane []byte) {
	v.frames++
	v.last = append(v.last[:0], plane...)
}

func (v *recordingVideo) FrameWritten() bool { return v.frames > 0 }

type recordingAudio struct {
	samples []float32
}

func (a *recordingAudio) WriteSample(value float32) { a.samples = append(a.samples, value) }
func (a *recordingAudio) SamplesWritten() int       { return len(a.samples) }

func newMachine(t *testing.T, chr []byte) *Machine {
	t.Helper()
	m, err := New(&cartridge.Image{Name: "test", PRG: make([]byte, 16*1024), CHR: chr})
	require.NoError(t, err)
	return m.(*Machine)
}

func runFrame(t *testing.T, m *Machine, v *recordingVideo, a *recordingAudio) {
	t.Helper()
	want := v.frames + 1
	for i := 0; i < machine.CyclesPerFrame && v.frames < want; i++ {
		_, err := m.Step(v, a)
		require.NoError(t, err)
	}
	require.Equal(t, want, v.frames, "frame was not produced")
}

func pixel(plane []byte, x, y int) byte {
	return plane[y*machine.ScreenWidth+x]
}

func TestNew_NilImage(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestStep_CostsWithinInstructionRange(t *testing.T) {
	m := newMachine(t, nil)
	v, a := &recordingVideo{}, &recordingAudio{}
	for i := 0; i < 100; i++ {
		cycles, err := m.Step(v, a)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cycles, 2)
		assert.LessOrEqual(t, cycles, 7)
	}
	assert.Equal(t, uint64(100), m.Steps())
}

func TestStep_FrameAndSampleCadence(t *testing.T) {
	m := newMachine(t, nil)
	v, a := &recordingVideo{}, &recordingAudio{}

	total := 0
	for total < 3*machine.CyclesPerFrame+100 {
		cycles, err := m.Step(v, a)
		require.NoError(t, err)
		total += cycles
	}

	assert.Equal(t, total/machine.CyclesPerFrame, v.frames)
	assert.Equal(t, uint64(v.frames), m.Frames())
	assert.Equal(t, total*machine.SampleRate/machine.CPUFrequency, len(a.samples))
	assert.Len(t, v.last, machine.ScreenWidth*machine.ScreenHeight)
}

func TestAudio_SilentWithoutButtons(t *testing.T) {
	m := newMachine(t, nil)
	v, a := &recordingVideo{}, &recordingAudio{}
	runFrame(t, m, v, a)

	require.NotEmpty(t, a.samples)
	for _, s := range a.samples {
		assert.Equal(t, float32(0), s)
	}
}

func TestAudio_SquareWaveWhileAPressed(t *testing.T) {
	m := newMachine(t, nil)
	v, a := &recordingVideo{}, &recordingAudio{}
	m.SetButtonPressed(machine.ButtonA, true)
	runFrame(t, m, v, a)

	var high, low int
	for _, s := range a.samples {
		switch s {
		case toneAmplitude:
			high++
		case -toneAmplitude:
			low++
		default:
			t.Fatalf("unexpected sample %v", s)
		}
	}
	assert.Positive(t, high)
	assert.Positive(t, low)

	m.SetButtonPressed(machine.ButtonA, false)
	a.samples = a.samples[:0]
	runFrame(t, m, v, a)
	assert.Equal(t, float32(0), a.samples[len(a.samples)-1])
}

func solidTopRowCHR() []byte {
	chr := make([]byte, 8*1024)
	chr[0] = 0xFF // tile 0, row 0, plane 0
	chr[8] = 0xFF // tile 0, row 0, plane 1
	return chr
}

func TestRender_CHRTiles(t *testing.T) {
	m := newMachine(t, solidTopRowCHR())
	v, a := &recordingVideo{}, &recordingAudio{}
	runFrame(t, m, v, a)

	for x := 0; x < 8; x++ {
		assert.Equal(t, paletteSets[0][3], pixel(v.last, x, 0))
	}
	assert.Equal(t, paletteSets[0][0], pixel(v.last, 8, 0))
	assert.Equal(t, paletteSets[0][0], pixel(v.last, 0, 1))
}

func TestRender_SelectCyclesPalette(t *testing.T) {
	m := newMachine(t, solidTopRowCHR())
	v, a := &recordingVideo{}, &recordingAudio{}

	m.SetButtonPressed(machine.ButtonSelect, true)
	// holding the button does not advance the palette again
	m.SetButtonPressed(machine.ButtonSelect, true)
	runFrame(t, m, v, a)
	assert.Equal(t, paletteSets[1][3], pixel(v.last, 0, 0))

	m.SetButtonPressed(machine.ButtonSelect, false)
	m.SetButtonPressed(machine.ButtonSelect, true)
	runFrame(t, m, v, a)
	assert.Equal(t, paletteSets[2][3], pixel(v.last, 0, 0))
}

func TestRender_DPadScrollsAndWraps(t *testing.T) {
	m := newMachine(t, solidTopRowCHR())
	v, a := &recordingVideo{}, &recordingAudio{}

	m.SetButtonPressed(machine.ButtonRight, true)
	m.SetButtonPressed(machine.ButtonUp, true)
	runFrame(t, m, v, a)

	solid := paletteSets[0][3]
	assert.NotEqual(t, solid, pixel(v.last, 0, 0))
	assert.Equal(t, solid, pixel(v.last, machine.ScreenWidth-8, 8))
	assert.Equal(t, solid, pixel(v.last, machine.ScreenWidth-1, 8))
}

func TestReset_RestoresView(t *testing.T) {
	m := newMachine(t, solidTopRowCHR())
	v, a := &recordingVideo{}, &recordingAudio{}
	m.SetButtonPressed(machine.ButtonRight, true)
	m.SetButtonPressed(machine.ButtonSelect, true)
	m.SetButtonPressed(machine.ButtonA, true)
	runFrame(t, m, v, a)

	m.Reset()
	assert.Equal(t, uint64(0), m.Frames())

	a.samples = a.samples[:0]
	runFrame(t, m, v, a)
	assert.Equal(t, paletteSets[0][3], pixel(v.last, 0, 0))
	for _, s := range a.samples {
		assert.Equal(t, float32(0), s)
	}
}

func TestRender_CHRRAMFallsBackToPatterns(t *testing.T) {
	m := newMachine(t, nil)
	v, a := &recordingVideo{}, &recordingAudio{}
	runFrame(t, m, v, a)

	// checkerboard
	assert.Equal(t, paletteSets[0][3], pixel(v.last, 0, 0))
	assert.Equal(t, paletteSets[0][0], pixel(v.last, patternTileSize, 0))

	m.SetButtonPressed(machine.ButtonStart, true)
	runFrame(t, m, v, a)
	// gradient: leftmost column is color 0, rightmost is color 3
	assert.Equal(t, paletteSets[0][0], pixel(v.last, 0, 0))
	assert.Equal(t, paletteSets[0][3], pixel(v.last, machine.ScreenWidth-1, 0))
}

func TestSetButtonPressed_IgnoresUnknownButton(t *testing.T) {
	m := newMachine(t, nil)
	assert.NotPanics(t, func() {
		m.SetButtonPressed(machine.Button(42), true)
		m.SetButtonPressed(machine.Button(-1), true)
	})
}
