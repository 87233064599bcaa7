package nesfront

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-nesfront/nesfront/audio"
	"github.com/valerio/go-nesfront/nesfront/cartridge"
	"github.com/valerio/go-nesfront/nesfront/machine"
	"github.com/valerio/go-nesfront/nesfront/timing"
	"github.com/valerio/go-nesfront/nesfront/video"
)

// testFrequency gives a cycle period of exactly 1001ns.
const testFrequency = 1_000_000

var errBoom = errors.New("boom")

type fakeMachine struct {
	name       string
	cost       int
	frameEvery int
	failAt     int
	steps      int
	resets     int
	buttons    map[machine.Button]bool
}

func newFakeMachine(name string) *fakeMachine {
	return &fakeMachine{name: name, cost: 3, frameEvery: 10, buttons: map[machine.Button]bool{}}
}

func (m *fakeMachine) Step(v machine.VideoSink, a machine.AudioSink) (int, error) {
	m.steps++
	if m.failAt > 0 && m.steps >= m.failAt {
		return 0, errBoom
	}
	a.WriteSample(0.5)
	if m.frameEvery > 0 && m.steps%m.frameEvery == 0 {
		plane := make([]byte, machine.ScreenWidth*machine.ScreenHeight)
		for i := range plane {
			plane[i] = 0x30
		}
		v.WriteFrame(plane)
	}
	return m.cost, nil
}

func (m *fakeMachine) Reset() {
	m.resets++
	m.steps = 0
}

func (m *fakeMachine) SetButtonPressed(b machine.Button, pressed bool) {
	m.buttons[b] = pressed
}

// fakeFactory hands out machines by ROM name and records them.
type fakeFactory struct {
	built []*fakeMachine
	err   error
}

func (f *fakeFactory) New(image *cartridge.Image) (machine.Machine, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := newFakeMachine(image.Name)
	f.built = append(f.built, m)
	return m, nil
}

func (f *fakeFactory) last() *fakeMachine {
	return f.built[len(f.built)-1]
}

func newTestSession(t *testing.T, samples machine.AudioSink) (*Session, *timing.SimulatedClock, *fakeFactory) {
	t.Helper()
	factory := &fakeFactory{}
	clock := timing.NewSimulatedClock()
	cfg := DefaultConfig(factory.New)
	cfg.CPUFrequency = testFrequency
	if samples == nil {
		samples = &audio.NullSink{}
	}
	s, err := New(cfg, clock, samples)
	require.NoError(t, err)
	return s, clock, factory
}

func testImage(name string) *cartridge.Image {
	return &cartridge.Image{Name: name, PRG: make([]byte, cartridge.PRGBankSize)}
}

func writeROM(t *testing.T, dir, name string) string {
	t.Helper()
	data := make([]byte, 16+cartridge.PRGBankSize+cartridge.CHRBankSize)
	copy(data, "NES\x1a")
	data[4] = 1
	data[5] = 1
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, timing.NewSimulatedClock(), &audio.NullSink{})
	assert.ErrorIs(t, err, ErrNoFactory)

	cfg := DefaultConfig((&fakeFactory{}).New)
	cfg.CPUFrequency = 0
	_, err = New(cfg, timing.NewSimulatedClock(), &audio.NullSink{})
	assert.Error(t, err)
}

func TestSession_AdvanceWithoutMachineIsNoop(t *testing.T) {
	s, clock, _ := newTestSession(t, nil)
	clock.Advance(1_000_000)

	require.NoError(t, s.Advance())
	assert.False(t, s.Loaded())
	assert.Zero(t, s.Stats().Cycles)
}

func TestSession_AdvanceMeetsClockTarget(t *testing.T) {
	s, clock, _ := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))

	clock.Advance(1001 * 100)
	require.NoError(t, s.Advance())

	st := s.Stats()
	assert.Equal(t, uint64(100), st.TargetCycles)
	assert.GreaterOrEqual(t, st.Cycles, uint64(100))
	assert.Less(t, st.Cycles, uint64(100+3))
	assert.Equal(t, uint64(34), st.Instructions)
	assert.Equal(t, 34, st.SamplesWritten)
	assert.Equal(t, uint64(3), st.Frames)
}

func TestSession_PixelsShowLastFrame(t *testing.T) {
	s, clock, _ := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))

	clock.Advance(1001 * 30)
	require.NoError(t, s.Advance())

	pixels := s.Pixels()
	require.Len(t, pixels, machine.ScreenWidth*machine.ScreenHeight*video.BytesPerPixel)
	r, g, b := video.RGB(0x30)
	assert.Equal(t, []byte{r, g, b, video.Alpha}, pixels[:4])
}

func TestSession_PauseFreezesAndResumeSkipsPausedTime(t *testing.T) {
	s, clock, _ := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))

	clock.Advance(1001 * 10)
	require.NoError(t, s.Advance())
	before := s.Stats().Cycles

	s.TogglePause()
	assert.True(t, s.Paused())
	clock.Advance(1001 * 1000)
	require.NoError(t, s.Advance())
	assert.Equal(t, before, s.Stats().Cycles)

	s.TogglePause()
	assert.False(t, s.Paused())
	clock.Advance(1001 * 10)
	require.NoError(t, s.Advance())
	assert.Equal(t, uint64(20), s.Stats().TargetCycles)
}

func TestSession_ResetFromEitherState(t *testing.T) {
	for _, paused := range []bool{false, true} {
		s, clock, factory := newTestSession(t, nil)
		require.NoError(t, s.Load(testImage("a")))
		clock.Advance(1001 * 50)
		require.NoError(t, s.Advance())
		if paused {
			s.Pause()
		}

		clock.Advance(777)
		s.Reset()

		assert.False(t, s.Paused(), "paused=%v", paused)
		assert.Equal(t, clock.NowNs(), s.Pacer().Epoch())
		assert.Zero(t, s.Stats().Cycles)
		assert.Zero(t, s.Stats().Instructions)
		assert.Equal(t, 1, factory.last().resets)
	}
}

func TestSession_LoadWhilePausedResumesRunning(t *testing.T) {
	s, clock, factory := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))
	clock.Advance(1001 * 50)
	require.NoError(t, s.Advance())

	s.Pause()
	clock.Advance(5000)
	require.NoError(t, s.Load(testImage("b")))

	assert.False(t, s.Paused())
	assert.Equal(t, clock.NowNs(), s.Pacer().Epoch())
	assert.Zero(t, s.Stats().Cycles)
	assert.Equal(t, "b", s.Stats().ROM)
	require.Len(t, factory.built, 2)

	clock.Advance(1001 * 5)
	require.NoError(t, s.Advance())
	assert.Equal(t, 17, factory.built[0].steps, "old machine is no longer stepped")
	assert.Positive(t, factory.built[1].steps)
}

func TestSession_LoadFailureLeavesSessionUntouched(t *testing.T) {
	s, clock, factory := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))
	clock.Advance(1001 * 50)
	require.NoError(t, s.Advance())

	before := s.Stats()
	epoch := s.Pacer().Epoch()

	factory.err = errBoom
	err := s.Load(testImage("b"))
	assert.ErrorIs(t, err, errBoom)
	assert.Error(t, s.Load(nil))

	err = s.LoadFile(filepath.Join(t.TempDir(), "missing.nes"))
	assert.Error(t, err)

	assert.Equal(t, before, s.Stats())
	assert.Equal(t, epoch, s.Pacer().Epoch())
	assert.False(t, s.Paused())
	assert.True(t, s.Loaded())

	clock.Advance(1001 * 10)
	require.NoError(t, s.Advance())
	assert.Greater(t, s.Stats().Cycles, before.Cycles)
}

func TestSession_LoadFileAndReload(t *testing.T) {
	s, clock, factory := newTestSession(t, nil)
	assert.ErrorIs(t, s.Reload(), ErrNoROM)

	dir := t.TempDir()
	path := writeROM(t, dir, "game.nes")
	require.NoError(t, s.LoadFile(path))
	assert.Equal(t, path, s.ROMPath())
	assert.Equal(t, "game", factory.last().name)

	clock.Advance(1001 * 50)
	require.NoError(t, s.Advance())

	clock.Advance(100)
	require.NoError(t, s.Reload())
	assert.Len(t, factory.built, 2)
	assert.Zero(t, s.Stats().Cycles)
	assert.Equal(t, clock.NowNs(), s.Pacer().Epoch())
	assert.False(t, s.Paused())

	// a failed reload restores the previous pause state
	require.NoError(t, os.Remove(path))
	assert.Error(t, s.Reload())
	assert.False(t, s.Paused())

	s.Pause()
	assert.Error(t, s.Reload())
	assert.True(t, s.Paused())
}

func TestSession_KeysMapToButtons(t *testing.T) {
	s, _, factory := newTestSession(t, nil)
	s.KeyDown("x") // no machine yet, ignored

	require.NoError(t, s.Load(testImage("a")))
	m := factory.last()

	s.KeyDown("x")
	s.KeyDown("Enter")
	s.KeyDown("F7")
	assert.Equal(t, map[machine.Button]bool{machine.ButtonA: true, machine.ButtonStart: true}, m.buttons)

	s.KeyUp("x")
	assert.False(t, m.buttons[machine.ButtonA])
}

func TestSession_FaultTerminates(t *testing.T) {
	s, clock, factory := newTestSession(t, nil)
	require.NoError(t, s.Load(testImage("a")))
	factory.last().failAt = 5

	clock.Advance(1001 * 100)
	err := s.Advance()
	assert.ErrorIs(t, err, machine.ErrFault)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, s.Loaded())

	require.NoError(t, s.Advance())
}

func TestSession_StatsReportDroppedSamples(t *testing.T) {
	ring := audio.NewRing(8)
	s, clock, _ := newTestSession(t, audio.NewSampleSink(ring))
	require.NoError(t, s.Load(testImage("a")))

	clock.Advance(1001 * 60)
	require.NoError(t, s.Advance())

	st := s.Stats()
	assert.Equal(t, 20, st.SamplesWritten)
	assert.Equal(t, uint64(12), st.DroppedSamples)
	assert.Equal(t, 8, ring.Len())
}
