// Package tileview is a minimal machine core that shows a cartridge's CHR
// pattern tables and plays a tone. It keeps a realistic cycle and sample
// cadence so the front end can be exercised without a full console core.
package tileview

import (
	"errors"
	"log/slog"

	"github.com/valerio/go-nesfront/nesfront/cartridge"
	"github.com/valerio/go-nesfront/nesfront/machine"
)

var errNoImage = errors.New("tileview: no cartridge image")

// stepCosts is the repeating cycle cost of successive steps.
var stepCosts = [...]int{2, 3, 4, 2, 5, 3, 7, 2, 6, 4, 2, 3}

// Palette sets selected with Select, as NES palette indices for colors 0-3.
var paletteSets = [...][4]uint8{
	{0x0F, 0x00, 0x10, 0x30},
	{0x0F, 0x06, 0x16, 0x27},
	{0x0F, 0x01, 0x21, 0x31},
	{0x0F, 0x09, 0x19, 0x29},
}

const (
	tilesPerRow = machine.ScreenWidth / 8

	toneA         = 440
	toneB         = 660
	toneAmplitude = 0.2
)

// Machine implements machine.Machine.
type Machine struct {
	image *cartridge.Image
	tiles []Tile

	plane  []uint8
	colors []uint8

	costIdx    int
	frameCycle int
	sampleAcc  int
	frames     uint64

	phase   int
	pressed [8]bool
	scrollX int
	scrollY int
	palette int
	pattern int
	steps   uint64
}

// New builds a Machine for the given cartridge. It satisfies machine.Factory.
func New(image *cartridge.Image) (machine.Machine, error) {
	if image == nil {
		return nil, errNoImage
	}
	m := &Machine{
		image:  image,
		plane:  make([]uint8, machine.ScreenWidth*machine.ScreenHeight),
		colors: make([]uint8, machine.ScreenWidth*machine.ScreenHeight),
	}
	if !image.HasCHRRAM() {
		m.tiles = DecodeTiles(image.CHR)
	}
	slog.Debug("tileview core created", "rom", image.Name, "tiles", len(m.tiles), "mapper", image.Mapper)
	return m, nil
}

// Step runs one pseudo instruction.
func (m *Machine) Step(video machine.VideoSink, audio machine.AudioSink) (int, error) {
	cost := stepCosts[m.costIdx]
	m.costIdx = (m.costIdx + 1) % len(stepCosts)
	m.steps++

	m.sampleAcc += cost * machine.SampleRate
	for m.sampleAcc >= machine.CPUFrequency {
		m.sampleAcc -= machine.CPUFrequency
		audio.WriteSample(m.nextSample())
	}

	m.frameCycle += cost
	if m.frameCycle >= machine.CyclesPerFrame {
		m.frameCycle -= machine.CyclesPerFrame
		m.frames++
		m.render()
		video.WriteFrame(m.plane)
	}
	return cost, nil
}

// Reset restores the power-on view and silences the tone.
func (m *Machine) Reset() {
	m.costIdx = 0
	m.frameCycle = 0
	m.sampleAcc = 0
	m.frames = 0
	m.phase = 0
	m.pressed = [8]bool{}
	m.scrollX = 0
	m.scrollY = 0
	m.palette = 0
	m.pattern = 0
}

// SetButtonPressed updates a controller button. Direction and Select act on
// the press edge.
func (m *Machine) SetButtonPressed(button machine.Button, pressed bool) {
	if button < 0 || int(button) >= len(m.pressed) {
		return
	}
	wasPressed := m.pressed[button]
	m.pressed[button] = pressed
	if !pressed || wasPressed {
		return
	}

	switch button {
	case machine.ButtonUp:
		m.scrollY--
	case machine.ButtonDown:
		m.scrollY++
	case machine.ButtonLeft:
		m.scrollX--
	case machine.ButtonRight:
		m.scrollX++
	case machine.ButtonSelect:
		m.palette = (m.palette + 1) % len(paletteSets)
	case machine.ButtonStart:
		m.pattern = (m.pattern + 1) % PatternCount
	}
}

// Frames returns the number of frames produced since creation or reset.
func (m *Machine) Frames() uint64 {
	return m.frames
}

// Steps returns the number of steps executed since creation.
func (m *Machine) Steps() uint64 {
	return m.steps
}

func (m *Machine) toneFrequency() int {
	freq := 0
	if m.pressed[machine.ButtonA] {
		freq += toneA
	}
	if m.pressed[machine.ButtonB] {
		freq += toneB
	}
	return freq
}

// nextSample produces one square wave sample. The phase counts in units of
// 1/SampleRate of a cycle so the period stays exact for integer frequencies.
func (m *Machine) nextSample() float32 {
	freq := m.toneFrequency()
	if freq == 0 {
		m.phase = 0
		return 0
	}
	m.phase = (m.phase + freq) % machine.SampleRate
	if m.phase < machine.SampleRate/2 {
		return toneAmplitude
	}
	return -toneAmplitude
}

func (m *Machine) render() {
	if len(m.tiles) == 0 {
		drawPattern(m.colors, m.pattern, m.scrollX*8, m.scrollY*8)
	} else {
		m.renderTiles()
	}
	set := paletteSets[m.palette]
	for i, c := range m.colors {
		m.plane[i] = set[c&3]
	}
}

// renderTiles lays the tiles out 32 per row and wraps them across the screen.
func (m *Machine) renderTiles() {
	rows := (len(m.tiles) + tilesPerRow - 1) / tilesPerRow
	for ty := 0; ty < machine.ScreenHeight/8; ty++ {
		srcRow := mod(ty+m.scrollY, rows)
		for tx := 0; tx < tilesPerRow; tx++ {
			srcCol := mod(tx+m.scrollX, tilesPerRow)
			idx := srcRow*tilesPerRow + srcCol
			var tile *Tile
			if idx < len(m.tiles) {
				tile = &m.tiles[idx]
			}
			for y := 0; y < 8; y++ {
				line := (ty*8+y)*machine.ScreenWidth + tx*8
				for x := 0; x < 8; x++ {
					var c uint8
					if tile != nil {
						c = tile.Pixel(x, y)
					}
					m.colors[line+x] = c
				}
			}
		}
	}
}
