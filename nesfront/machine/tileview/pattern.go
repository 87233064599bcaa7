package tileview

import "github.com/valerio/go-nesfront/nesfront/machine"

// Fallback patterns drawn when the cartridge has no CHR ROM to show.
const (
	PatternCheckerboard = iota
	PatternGradient
	PatternStripes
	PatternDiagonal
	PatternCount
)

const (
	patternTileSize    = 16
	patternStripeWidth = 8
)

// drawPattern fills plane with 2-bit colors for the given pattern, shifted by
// offset pixels so the d-pad can pan it.
func drawPattern(plane []uint8, pattern, offsetX, offsetY int) {
	for y := 0; y < machine.ScreenHeight; y++ {
		py := y + offsetY
		for x := 0; x < machine.ScreenWidth; x++ {
			px := x + offsetX
			var c uint8
			switch pattern {
			case PatternCheckerboard:
				if (floorDiv(px, patternTileSize)+floorDiv(py, patternTileSize))%2 == 0 {
					c = 3
				}
			case PatternGradient:
				c = uint8(mod(px, machine.ScreenWidth) * 4 / machine.ScreenWidth)
			case PatternStripes:
				if floorDiv(px, patternStripeWidth)%2 == 0 {
					c = 3
				} else {
					c = 1
				}
			case PatternDiagonal:
				if floorDiv(px+py, patternTileSize)%2 == 0 {
					c = 2
				} else {
					c = 1
				}
			}
			plane[y*machine.ScreenWidth+x] = c
		}
	}
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func floorDiv(a, n int) int {
	if a < 0 {
		return -((-a + n - 1) / n)
	}
	return a / n
}
