package render

// UpperHalfBlock draws the top pixel in the foreground color and the bottom
// pixel in the background color of one terminal cell.
const UpperHalfBlock = '▀'

// SampleStep returns the smallest integer downscale factor that fits a
// width x height image into cols x rows cells, two pixels per cell vertically.
func SampleStep(width, height, cols, rows int) int {
	if cols <= 0 || rows <= 0 {
		return 0
	}
	step := 1
	for width/step > cols || (height/step+1)/2 > rows {
		step++
	}
	return step
}

// PixelAt returns the RGB components of an RGBA buffer at (x, y). Out of
// range coordinates are black.
func PixelAt(pixels []byte, width, x, y int) (r, g, b uint8) {
	i := (y*width + x) * 4
	if x < 0 || x >= width || y < 0 || i < 0 || i+2 >= len(pixels) {
		return 0, 0, 0
	}
	return pixels[i], pixels[i+1], pixels[i+2]
}
