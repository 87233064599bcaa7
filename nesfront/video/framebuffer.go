package video

// BytesPerPixel is the size of one RGBA pixel in a FrameBuffer.
const BytesPerPixel = 4

// FrameBuffer is a fixed-size RGBA image, 4 bytes per pixel, row-major.
type FrameBuffer struct {
	width  int
	height int
	pixels []byte
}

// NewFrameBuffer creates a black, fully opaque frame buffer.
func NewFrameBuffer(width, height int) *FrameBuffer {
	fb := &FrameBuffer{
		width:  width,
		height: height,
		pixels: make([]byte, width*height*BytesPerPixel),
	}
	for i := 3; i < len(fb.pixels); i += BytesPerPixel {
		fb.pixels[i] = Alpha
	}
	return fb
}

func (fb *FrameBuffer) Width() int  { return fb.width }
func (fb *FrameBuffer) Height() int { return fb.height }

// Pixel returns the RGBA components at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) (r, g, b, a uint8) {
	i := (y*fb.width + x) * BytesPerPixel
	return fb.pixels[i], fb.pixels[i+1], fb.pixels[i+2], fb.pixels[i+3]
}

// Bytes exposes the raw RGBA data.
func (fb *FrameBuffer) Bytes() []byte {
	return fb.pixels
}
