package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-nesfront/nesfront/machine"
	"github.com/valerio/go-nesfront/nesfront/video"
)

// ErrNoFrame is returned when a snapshot is requested before any pixels exist.
var ErrNoFrame = errors.New("no frame data available")

// FrameImage wraps an RGBA pixel buffer of the NES screen as an image. The
// buffer is copied so the caller may keep presenting it.
func FrameImage(pixels []byte) (*image.RGBA, error) {
	want := machine.ScreenWidth * machine.ScreenHeight * video.BytesPerPixel
	if len(pixels) == 0 {
		return nil, ErrNoFrame
	}
	if len(pixels) != want {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pixels), want)
	}
	img := image.NewRGBA(image.Rect(0, 0, machine.ScreenWidth, machine.ScreenHeight))
	copy(img.Pix, pixels)
	return img, nil
}

// TakeSnapshot handles the snapshot key for backends, saving to the working
// directory.
func TakeSnapshot(pixels []byte, romName string) {
	baseName := "nesfront_snapshot"
	if romName != "" {
		baseName = romName + "_snapshot"
	}
	if _, err := SaveFramePNGToDir(pixels, baseName, ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// SaveFramePNGToDir saves a frame as PNG with a timestamp suffix to directory,
// or the current directory when empty. It returns the written path.
func SaveFramePNGToDir(pixels []byte, baseName, directory string) (string, error) {
	img, err := FrameImage(pixels)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", machine.ScreenWidth, machine.ScreenHeight))
	return filePath, nil
}
