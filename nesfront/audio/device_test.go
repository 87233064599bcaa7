//go:build !headless

package audio

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDevice_ReadDrainsRingAndPadsSilence(t *testing.T) {
	r := NewRing(16)
	r.Push(0.25)
	r.Push(-1)
	d := &Device{ring: r}

	p := make([]byte, 4*bytesPerSample)
	n, err := d.Read(p)

	assert.NoError(t, err)
	assert.Equal(t, len(p), n)

	got := make([]float32, 4)
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*bytesPerSample:]))
	}
	assert.Equal(t, []float32{0.25, -1, 0, 0}, got)
	assert.Equal(t, uint64(4), d.FramesPlayed())
}

func TestDevice_FramesPlayedConcurrentWithClose(t *testing.T) {
	d := &Device{ring: NewRing(16)}
	p := make([]byte, 8*bytesPerSample)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			d.Read(p)
			_ = d.FramesPlayed()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			assert.NoError(t, d.Close())
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(8000), d.FramesPlayed())
}
