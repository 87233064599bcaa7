package audio

import "sync/atomic"

// Ring is a bounded single-producer/single-consumer sample queue. The
// emulation goroutine pushes, the playback callback drains; neither side
// ever blocks or takes a lock.
//
// Indices are free-running counters, so any positive capacity works and
// Len never exceeds Cap.
type Ring struct {
	data     []float32
	capacity uint64

	// Padding to keep producer and consumer counters on separate cache lines
	_     [8]uint64
	write atomic.Uint64 // advanced by the producer only
	_     [8]uint64
	read  atomic.Uint64 // advanced by the consumer only
	_     [8]uint64

	dropped   atomic.Uint64
	underruns atomic.Uint64
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("ring buffer capacity must be positive")
	}
	return &Ring{
		data:     make([]float32, capacity),
		capacity: uint64(capacity),
	}
}

// Push appends a sample. When the ring is full the new sample is dropped and
// false is returned.
func (r *Ring) Push(v float32) bool {
	w := r.write.Load()
	if w-r.read.Load() >= r.capacity {
		r.dropped.Add(1)
		return false
	}
	r.data[w%r.capacity] = v
	r.write.Store(w + 1)
	return true
}

// Drain fills dst with queued samples, oldest first, and pads whatever is
// left with silence. It returns the number of real samples copied.
func (r *Ring) Drain(dst []float32) int {
	rd := r.read.Load()
	avail := r.write.Load() - rd

	n := uint64(len(dst))
	if avail < n {
		n = avail
	}
	for i := uint64(0); i < n; i++ {
		dst[i] = r.data[(rd+i)%r.capacity]
	}
	r.read.Store(rd + n)

	if int(n) < len(dst) {
		clear(dst[n:])
		r.underruns.Add(1)
	}
	return int(n)
}

// Len returns the number of queued samples.
func (r *Ring) Len() int {
	return int(r.write.Load() - r.read.Load())
}

func (r *Ring) Cap() int { return int(r.capacity) }

// Dropped counts samples rejected because the ring was full.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }

// Underruns counts drains that had to pad with silence.
func (r *Ring) Underruns() uint64 { return r.underruns.Load() }
