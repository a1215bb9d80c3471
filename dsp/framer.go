package dsp

import "fmt"

// FrameBuffer slides fixed-size, overlapping analysis frames over a stream of
// conditioned samples. Samples are pushed one at a time; every hopSize new
// samples (once at least frameSize have accumulated) a frame becomes ready
// and can be copied out with Frame.
//
// The buffer is a ring of frameSize samples, owned by the capture context.
type FrameBuffer struct {
	buf       []float64
	frameSize int
	hopSize   int

	write    int
	total    int64
	sinceHop int
}

// NewFrameBuffer creates a frame buffer. The hop size must be smaller than
// the frame size so that successive frames overlap.
func NewFrameBuffer(frameSize, hopSize int) (*FrameBuffer, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	if hopSize <= 0 || hopSize >= frameSize {
		return nil, fmt.Errorf("hop size must be in (0, frameSize), got hop=%d frame=%d", hopSize, frameSize)
	}

	return &FrameBuffer{
		buf:       make([]float64, frameSize),
		frameSize: frameSize,
		hopSize:   hopSize,
	}, nil
}

// Push appends one sample and reports whether a new frame is ready.
func (fb *FrameBuffer) Push(sample float64) bool {
	fb.buf[fb.write] = sample
	fb.write = (fb.write + 1) % fb.frameSize
	fb.total++
	fb.sinceHop++

	if fb.total >= int64(fb.frameSize) && fb.sinceHop >= fb.hopSize {
		fb.sinceHop = 0
		return true
	}
	return false
}

// Frame copies the most recent frameSize samples, oldest first, into dst.
// dst must have length frameSize.
func (fb *FrameBuffer) Frame(dst []float64) error {
	if len(dst) != fb.frameSize {
		return fmt.Errorf("dst length %d does not match frame size %d", len(dst), fb.frameSize)
	}
	if fb.total < int64(fb.frameSize) {
		return fmt.Errorf("only %d of %d samples buffered", fb.total, fb.frameSize)
	}

	// write points at the oldest sample once the ring is full.
	n := copy(dst, fb.buf[fb.write:])
	copy(dst[n:], fb.buf[:fb.write])
	return nil
}

// FrameSize returns the analysis frame length in samples.
func (fb *FrameBuffer) FrameSize() int { return fb.frameSize }

// HopSize returns the number of new samples between successive frames.
func (fb *FrameBuffer) HopSize() int { return fb.hopSize }

// Total returns the number of samples pushed so far.
func (fb *FrameBuffer) Total() int64 { return fb.total }

// Reset discards all buffered samples.
func (fb *FrameBuffer) Reset() {
	fb.write = 0
	fb.total = 0
	fb.sinceHop = 0
}
