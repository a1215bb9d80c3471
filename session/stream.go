package session

import (
	"sync"
	"time"
)

// StreamSource is the fallback capture path for hosts without a low-latency
// callback device: it pushes preloaded samples through the same pipeline in
// fixed-size chunks, either as fast as possible (offline analysis) or paced
// at the nominal sample rate.
type StreamSource struct {
	samples []float32
	chunk   int
	paced   bool

	onSamples  func([]float32)
	sampleRate int

	mu      sync.Mutex
	started bool
	quit    chan struct{}
	done    chan struct{}
}

// NewStreamSource creates a stream source over a fixed sample buffer.
// A chunk size of 0 defaults to 512 samples.
func NewStreamSource(samples []float32, chunk int) *StreamSource {
	if chunk <= 0 {
		chunk = 512
	}
	return &StreamSource{
		samples: samples,
		chunk:   chunk,
		done:    make(chan struct{}),
		quit:    make(chan struct{}),
	}
}

// SetPaced makes Start deliver chunks at the wall-clock rate implied by the
// sample rate instead of as fast as possible.
func (s *StreamSource) SetPaced(paced bool) {
	s.paced = paced
}

func (s *StreamSource) Open(sampleRate int, onSamples func([]float32)) error {
	s.sampleRate = sampleRate
	s.onSamples = onSamples
	return nil
}

func (s *StreamSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.onSamples == nil {
		return ErrNotInitialized
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	go s.run()
	return nil
}

func (s *StreamSource) run() {
	defer close(s.done)

	var interval time.Duration
	if s.paced && s.sampleRate > 0 {
		interval = time.Duration(float64(s.chunk) / float64(s.sampleRate) * float64(time.Second))
	}

	for off := 0; off < len(s.samples); off += s.chunk {
		select {
		case <-s.quit:
			return
		default:
		}

		end := off + s.chunk
		if end > len(s.samples) {
			end = len(s.samples)
		}
		s.onSamples(s.samples[off:end])

		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

func (s *StreamSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	select {
	case <-s.quit:
	default:
		close(s.quit)
	}
	<-s.done
	return nil
}

func (s *StreamSource) Close() error {
	return s.Stop()
}

// Done is closed once every sample has been delivered (or the source was
// stopped). Offline callers wait on it before stopping the session.
func (s *StreamSource) Done() <-chan struct{} {
	return s.done
}
