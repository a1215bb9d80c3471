package session

// CaptureSource abstracts how mono float32 samples reach the pipeline. The
// primary implementation wraps a low-latency audio callback device; the
// fallback streams buffered samples through the identical pipeline, so both
// paths share all conditioning and estimation logic.
//
// The onSamples callback runs on the source's capture context and must obey
// its time budget: no blocking, no unbounded work.
type CaptureSource interface {
	// Open acquires the underlying device or buffer. It must complete (or
	// fail) before the session accepts Start.
	Open(sampleRate int, onSamples func([]float32)) error

	Start() error
	Stop() error
	Close() error
}
