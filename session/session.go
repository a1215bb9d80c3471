package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/intune-audio/intune/dsp"
	"github.com/intune-audio/intune/logging"
	"github.com/intune-audio/intune/pitch"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateReady
	StateRunning
	StateStopped
	StateClosed
)

// frameQueueDepth bounds the channel between the capture and observation
// contexts. The capture side never blocks: if the observation side falls
// this far behind, frames are dropped and counted.
const frameQueueDepth = 256

// Session wires the full pipeline together: a CaptureSource drives the
// conditioner, frame buffer, gate and estimator on the capture context;
// pitch frames cross a FIFO channel to the observation context, which owns
// the smoother and the pitch history.
//
// Neither context's state is ever shared: the capture callback exclusively
// owns the DSP chain, the observation goroutine exclusively owns the
// smoother and history. No locks guard the hot path.
type Session struct {
	cfg Config
	src CaptureSource
	id  string
	log logging.Logger

	mu    sync.Mutex
	state State

	// capture-context state, touched only from the source callback
	conditioner *dsp.Conditioner
	framer      *dsp.FrameBuffer
	gate        *dsp.Gate
	estimator   *dsp.YinEstimator
	frame       []float64

	stopped atomic.Bool
	dropped atomic.Int64

	frames  chan pitch.Frame
	quit    chan struct{}
	obsDone chan struct{}

	// observation-context state, touched only from the observation goroutine
	smoother      *pitch.Smoother
	history       []pitch.Observation
	onObservation func(pitch.Observation)
}

// New creates a session over the given capture source.
func New(cfg Config, src CaptureSource) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Session{
		cfg: cfg,
		src: src,
		id:  id,
		log: logging.WithFields(logging.Fields{"session": id}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Init builds the DSP chain and acquires the capture source. It is not
// reentrant: a second call fails, and Start is rejected until Init has
// succeeded.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyInitialized
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cond, err := dsp.NewConditioner(s.cfg.SampleRate)
	if err != nil {
		return err
	}
	framer, err := dsp.NewFrameBuffer(s.cfg.FrameSize, s.cfg.HopSize)
	if err != nil {
		return err
	}
	estimator, err := dsp.NewYinEstimator(dsp.YinParams{
		SampleRate: s.cfg.SampleRate,
		FrameSize:  s.cfg.FrameSize,
		Threshold:  s.cfg.YinThreshold,
		MinFreq:    s.cfg.MinFreq,
		MaxFreq:    s.cfg.MaxFreq,
		UseFFT:     s.cfg.UseFFTEstimator,
	})
	if err != nil {
		return err
	}

	gate := dsp.NewGate()
	gate.OnCalibrated(func(floorDb float64) {
		s.log.Info("noise floor calibrated", logging.Fields{"floor_db": floorDb})
	})

	if err := s.src.Open(s.cfg.SampleRate, s.handleSamples); err != nil {
		s.log.Error(err, "capture source open failed")
		return err
	}

	s.conditioner = cond
	s.framer = framer
	s.gate = gate
	s.estimator = estimator
	s.frame = make([]float64, s.cfg.FrameSize)
	s.state = StateReady

	s.log.Info("session initialized", logging.Fields{
		"sample_rate": s.cfg.SampleRate,
		"frame_size":  s.cfg.FrameSize,
		"hop_size":    s.cfg.HopSize,
	})
	return nil
}

// Start begins capture. The optional callback is invoked on the observation
// context once per processed hop.
func (s *Session) Start(onObservation func(pitch.Observation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return ErrNotInitialized
	case StateRunning:
		return ErrAlreadyStarted
	case StateStopped:
		return ErrStopped
	case StateClosed:
		return ErrClosed
	}

	s.onObservation = onObservation
	s.smoother = pitch.NewSmoother(pitch.SmootherParams{
		Alpha: s.cfg.Sensitivity.Alpha(),
		A4:    s.cfg.ReferenceA4,
	})
	s.history = nil
	s.frames = make(chan pitch.Frame, frameQueueDepth)
	s.quit = make(chan struct{})
	s.obsDone = make(chan struct{})
	s.stopped.Store(false)

	go s.observe()

	if err := s.src.Start(); err != nil {
		close(s.quit)
		<-s.obsDone
		return err
	}

	s.state = StateRunning
	s.log.Info("capture started")
	return nil
}

// Stop ends capture, freezes the pitch history and returns it. Frames still
// queued between the contexts are discarded, not drained.
func (s *Session) Stop() ([]pitch.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil, ErrNotStarted
	}

	s.stopped.Store(true)
	if err := s.src.Stop(); err != nil {
		s.log.Error(err, "capture source stop failed")
	}

	close(s.quit)
	<-s.obsDone
	s.state = StateStopped

	s.log.Info("capture stopped", logging.Fields{
		"observations":   len(s.history),
		"dropped_frames": s.dropped.Load(),
	})
	return s.history, nil
}

// Close releases the capture source. A running session is stopped first.
func (s *Session) Close() error {
	s.mu.Lock()
	running := s.state == StateRunning
	s.mu.Unlock()

	if running {
		if _, err := s.Stop(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	return s.src.Close()
}

// DroppedFrames returns how many frames the capture context discarded
// because the observation context fell behind.
func (s *Session) DroppedFrames() int64 {
	return s.dropped.Load()
}

// handleSamples runs on the capture context. It conditions each sample,
// advances the frame buffer, and on every completed hop runs the gate and
// the estimator, then hands the frame across the channel without blocking.
func (s *Session) handleSamples(in []float32) {
	if s.stopped.Load() {
		return
	}

	for _, raw := range in {
		conditioned := s.conditioner.Process(float64(raw))
		if !s.framer.Push(conditioned) {
			continue
		}
		if err := s.framer.Frame(s.frame); err != nil {
			continue
		}

		rms := dsp.RMS(s.frame)
		rmsDb := dsp.Db(rms)
		gateOpen := s.gate.Update(rmsDb)

		frequency, confidence := dsp.NoPitchFrequency, 0.0
		if gateOpen {
			frequency, confidence = s.estimator.Estimate(s.frame)
		}

		frame := pitch.Frame{
			Frequency:  frequency,
			Confidence: confidence,
			RMS:        rms,
			RMSDb:      rmsDb,
			GateOpen:   gateOpen,
			Timestamp:  float64(s.framer.Total()) / float64(s.cfg.SampleRate) * 1000.0,
		}

		select {
		case s.frames <- frame:
		default:
			// capture must never stall on a slow consumer
			s.dropped.Add(1)
		}
	}
}

// observe runs on the observation context and owns all smoothing state and
// the history buffer.
func (s *Session) observe() {
	defer close(s.obsDone)

	for {
		select {
		case <-s.quit:
			return
		case frame := <-s.frames:
			obs, ok := s.smoother.Process(frame)
			if !ok {
				continue
			}
			s.history = append(s.history, obs)
			if s.onObservation != nil {
				s.onObservation(obs)
			}
		}
	}
}
