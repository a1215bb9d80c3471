package pitch

import (
	"math"
	"sort"
)

// Sensitivity selects how responsive smoothing is to pitch changes. Higher
// sensitivity means less smoothing and faster tracking.
type Sensitivity string

const (
	SensitivityBeginner Sensitivity = "beginner"
	SensitivityStandard Sensitivity = "standard"
	SensitivityAdvanced Sensitivity = "advanced"
)

// Alpha returns the exponential smoothing coefficient for the sensitivity
// mode. Unknown modes fall back to standard.
func (s Sensitivity) Alpha() float64 {
	switch s {
	case SensitivityBeginner:
		return 0.15
	case SensitivityAdvanced:
		return 0.40
	default:
		return 0.25
	}
}

// Valid reports whether s names a known sensitivity mode.
func (s Sensitivity) Valid() bool {
	switch s {
	case SensitivityBeginner, SensitivityStandard, SensitivityAdvanced:
		return true
	}
	return false
}

// SmootherParams contains parameters for the observation smoothing pipeline.
type SmootherParams struct {
	Alpha float64 `json:"alpha"` // exponential smoothing coefficient in (0, 1]
	A4    float64 `json:"a4"`    // reference pitch for A4 in Hz
}

// DefaultSmootherParams returns standard-sensitivity parameters at concert
// pitch.
func DefaultSmootherParams() SmootherParams {
	return SmootherParams{
		Alpha: SensitivityStandard.Alpha(),
		A4:    DefaultA4,
	}
}

const (
	outlierBufferLen     = 7
	outlierMinSamples    = 3
	outlierCentsLimit    = 200.0
	suspectConfirmFrames = 2
	suspectSemitoneBand  = 1.0

	onsetDbRise         = 6.0
	onsetCooldownFrames = 3

	medianFilterLen = 5

	// stable once the same note name persisted for more than this many
	// consecutive observations
	stableNoteRun = 6
)

// Smoother turns the raw per-hop estimator stream into stable musical
// observations. It rejects single-frame outliers, snaps on note onsets,
// median-filters and exponentially smooths sustained pitch, and tracks
// note stability.
//
// A Smoother is owned by the observation context; it must not be shared
// with the capture context.
type Smoother struct {
	alpha float64
	a4    float64

	outlier   []float64 // recent raw MIDI values for outlier rejection
	medianBuf []float64 // recent raw MIDI values for the median filter
	scratch   []float64

	smoothed    float64
	hasSmoothed bool

	lastDb    float64
	hasLastDb bool

	suspectMidi  float64
	suspectCount int

	onsetCooldown int

	lastNote int
	noteRun  int
}

// NewSmoother creates a smoothing pipeline with the given parameters.
// Out-of-range values fall back to the defaults.
func NewSmoother(params SmootherParams) *Smoother {
	if params.Alpha <= 0 || params.Alpha > 1 {
		params.Alpha = DefaultSmootherParams().Alpha
	}
	if params.A4 <= 0 {
		params.A4 = DefaultA4
	}
	return &Smoother{
		alpha:     params.Alpha,
		a4:        params.A4,
		outlier:   make([]float64, 0, outlierBufferLen),
		medianBuf: make([]float64, 0, medianFilterLen),
		scratch:   make([]float64, 0, outlierBufferLen),
	}
}

// Process consumes one estimator frame. It returns the resulting observation
// and true, or a zero observation and false when the frame is discarded as a
// yet-unconfirmed outlier (the previous output stands).
//
// Unvoiced frames (no pitch, or gate closed) yield a null observation with
// Voiced == false.
func (s *Smoother) Process(f Frame) (Observation, bool) {
	obs := Observation{
		Timestamp: f.Timestamp,
		Level:     f.RMSDb,
		GateOpen:  f.GateOpen,
	}

	if f.Frequency <= 0 || !f.GateOpen {
		// Gradual forgetting: one buffer slot per silent hop, so a short
		// dropout does not erase the pitch context.
		s.decayBuffers()
		s.noteRun = 0
		s.suspectCount = 0
		s.tickCooldown()
		s.rememberLevel(f.RMSDb)
		return obs, true
	}

	raw := FreqToMidi(f.Frequency, s.a4)

	suspectConfirmed := false
	if len(s.outlier) >= outlierMinSamples {
		med := s.median(s.outlier)
		if math.Abs(raw-med)*100.0 > outlierCentsLimit {
			// A large jump must repeat near itself before it is believed
			// to be a genuine note change.
			if s.suspectCount > 0 && math.Abs(raw-s.suspectMidi) <= suspectSemitoneBand {
				s.suspectCount++
			} else {
				s.suspectMidi = raw
				s.suspectCount = 1
			}
			if s.suspectCount < suspectConfirmFrames {
				s.tickCooldown()
				s.rememberLevel(f.RMSDb)
				return Observation{}, false
			}
			suspectConfirmed = true
			s.suspectCount = 0
		} else {
			s.suspectCount = 0
		}
	}

	s.push(&s.outlier, raw, outlierBufferLen)

	onset := suspectConfirmed
	if s.hasLastDb && f.RMSDb-s.lastDb > onsetDbRise {
		onset = true
	}

	if onset && s.onsetCooldown == 0 {
		// Snap straight to the raw value: fast attack on genuine note
		// changes. The median buffer restarts at the new note so it does
		// not drag the old pitch along.
		s.smoothed = raw
		s.hasSmoothed = true
		s.medianBuf = s.medianBuf[:0]
		s.push(&s.medianBuf, raw, medianFilterLen)
		s.onsetCooldown = onsetCooldownFrames
	} else {
		s.tickCooldown()
		s.push(&s.medianBuf, raw, medianFilterLen)
		med := s.median(s.medianBuf)
		if s.hasSmoothed {
			s.smoothed = s.alpha*med + (1.0-s.alpha)*s.smoothed
		} else {
			s.smoothed = med
			s.hasSmoothed = true
		}
	}

	note, cents := NearestNote(s.smoothed)
	if s.noteRun > 0 && note == s.lastNote {
		s.noteRun++
	} else {
		s.lastNote = note
		s.noteRun = 1
	}

	obs.Voiced = true
	obs.MidiFloat = s.smoothed
	obs.Frequency = MidiToFreq(s.smoothed, s.a4)
	obs.NoteName = NoteName(note)
	obs.Cents = cents
	obs.Stable = s.noteRun > stableNoteRun

	s.rememberLevel(f.RMSDb)
	return obs, true
}

// Reset clears all pipeline state for a new capture session.
func (s *Smoother) Reset() {
	s.outlier = s.outlier[:0]
	s.medianBuf = s.medianBuf[:0]
	s.smoothed = 0
	s.hasSmoothed = false
	s.lastDb = 0
	s.hasLastDb = false
	s.suspectMidi = 0
	s.suspectCount = 0
	s.onsetCooldown = 0
	s.lastNote = 0
	s.noteRun = 0
}

func (s *Smoother) rememberLevel(db float64) {
	s.lastDb = db
	s.hasLastDb = true
}

func (s *Smoother) tickCooldown() {
	if s.onsetCooldown > 0 {
		s.onsetCooldown--
	}
}

// decayBuffers drops the oldest slot from each buffer.
func (s *Smoother) decayBuffers() {
	if n := len(s.outlier); n > 0 {
		copy(s.outlier, s.outlier[1:])
		s.outlier = s.outlier[:n-1]
	}
	if n := len(s.medianBuf); n > 0 {
		copy(s.medianBuf, s.medianBuf[1:])
		s.medianBuf = s.medianBuf[:n-1]
	}
}

// push appends v to a bounded buffer, dropping the oldest value when full.
func (s *Smoother) push(buf *[]float64, v float64, limit int) {
	b := *buf
	if len(b) >= limit {
		copy(b, b[1:])
		b = b[:limit-1]
	}
	*buf = append(b, v)
}

func (s *Smoother) median(vals []float64) float64 {
	s.scratch = append(s.scratch[:0], vals...)
	sort.Float64s(s.scratch)

	n := len(s.scratch)
	if n%2 == 0 {
		return (s.scratch[n/2-1] + s.scratch[n/2]) / 2.0
	}
	return s.scratch[n/2]
}
