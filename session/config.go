package session

import (
	"fmt"

	"github.com/intune-audio/intune/pitch"
)

// VocalRange selects a frequency-range preset for the estimator.
type VocalRange string

const (
	RangeFull    VocalRange = "full"
	RangeBass    VocalRange = "bass"
	RangeTenor   VocalRange = "tenor"
	RangeAlto    VocalRange = "alto"
	RangeSoprano VocalRange = "soprano"
)

// Config contains the knobs consumed at session initialization.
type Config struct {
	SampleRate int `json:"sample_rate"`
	FrameSize  int `json:"frame_size"`
	HopSize    int `json:"hop_size"`

	YinThreshold float64 `json:"yin_threshold"`
	MinFreq      float64 `json:"min_freq"`
	MaxFreq      float64 `json:"max_freq"`

	// UseFFTEstimator selects the FFT-accelerated difference function.
	// Offline analysis turns it on; live capture keeps the allocation-free
	// time-domain path.
	UseFFTEstimator bool `json:"use_fft_estimator"`

	Sensitivity pitch.Sensitivity `json:"sensitivity"`
	ReferenceA4 float64           `json:"reference_a4"`
}

// DefaultConfig returns the configuration used for typical voice capture.
func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		FrameSize:    2048,
		HopSize:      512,
		YinThreshold: 0.12,
		MinFreq:      65.0,
		MaxFreq:      1100.0,
		Sensitivity:  pitch.SensitivityStandard,
		ReferenceA4:  pitch.DefaultA4,
	}
}

// WithVocalRange narrows the frequency range to a vocal-range preset.
func (c Config) WithVocalRange(r VocalRange) Config {
	switch r {
	case RangeBass:
		c.MinFreq, c.MaxFreq = 65.0, 350.0
	case RangeTenor:
		c.MinFreq, c.MaxFreq = 90.0, 530.0
	case RangeAlto:
		c.MinFreq, c.MaxFreq = 130.0, 700.0
	case RangeSoprano:
		c.MinFreq, c.MaxFreq = 175.0, 1100.0
	case RangeFull, "":
		c.MinFreq, c.MaxFreq = 65.0, 1100.0
	}
	return c
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameSize < 4 || c.FrameSize%2 != 0 {
		return fmt.Errorf("frame size must be an even number >= 4, got %d", c.FrameSize)
	}
	if c.HopSize <= 0 || c.HopSize >= c.FrameSize {
		return fmt.Errorf("hop size must be in (0, frame size), got %d", c.HopSize)
	}
	if c.YinThreshold <= 0 || c.YinThreshold >= 1 {
		return fmt.Errorf("YIN threshold must be in (0, 1), got %g", c.YinThreshold)
	}
	if c.MinFreq <= 0 || c.MaxFreq <= c.MinFreq {
		return fmt.Errorf("invalid frequency range [%g, %g]", c.MinFreq, c.MaxFreq)
	}
	if c.Sensitivity != "" && !c.Sensitivity.Valid() {
		return fmt.Errorf("unknown sensitivity mode %q", c.Sensitivity)
	}
	if c.ReferenceA4 <= 0 {
		return fmt.Errorf("reference A4 must be positive, got %g", c.ReferenceA4)
	}
	return nil
}
