package dsp

import (
	"fmt"
	"math"
)

// Conditioner prepares raw microphone samples for pitch analysis. Each sample
// passes through, in order:
//
//  1. DC removal via an exponentially decaying running mean
//  2. 2nd-order Butterworth high-pass at 70 Hz (rumble and plosives)
//  3. Adaptive gain normalization calibrated during the first ~0.5 s
//  4. Hard clamp to [-1, 1]
//
// The Conditioner is owned by the capture context and must only be used from
// a single goroutine. Process performs no allocation.
type Conditioner struct {
	sampleRate int

	// DC removal state
	dcEstimate float64
	dcAlpha    float64

	// High-pass filter
	highpass *HighPassFilter

	// Adaptive gain state
	peak             float64
	peakDecay        float64
	gain             float64
	gainLocked       bool
	calibrationLeft  int
	calibrationTotal int
}

const (
	dcDecayAlpha       = 0.995
	highPassCutoffHz   = 70.0
	peakDecayPerSample = 0.9995
	gainTargetPeak     = 0.8
	gainCalibrationSec = 0.5
	minCalibrationPeak = 0.001
	maxGain            = 100.0
)

// NewConditioner creates a signal conditioner for the given sample rate.
func NewConditioner(sampleRate int) (*Conditioner, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	hp, err := NewHighPassFilter(sampleRate, highPassCutoffHz)
	if err != nil {
		return nil, fmt.Errorf("high-pass filter: %w", err)
	}

	calibration := int(gainCalibrationSec * float64(sampleRate))

	return &Conditioner{
		sampleRate:       sampleRate,
		dcAlpha:          dcDecayAlpha,
		highpass:         hp,
		peakDecay:        peakDecayPerSample,
		gain:             1.0,
		calibrationLeft:  calibration,
		calibrationTotal: calibration,
	}, nil
}

// Process conditions a single raw sample and returns the result in [-1, 1].
func (c *Conditioner) Process(raw float64) float64 {
	// Running-mean DC estimate: est = alpha*est + (1-alpha)*x
	c.dcEstimate = c.dcAlpha*c.dcEstimate + (1.0-c.dcAlpha)*raw
	x := raw - c.dcEstimate

	x = c.highpass.Process(x)

	// Decaying peak tracker feeds the gain calibration.
	c.peak *= c.peakDecay
	if a := math.Abs(x); a > c.peak {
		c.peak = a
	}

	if !c.gainLocked {
		if c.calibrationLeft > 0 {
			c.calibrationLeft--
		} else if c.peak > minCalibrationPeak {
			// Calibration window elapsed and we have seen real signal:
			// lock the gain for the rest of the capture session.
			g := gainTargetPeak / c.peak
			c.gain = math.Min(math.Max(g, 1.0), maxGain)
			c.gainLocked = true
		}
	}

	x *= c.gain

	if x > 1.0 {
		x = 1.0
	} else if x < -1.0 {
		x = -1.0
	}
	return x
}

// Gain returns the current normalization gain.
func (c *Conditioner) Gain() float64 {
	return c.gain
}

// GainLocked reports whether the calibration window has completed and the
// gain is fixed.
func (c *Conditioner) GainLocked() bool {
	return c.gainLocked
}

// SetSampleRate recomputes the filter coefficients for a new device rate and
// restarts gain calibration.
func (c *Conditioner) SetSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := c.highpass.SetSampleRate(sampleRate); err != nil {
		return err
	}

	c.sampleRate = sampleRate
	c.calibrationTotal = int(gainCalibrationSec * float64(sampleRate))
	c.Reset()
	return nil
}

// Reset clears all filter state and restarts gain calibration.
func (c *Conditioner) Reset() {
	c.dcEstimate = 0.0
	c.highpass.Reset()
	c.peak = 0.0
	c.gain = 1.0
	c.gainLocked = false
	c.calibrationLeft = c.calibrationTotal
}
