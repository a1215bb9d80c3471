package dsp

import (
	"fmt"
	"math"
)

// HighPassFilter implements a 2nd-order Butterworth high-pass filter using
// biquad topology.
//
// Coefficients follow the cookbook formulas from Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type HighPassFilter struct {
	sampleRate int
	cutoffFreq float64
	qFactor    float64

	// Biquad coefficients
	b0, b1, b2 float64
	a1, a2     float64

	// State variables for direct form II implementation
	w1, w2 float64
}

// ButterworthQ is the quality factor of a maximally flat 2nd-order section.
const ButterworthQ = math.Sqrt2 / 2

// NewHighPassFilter creates a Butterworth high-pass filter.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - cutoffFreq: -3dB cutoff frequency in Hz
func NewHighPassFilter(sampleRate int, cutoffFreq float64) (*HighPassFilter, error) {
	return NewHighPassFilterWithQ(sampleRate, cutoffFreq, ButterworthQ)
}

// NewHighPassFilterWithQ creates a high-pass filter with explicit Q factor.
func NewHighPassFilterWithQ(sampleRate int, cutoffFreq, qFactor float64) (*HighPassFilter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("cutoff frequency must be between 0 and Nyquist frequency (%d Hz)", sampleRate/2)
	}
	if qFactor <= 0 {
		return nil, fmt.Errorf("Q factor must be positive")
	}

	hp := &HighPassFilter{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		qFactor:    qFactor,
	}

	hp.computeCoefficients()
	return hp, nil
}

// computeCoefficients calculates the biquad coefficients using the cookbook formula.
// Coefficients are cached until the sample rate or cutoff changes.
func (hp *HighPassFilter) computeCoefficients() {
	// Normalize frequency: w0 = 2*pi*f0/Fs
	w0 := 2.0 * math.Pi * hp.cutoffFreq / float64(hp.sampleRate)

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	// Alpha parameter: alpha = sin(w0)/(2*Q)
	alpha := sinW0 / (2.0 * hp.qFactor)

	// High-pass coefficients (cookbook formula)
	b0 := (1.0 + cosW0) / 2.0
	b1 := -(1.0 + cosW0)
	b2 := (1.0 + cosW0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosW0
	a2 := 1.0 - alpha

	// Normalize by a0 for direct form II implementation
	hp.b0 = b0 / a0
	hp.b1 = b1 / a0
	hp.b2 = b2 / a0
	hp.a1 = a1 / a0
	hp.a2 = a2 / a0
}

// Process applies the filter to a single sample.
// Uses Direct Form II biquad implementation for numerical stability.
func (hp *HighPassFilter) Process(input float64) float64 {
	// w[n] = x[n] - a1*w[n-1] - a2*w[n-2]
	w := input - hp.a1*hp.w1 - hp.a2*hp.w2

	// y[n] = b0*w[n] + b1*w[n-1] + b2*w[n-2]
	output := hp.b0*w + hp.b1*hp.w1 + hp.b2*hp.w2

	hp.w2 = hp.w1
	hp.w1 = w

	return output
}

// Reset clears the filter's internal state (delay line).
// Call this when processing discontinuous audio segments.
func (hp *HighPassFilter) Reset() {
	hp.w1, hp.w2 = 0.0, 0.0
}

// SetSampleRate updates the sample rate, recomputes the cached coefficients
// and resets the delay line.
func (hp *HighPassFilter) SetSampleRate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if hp.cutoffFreq >= float64(sampleRate)/2 {
		return fmt.Errorf("cutoff %g Hz is above Nyquist for %d Hz", hp.cutoffFreq, sampleRate)
	}

	hp.sampleRate = sampleRate
	hp.computeCoefficients()
	hp.Reset()
	return nil
}

// GetCoefficients returns the normalized biquad coefficients.
func (hp *HighPassFilter) GetCoefficients() (b0, b1, b2, a1, a2 float64) {
	return hp.b0, hp.b1, hp.b2, hp.a1, hp.a2
}
