package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steadyStateRMS runs a sine through the filter and measures the output RMS
// over the second half, after the transient has settled.
func steadyStateRMS(t *testing.T, f *HighPassFilter, freq float64, sampleRate, n int) float64 {
	t.Helper()
	out := make([]float64, 0, n/2)
	for i := 0; i < n; i++ {
		y := f.Process(math.Sin(2.0 * math.Pi * freq * float64(i) / float64(sampleRate)))
		if i >= n/2 {
			out = append(out, y)
		}
	}
	return RMS(out)
}

func TestHighPassAttenuatesRumble(t *testing.T) {
	f, err := NewHighPassFilter(44100, 70.0)
	require.NoError(t, err)

	inputRMS := 1.0 / math.Sqrt2
	outputRMS := steadyStateRMS(t, f, 30.0, 44100, 44100)

	assert.Less(t, outputRMS, 0.3*inputRMS)
}

func TestHighPassPassesVoiceBand(t *testing.T) {
	f, err := NewHighPassFilter(44100, 70.0)
	require.NoError(t, err)

	inputRMS := 1.0 / math.Sqrt2
	outputRMS := steadyStateRMS(t, f, 300.0, 44100, 44100)

	assert.Greater(t, outputRMS, 0.9*inputRMS)
}

func TestHighPassResetClearsState(t *testing.T) {
	f, err := NewHighPassFilter(44100, 70.0)
	require.NoError(t, err)

	first := f.Process(1.0)
	f.Process(0.5)
	f.Reset()

	assert.Equal(t, first, f.Process(1.0))
}

func TestHighPassSetSampleRate(t *testing.T) {
	f, err := NewHighPassFilter(44100, 70.0)
	require.NoError(t, err)

	b0Before, _, _, _, _ := f.GetCoefficients()
	require.NoError(t, f.SetSampleRate(48000))
	b0After, _, _, _, _ := f.GetCoefficients()

	assert.NotEqual(t, b0Before, b0After)
	assert.Error(t, f.SetSampleRate(0))
}

func TestNewHighPassFilterValidation(t *testing.T) {
	_, err := NewHighPassFilter(0, 70.0)
	assert.Error(t, err)

	_, err = NewHighPassFilter(44100, 0)
	assert.Error(t, err)

	// cutoff at or above Nyquist
	_, err = NewHighPassFilter(44100, 22050)
	assert.Error(t, err)

	_, err = NewHighPassFilterWithQ(44100, 70.0, 0)
	assert.Error(t, err)
}
