package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionerRemovesDCOffset(t *testing.T) {
	c, err := NewConditioner(44100)
	require.NoError(t, err)

	var out float64
	for i := 0; i < 44100; i++ {
		out = c.Process(0.5)
	}

	assert.InDelta(t, 0.0, out, 0.01)
}

func TestConditionerLocksGainAfterCalibration(t *testing.T) {
	c, err := NewConditioner(44100)
	require.NoError(t, err)

	// a quiet tone: the locked gain should bring its peak near the target
	var maxOut float64
	for i := 0; i < 44100; i++ {
		x := 0.05 * math.Sin(2.0*math.Pi*440.0*float64(i)/44100.0)
		out := c.Process(x)
		if i > 33075 { // measure the last quarter, well past calibration
			if a := math.Abs(out); a > maxOut {
				maxOut = a
			}
		}
	}

	assert.True(t, c.GainLocked())
	assert.InDelta(t, 16.0, c.Gain(), 2.0)
	assert.InDelta(t, 0.8, maxOut, 0.05)
}

func TestConditionerDoesNotLockOnSilence(t *testing.T) {
	c, err := NewConditioner(44100)
	require.NoError(t, err)

	for i := 0; i < 44100; i++ {
		c.Process(0.0)
	}

	assert.False(t, c.GainLocked())
	assert.Equal(t, 1.0, c.Gain())
}

func TestConditionerClampsToUnitRange(t *testing.T) {
	c, err := NewConditioner(44100)
	require.NoError(t, err)

	for i := 0; i < 44100; i++ {
		x := 2.0 * math.Sin(2.0*math.Pi*220.0*float64(i)/44100.0)
		out := c.Process(x)
		require.LessOrEqual(t, out, 1.0)
		require.GreaterOrEqual(t, out, -1.0)
	}
}

func TestConditionerResetRestartsCalibration(t *testing.T) {
	c, err := NewConditioner(44100)
	require.NoError(t, err)

	for i := 0; i < 44100; i++ {
		c.Process(0.05 * math.Sin(2.0*math.Pi*440.0*float64(i)/44100.0))
	}
	require.True(t, c.GainLocked())

	c.Reset()

	assert.False(t, c.GainLocked())
	assert.Equal(t, 1.0, c.Gain())
}

func TestNewConditionerRejectsBadSampleRate(t *testing.T) {
	_, err := NewConditioner(0)
	assert.Error(t, err)

	_, err = NewConditioner(-44100)
	assert.Error(t, err)
}
