package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBufferFirstFrame(t *testing.T) {
	fb, err := NewFrameBuffer(8, 4)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		assert.False(t, fb.Push(float64(i)), "sample %d", i)
	}
	assert.True(t, fb.Push(7.0))

	frame := make([]float64, 8)
	require.NoError(t, fb.Frame(frame))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, frame)
}

func TestFrameBufferHopAdvance(t *testing.T) {
	fb, err := NewFrameBuffer(8, 4)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		fb.Push(float64(i))
	}

	assert.False(t, fb.Push(8.0))
	assert.False(t, fb.Push(9.0))
	assert.False(t, fb.Push(10.0))
	assert.True(t, fb.Push(11.0))

	frame := make([]float64, 8)
	require.NoError(t, fb.Frame(frame))
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9, 10, 11}, frame)
	assert.Equal(t, int64(12), fb.Total())
}

func TestFrameBufferErrors(t *testing.T) {
	fb, err := NewFrameBuffer(8, 4)
	require.NoError(t, err)

	assert.Error(t, fb.Frame(make([]float64, 4)), "wrong destination length")
	assert.Error(t, fb.Frame(make([]float64, 8)), "not yet filled")
}

func TestNewFrameBufferValidation(t *testing.T) {
	_, err := NewFrameBuffer(0, 4)
	assert.Error(t, err)

	_, err = NewFrameBuffer(8, 0)
	assert.Error(t, err)

	_, err = NewFrameBuffer(8, 8)
	assert.Error(t, err, "hop must be smaller than frame")
}

func TestFrameBufferReset(t *testing.T) {
	fb, err := NewFrameBuffer(8, 4)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		fb.Push(float64(i))
	}
	fb.Reset()

	assert.Equal(t, int64(0), fb.Total())
	assert.Error(t, fb.Frame(make([]float64, 8)))

	for i := 0; i < 7; i++ {
		assert.False(t, fb.Push(1.0))
	}
	assert.True(t, fb.Push(1.0))
}
