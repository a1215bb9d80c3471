package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voiced(freq, db, ts float64) Frame {
	return Frame{Frequency: freq, Confidence: 0.95, RMSDb: db, GateOpen: true, Timestamp: ts}
}

func feed(t *testing.T, s *Smoother, frames ...Frame) []Observation {
	t.Helper()
	var out []Observation
	for _, f := range frames {
		if obs, ok := s.Process(f); ok {
			out = append(out, obs)
		}
	}
	return out
}

func TestSmootherSteadyToneBecomesStable(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())

	var frames []Frame
	for i := 0; i < 10; i++ {
		frames = append(frames, voiced(440.0, -30.0, float64(i)*11.6))
	}
	out := feed(t, s, frames...)

	require.Len(t, out, 10)
	for i, obs := range out {
		assert.True(t, obs.Voiced, "frame %d", i)
		assert.Equal(t, "A4", obs.NoteName, "frame %d", i)
		assert.Equal(t, 0, obs.Cents, "frame %d", i)
	}
	assert.False(t, out[5].Stable, "six in a row is not yet stable")
	assert.True(t, out[6].Stable, "seventh consecutive observation is stable")
	assert.True(t, out[9].Stable)
}

func TestSmootherUnvoicedFrameYieldsNullObservation(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())

	obs, ok := s.Process(Frame{Frequency: -1.0, GateOpen: true, RMSDb: -80.0, Timestamp: 5.0})
	require.True(t, ok)
	assert.False(t, obs.Voiced)
	assert.Empty(t, obs.NoteName)
	assert.Equal(t, 5.0, obs.Timestamp)
	assert.Equal(t, -80.0, obs.Level)

	// a detected pitch behind a closed gate is still unvoiced
	obs, ok = s.Process(Frame{Frequency: 440.0, GateOpen: false, RMSDb: -80.0, Timestamp: 6.0})
	require.True(t, ok)
	assert.False(t, obs.Voiced)
}

func TestSmootherRejectsSingleOutlier(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())
	for i := 0; i < 5; i++ {
		_, ok := s.Process(voiced(440.0, -30.0, float64(i)))
		require.True(t, ok)
	}

	// one octave-error frame must be held back
	_, ok := s.Process(voiced(880.0, -30.0, 5.0))
	assert.False(t, ok)

	// the pitch context is untouched
	obs, ok := s.Process(voiced(440.0, -30.0, 6.0))
	require.True(t, ok)
	assert.Equal(t, "A4", obs.NoteName)

	// a second isolated outlier starts its own confirmation from scratch
	_, ok = s.Process(voiced(880.0, -30.0, 7.0))
	assert.False(t, ok)
}

func TestSmootherConfirmedJumpSnapsToNewNote(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())
	for i := 0; i < 5; i++ {
		s.Process(voiced(440.0, -30.0, float64(i)))
	}

	_, ok := s.Process(voiced(587.33, -30.0, 5.0))
	assert.False(t, ok, "first frame of the jump is suspect")

	obs, ok := s.Process(voiced(587.33, -30.0, 6.0))
	require.True(t, ok, "second consistent frame confirms the note change")
	assert.Equal(t, "D5", obs.NoteName)
	assert.Equal(t, 0, obs.Cents)
}

func TestSmootherOctaveJumpConfirmedSnaps(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())
	for i := 0; i < 5; i++ {
		s.Process(voiced(440.0, -30.0, float64(i)))
	}

	_, ok := s.Process(voiced(880.0, -30.0, 5.0))
	require.False(t, ok)

	// a full octave, confirmed on the second frame, snaps without a glide
	obs, ok := s.Process(voiced(880.0, -30.0, 6.0))
	require.True(t, ok)
	assert.Equal(t, "A5", obs.NoteName)
	assert.Equal(t, 0, obs.Cents)
}

func TestSmootherSnapsOnLevelRise(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())

	s.Process(voiced(440.0, -40.0, 0.0))

	// a 10 dB attack snaps straight to the new pitch, no smoothing lag
	obs, ok := s.Process(voiced(466.16, -30.0, 1.0))
	require.True(t, ok)
	assert.Equal(t, "A#4", obs.NoteName)
	assert.Equal(t, 0, obs.Cents)
}

func TestSmootherSmoothsSmallDeviations(t *testing.T) {
	s := NewSmoother(SmootherParams{Alpha: 0.25, A4: DefaultA4})
	for i := 0; i < 6; i++ {
		s.Process(voiced(440.0, -30.0, float64(i)))
	}

	// 30 cents sharp for one frame: the output moves only fractionally
	obs, ok := s.Process(voiced(447.65, -30.0, 6.0))
	require.True(t, ok)
	assert.Equal(t, "A4", obs.NoteName)
	assert.Less(t, obs.Cents, 15)
}

func TestSmootherResetClearsContext(t *testing.T) {
	s := NewSmoother(DefaultSmootherParams())
	for i := 0; i < 8; i++ {
		s.Process(voiced(440.0, -30.0, float64(i)))
	}

	s.Reset()

	// an octave jump right after reset is not an outlier: there is no context
	obs, ok := s.Process(voiced(880.0, -30.0, 8.0))
	require.True(t, ok)
	assert.Equal(t, "A5", obs.NoteName)
	assert.False(t, obs.Stable)
}

func TestSensitivityAlpha(t *testing.T) {
	assert.Equal(t, 0.15, SensitivityBeginner.Alpha())
	assert.Equal(t, 0.25, SensitivityStandard.Alpha())
	assert.Equal(t, 0.40, SensitivityAdvanced.Alpha())
	assert.Equal(t, 0.25, Sensitivity("bogus").Alpha(), "unknown modes fall back to standard")
}

func TestSensitivityValid(t *testing.T) {
	assert.True(t, SensitivityBeginner.Valid())
	assert.True(t, SensitivityStandard.Valid())
	assert.True(t, SensitivityAdvanced.Valid())
	assert.False(t, Sensitivity("expert").Valid())
	assert.False(t, Sensitivity("").Valid())
}
