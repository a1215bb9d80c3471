package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreqToMidiReferencePoints(t *testing.T) {
	assert.InDelta(t, 69.0, FreqToMidi(440.0, DefaultA4), 1e-9)
	assert.InDelta(t, 81.0, FreqToMidi(880.0, DefaultA4), 1e-9)
	assert.InDelta(t, 57.0, FreqToMidi(220.0, DefaultA4), 1e-9)
	assert.InDelta(t, 60.0, FreqToMidi(261.6256, DefaultA4), 1e-3)
}

func TestMidiToFreqIsInverse(t *testing.T) {
	for _, midi := range []float64{36.0, 57.5, 60.0, 69.0, 69.37, 84.0, 96.0} {
		back := FreqToMidi(MidiToFreq(midi, DefaultA4), DefaultA4)
		assert.InDelta(t, midi, back, 1e-9)
	}
}

func TestAlternateReferencePitch(t *testing.T) {
	assert.InDelta(t, 69.0, FreqToMidi(432.0, 432.0), 1e-9)
	assert.InDelta(t, 432.0, MidiToFreq(69.0, 432.0), 1e-9)

	// the same frequency reads sharper against a lower reference
	assert.Greater(t, FreqToMidi(440.0, 432.0), 69.0)
}

func TestNoteName(t *testing.T) {
	cases := map[int]string{
		21:  "A0",
		59:  "B3",
		60:  "C4",
		61:  "C#4",
		69:  "A4",
		70:  "A#4",
		108: "C8",
	}
	for midi, want := range cases {
		assert.Equal(t, want, NoteName(midi), "midi %d", midi)
	}
}

func TestNearestNote(t *testing.T) {
	note, cents := NearestNote(69.0)
	assert.Equal(t, 69, note)
	assert.Equal(t, 0, cents)

	note, cents = NearestNote(69.3)
	assert.Equal(t, 69, note)
	assert.Equal(t, 30, cents)

	note, cents = NearestNote(68.7)
	assert.Equal(t, 69, note)
	assert.Equal(t, -30, cents)
}
