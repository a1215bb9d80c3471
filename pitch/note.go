// Package pitch maps detected fundamental frequencies onto the musical
// scale and smooths the raw per-hop estimates into a stable observation
// stream.
package pitch

import "math"

// DefaultA4 is the standard concert pitch reference in Hz.
const DefaultA4 = 440.0

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FreqToMidi converts a frequency in Hz to a continuous MIDI note value
// using the given A4 reference. MIDI 69 corresponds to A4.
func FreqToMidi(freq, a4 float64) float64 {
	return 69.0 + 12.0*math.Log2(freq/a4)
}

// MidiToFreq converts a continuous MIDI note value back to Hz. It is the
// exact inverse of FreqToMidi up to floating-point precision.
func MidiToFreq(midi, a4 float64) float64 {
	return a4 * math.Exp2((midi-69.0)/12.0)
}

// NoteName returns the scientific pitch name of an integer MIDI note,
// e.g. NoteName(69) == "A4".
func NoteName(midi int) string {
	name := noteNames[((midi%12)+12)%12]
	octave := midi/12 - 1
	return name + itoa(octave)
}

// NearestNote rounds a continuous MIDI value to the nearest note and returns
// the signed offset from it in cents.
func NearestNote(midi float64) (note int, cents int) {
	note = int(math.Round(midi))
	cents = int(math.Round((midi - float64(note)) * 100.0))
	return note, cents
}

// itoa avoids pulling strconv into the per-hop path for the tiny octave
// numbers that occur in practice.
func itoa(n int) string {
	switch {
	case n < 0:
		return "-" + itoa(-n)
	case n < 10:
		return string(rune('0' + n))
	default:
		return itoa(n/10) + string(rune('0'+n%10))
	}
}
