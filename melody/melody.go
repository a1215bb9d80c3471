// Package melody models the reference melody a performance is graded
// against: an ordered note list with pitch, duration and measure placement,
// plus tempo metadata.
package melody

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is one reference note. Beats is the duration expressed in the beat
// unit of the melody's time signature (e.g. eighth notes in 6/8).
type Note struct {
	Midi    int     `json:"midi"`
	Beats   float64 `json:"beats"`
	Measure int     `json:"measure"`
	Lyric   string  `json:"lyric,omitempty"`
}

// TimeSignature is a meter such as 4/4 or 6/8.
type TimeSignature struct {
	Beats int `json:"beats"` // numerator
	Unit  int `json:"unit"`  // denominator
}

// ParseTimeSignature parses a meter written as "N/D".
func ParseTimeSignature(s string) (TimeSignature, error) {
	num, denom, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("time signature %q is not of the form N/D", s)
	}

	beats, err := strconv.Atoi(num)
	if err != nil || beats <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature numerator %q", num)
	}
	unit, err := strconv.Atoi(denom)
	if err != nil || unit <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid time signature denominator %q", denom)
	}

	return TimeSignature{Beats: beats, Unit: unit}, nil
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Beats, ts.Unit)
}

// Compound reports whether the meter is compound (6/8, 9/8, 12/8, ...),
// where the felt beat is a dotted group of three subdivision units.
func (ts TimeSignature) Compound() bool {
	return ts.Unit >= 8 && ts.Beats > 3 && ts.Beats%3 == 0
}

// Melody is the reference a performance is graded against.
type Melody struct {
	Notes     []Note        `json:"notes"`
	Signature TimeSignature `json:"time_signature"`
	BPM       float64       `json:"bpm"`
}

// MsPerUnit returns the duration in milliseconds of one duration unit of the
// melody. In compound meters the BPM denotes the dotted beat (three
// subdivision units), so one unit is a third of it; in simple meters the BPM
// denotes the beat unit directly, whatever that unit is.
func (m Melody) MsPerUnit() float64 {
	if m.BPM <= 0 {
		return 0
	}
	msPerBeat := 60000.0 / m.BPM
	if m.Signature.Compound() {
		return msPerBeat / 3.0
	}
	return msPerBeat
}

// DefaultToleranceMs is the timing tolerance band around each expected note.
const DefaultToleranceMs = 200.0

// Window is the expected time slot of one reference note.
type Window struct {
	Note        Note    `json:"note"`
	Index       int     `json:"index"`
	StartMs     float64 `json:"start_ms"`
	DurationMs  float64 `json:"duration_ms"`
	ToleranceMs float64 `json:"tolerance_ms"`
}

// Windows derives the expected timing of every note with the default
// tolerance.
func (m Melody) Windows() []Window {
	return m.WindowsWithTolerance(DefaultToleranceMs)
}

// WindowsWithTolerance derives expected note windows by accumulating note
// durations at the melody's tempo.
func (m Melody) WindowsWithTolerance(toleranceMs float64) []Window {
	msPerUnit := m.MsPerUnit()
	windows := make([]Window, 0, len(m.Notes))

	startMs := 0.0
	for i, note := range m.Notes {
		durMs := note.Beats * msPerUnit
		windows = append(windows, Window{
			Note:        note,
			Index:       i,
			StartMs:     startMs,
			DurationMs:  durMs,
			ToleranceMs: toleranceMs,
		})
		startMs += durMs
	}
	return windows
}

// DurationMs returns the total expected length of the melody.
func (m Melody) DurationMs() float64 {
	total := 0.0
	for _, n := range m.Notes {
		total += n.Beats
	}
	return total * m.MsPerUnit()
}
