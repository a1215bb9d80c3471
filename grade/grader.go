package grade

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/intune-audio/intune/melody"
	"github.com/intune-audio/intune/pitch"
)

// Matching and bucketing constants. These are inherited tuning values with
// no derivation; they are named here rather than inlined so they can be
// revisited in one place.
const (
	// MatchToleranceMs extends each expected note window on both sides
	// when collecting candidate observations.
	MatchToleranceMs = melody.DefaultToleranceMs

	// MatchSemitones is the maximum pitch distance for an observation to
	// count as a match for a reference note.
	MatchSemitones = 2.0

	// EarlyLateEdgeMs is the timing offset beyond which a matched note is
	// bucketed as early or late.
	EarlyLateEdgeMs = 100.0

	// SharpFlatCents is the cents offset beyond which a matched note is
	// bucketed as sharp or flat.
	SharpFlatCents = 20.0
)

const (
	minObservationsForStability = 10
	minMatchesForStability      = 3
	neutralStabilityFewObs      = 70.0
	neutralStabilityFewMatches  = 50.0

	pitchWeight     = 0.3
	rhythmWeight    = 0.4
	stabilityWeight = 0.3
)

// Grade scores a captured pitch history against a reference melody. It is a
// pure function of its inputs; empty inputs yield a zeroed report with a
// single explanatory diagnostic.
func Grade(history []pitch.Observation, mel melody.Melody) Report {
	if len(mel.Notes) == 0 {
		return Report{Diagnostics: []string{"The reference melody is empty — nothing to grade."}}
	}
	if len(history) == 0 {
		return Report{
			Diagnostics: []string{"No pitch was detected — check your microphone and try again."},
			Summary:     Summary{TotalNotes: len(mel.Notes)},
		}
	}

	windows := mel.WindowsWithTolerance(MatchToleranceMs)
	matches := matchWindows(history, windows)

	var (
		matched                  int
		absCents, absTiming      []float64
		signedCents, signedTimes []float64
		sharp, flat, early, late int
	)
	for _, m := range matches {
		if !m.Matched {
			continue
		}
		matched++
		absCents = append(absCents, math.Abs(m.CentsOff))
		absTiming = append(absTiming, math.Abs(m.TimingOffMs))
		signedCents = append(signedCents, m.CentsOff)
		signedTimes = append(signedTimes, m.TimingOffMs)
		if m.Sharp {
			sharp++
		}
		if m.Flat {
			flat++
		}
		if m.Early {
			early++
		}
		if m.Late {
			late++
		}
	}

	hitRate := float64(matched) / float64(len(windows))

	var avgAbsCents, avgAbsTiming float64
	if matched > 0 {
		avgAbsCents = stat.Mean(absCents, nil)
		avgAbsTiming = stat.Mean(absTiming, nil)
	}

	var pitchScore, rhythmScore float64
	if matched > 0 {
		pitchScore = hitRate*50.0 + math.Max(0, 100.0-avgAbsCents)/100.0*50.0
		rhythmScore = hitRate*40.0 + math.Max(0, 100.0-avgAbsTiming/3.0)/100.0*60.0
	}

	stabilityScore, stabilityNeutral := stabilityFrom(len(history), signedCents, signedTimes)

	// With a neutral stability fallback the composite is carried by the
	// informative scores alone, at their relative weights.
	var leadership float64
	if stabilityNeutral {
		leadership = (pitchWeight*pitchScore + rhythmWeight*rhythmScore) / (pitchWeight + rhythmWeight)
	} else {
		leadership = pitchWeight*pitchScore + rhythmWeight*rhythmScore + stabilityWeight*stabilityScore
	}

	agg := aggregate{
		hitRate:     hitRate,
		matched:     matched,
		sharpFrac:   frac(sharp, matched),
		flatFrac:    frac(flat, matched),
		earlyFrac:   frac(early, matched),
		lateFrac:    frac(late, matched),
		centsDrift:  halfDrift(signedCents),
		timingDrift: halfDrift(signedTimes),
	}

	return Report{
		PitchScore:      pitchScore,
		RhythmScore:     rhythmScore,
		StabilityScore:  stabilityScore,
		LeadershipScore: leadership,
		Diagnostics:     diagnose(agg),
		TempoSeries:     tempoSeries(windows, matches, mel.BPM),
		PitchSeries:     pitchSeries(windows, matches),
		Matches:         matches,
		Summary: Summary{
			TotalNotes:     len(windows),
			MatchedNotes:   matched,
			AvgCentsOff:    avgAbsCents,
			AvgTimingOffMs: avgAbsTiming,
		},
	}
}

// matchWindows picks, for every expected note window, the observation whose
// pitch lies closest to the expected one among those inside the widened
// window, and accepts it when within MatchSemitones.
func matchWindows(history []pitch.Observation, windows []melody.Window) []MatchResult {
	matches := make([]MatchResult, len(windows))

	for i, w := range windows {
		lo := w.StartMs - w.ToleranceMs
		hi := w.StartMs + w.DurationMs + w.ToleranceMs
		expected := float64(w.Note.Midi)

		bestDiff := math.Inf(1)
		var best pitch.Observation
		for _, obs := range history {
			if !obs.Voiced || obs.Timestamp < lo || obs.Timestamp > hi {
				continue
			}
			if d := math.Abs(obs.MidiFloat - expected); d < bestDiff {
				bestDiff = d
				best = obs
			}
		}

		if bestDiff > MatchSemitones {
			continue // zero-valued MatchResult, Matched == false
		}

		centsOff := (best.MidiFloat - expected) * 100.0
		timingOff := best.Timestamp - w.StartMs
		matches[i] = MatchResult{
			Matched:     true,
			CentsOff:    centsOff,
			TimingOffMs: timingOff,
			Sharp:       centsOff > SharpFlatCents,
			Flat:        centsOff < -SharpFlatCents,
			Early:       timingOff < -EarlyLateEdgeMs,
			Late:        timingOff > EarlyLateEdgeMs,
		}
	}
	return matches
}

// stabilityFrom computes the variance-based stability score, falling back to
// neutral values when there is not enough signal to judge.
func stabilityFrom(totalObservations int, signedCents, signedTimes []float64) (score float64, neutral bool) {
	if totalObservations < minObservationsForStability {
		return neutralStabilityFewObs, true
	}
	if len(signedCents) < minMatchesForStability {
		return neutralStabilityFewMatches, true
	}

	pitchStability := math.Max(0, 100.0-stat.Variance(signedCents, nil)/2.0)
	tempoStability := math.Max(0, 100.0-stat.Variance(signedTimes, nil)/50.0)
	return (pitchStability + tempoStability) / 2.0, false
}

// tempoSeries approximates the effective tempo per measure from the average
// timing offset of that measure's matched notes.
func tempoSeries(windows []melody.Window, matches []MatchResult, bpm float64) []TempoPoint {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	order := []int{}
	for i, w := range windows {
		if !matches[i].Matched {
			continue
		}
		m := w.Note.Measure
		if counts[m] == 0 {
			order = append(order, m)
		}
		sums[m] += matches[i].TimingOffMs
		counts[m]++
	}

	series := make([]TempoPoint, 0, len(order))
	for _, m := range order {
		avgTiming := sums[m] / float64(counts[m])
		series = append(series, TempoPoint{
			Measure: m,
			BPM:     bpm - avgTiming/50.0,
		})
	}
	return series
}

func pitchSeries(windows []melody.Window, matches []MatchResult) []PitchPoint {
	series := make([]PitchPoint, len(windows))
	for i, w := range windows {
		series[i] = PitchPoint{
			Index:    w.Index,
			Midi:     w.Note.Midi,
			CentsOff: matches[i].CentsOff,
			Matched:  matches[i].Matched,
		}
	}
	return series
}

// halfDrift returns the second-half average minus the first-half average of
// a series, or 0 when the series is too short to split.
func halfDrift(vals []float64) float64 {
	if len(vals) < 4 {
		return 0
	}
	mid := len(vals) / 2
	return stat.Mean(vals[mid:], nil) - stat.Mean(vals[:mid], nil)
}

func frac(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
