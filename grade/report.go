// Package grade scores a captured pitch history against a reference melody,
// producing pitch, rhythm and stability scores plus rule-based diagnostics.
package grade

// MatchResult records how one reference note was met by the performance.
type MatchResult struct {
	Matched     bool    `json:"matched"`
	CentsOff    float64 `json:"cents_off"`
	TimingOffMs float64 `json:"timing_off_ms"`
	Sharp       bool    `json:"sharp"`
	Flat        bool    `json:"flat"`
	Early       bool    `json:"early"`
	Late        bool    `json:"late"`
}

// Summary aggregates the per-note match results.
type Summary struct {
	TotalNotes     int     `json:"total_notes"`
	MatchedNotes   int     `json:"matched_notes"`
	AvgCentsOff    float64 `json:"avg_cents_off"`     // mean absolute, matched notes only
	AvgTimingOffMs float64 `json:"avg_timing_off_ms"` // mean absolute, matched notes only
}

// TempoPoint is one entry of the per-measure effective-tempo series.
type TempoPoint struct {
	Measure int     `json:"measure"`
	BPM     float64 `json:"bpm"`
}

// PitchPoint is one entry of the per-note pitch accuracy series.
type PitchPoint struct {
	Index    int     `json:"index"`
	Midi     int     `json:"midi"`
	CentsOff float64 `json:"cents_off"`
	Matched  bool    `json:"matched"`
}

// Report is the final grading output. It is immutable once produced.
type Report struct {
	PitchScore      float64 `json:"pitch_score"`
	RhythmScore     float64 `json:"rhythm_score"`
	StabilityScore  float64 `json:"stability_score"`
	LeadershipScore float64 `json:"leadership_score"`

	Diagnostics []string `json:"diagnostics"`

	TempoSeries []TempoPoint  `json:"tempo_series"`
	PitchSeries []PitchPoint  `json:"pitch_series"`
	Matches     []MatchResult `json:"matches"`

	Summary Summary `json:"summary"`
}
