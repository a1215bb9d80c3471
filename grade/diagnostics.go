package grade

import "math"

// aggregate holds the statistics the diagnostic rules are evaluated against.
type aggregate struct {
	hitRate float64
	matched int

	sharpFrac float64
	flatFrac  float64
	earlyFrac float64
	lateFrac  float64

	// second-half minus first-half averages over the matched notes
	centsDrift  float64
	timingDrift float64
}

// Tendency and drift rule thresholds.
const (
	tendencyFrac  = 0.4
	centsDriftMax = 15.0
	timingDriftMs = 50.0
)

// diagnose runs the ordered rule list. Every firing rule contributes its
// message, at most one per category; when nothing fires the positive default
// is emitted.
func diagnose(agg aggregate) []string {
	var msgs []string

	// accuracy band
	switch {
	case agg.hitRate >= 0.9:
		msgs = append(msgs, "Excellent accuracy — you matched nearly every note.")
	case agg.hitRate >= 0.7:
		msgs = append(msgs, "Good accuracy — most notes were on target.")
	case agg.hitRate >= 0.4:
		msgs = append(msgs, "Fair accuracy — keep practicing the tricky passages.")
	default:
		msgs = append(msgs, "Many notes were missed — try slowing the tempo down.")
	}

	// intonation tendency
	if agg.sharpFrac > tendencyFrac && agg.sharpFrac >= agg.flatFrac {
		msgs = append(msgs, "You tend to sing sharp — relax and aim into the center of each note.")
	} else if agg.flatFrac > tendencyFrac {
		msgs = append(msgs, "You tend to sing flat — support the tone and aim a touch higher.")
	}

	// timing tendency
	if agg.earlyFrac > tendencyFrac && agg.earlyFrac >= agg.lateFrac {
		msgs = append(msgs, "You often come in early — let the beat arrive before you do.")
	} else if agg.lateFrac > tendencyFrac {
		msgs = append(msgs, "You often come in late — anticipate each entry a little more.")
	}

	// drift between halves
	if math.Abs(agg.centsDrift) > centsDriftMax {
		msgs = append(msgs, "Your pitch drifts toward the end — stay anchored as the song goes on.")
	}
	if math.Abs(agg.timingDrift) > timingDriftMs {
		msgs = append(msgs, "Your tempo drifts toward the end — keep a steady pulse through the final measures.")
	}

	if len(msgs) == 0 {
		msgs = append(msgs, "Nice work — keep singing!")
	}
	return msgs
}
