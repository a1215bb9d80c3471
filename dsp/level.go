package dsp

import "math"

// MinDb is the level floor reported for silent frames, keeping dB math free
// of -Inf.
const MinDb = -100.0

// RMS calculates the root mean square of a frame.
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, v := range frame {
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(frame)))
}

// Db converts a linear RMS level to decibels relative to full scale,
// clamped at MinDb.
func Db(rms float64) float64 {
	if rms <= 0 {
		return MinDb
	}
	db := 20.0 * math.Log10(rms)
	if db < MinDb {
		return MinDb
	}
	return db
}
