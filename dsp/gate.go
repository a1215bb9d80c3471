package dsp

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Gate decides whether a frame contains voiced signal worth analyzing.
//
// The gate calibrates a noise floor from the first calibrationFrames frames
// of the capture (about one second at the default hop rate), then applies
// asymmetric hysteresis: it opens after a few consecutive frames clearly
// above the noise, and closes only after a longer run of quiet frames. The
// asymmetry opens fast on attacks and avoids chattering on sustained tones
// with vibrato dips.
type Gate struct {
	calibrationFrames int
	calibration       []float64

	calibrated   bool
	noiseFloorDb float64
	silenceDb    float64
	voiceDb      float64

	framesAbove int
	framesBelow int
	open        bool

	onCalibrated func(noiseFloorDb float64)
}

const (
	// DefaultCalibrationFrames is about 1 s of frames at a 512-sample hop
	// and 44.1 kHz.
	DefaultCalibrationFrames = 86

	// The 20th percentile of calibration RMS-dB excludes pure-silence
	// outliers from the floor estimate.
	noiseFloorQuantile = 0.20

	silenceMarginDb = 6.0
	voiceMarginDb   = 12.0

	framesToOpen  = 3
	framesToClose = 5
)

// NewGate creates a gate with the default calibration length.
func NewGate() *Gate {
	return NewGateWithCalibration(DefaultCalibrationFrames)
}

// NewGateWithCalibration creates a gate that calibrates over the given
// number of frames.
func NewGateWithCalibration(frames int) *Gate {
	if frames < 1 {
		frames = 1
	}
	return &Gate{
		calibrationFrames: frames,
		calibration:       make([]float64, 0, frames),
	}
}

// OnCalibrated registers a callback invoked once when calibration completes.
func (g *Gate) OnCalibrated(fn func(noiseFloorDb float64)) {
	g.onCalibrated = fn
}

// Update feeds one frame's RMS level in dB and returns whether the gate is
// open. The gate stays closed while calibrating.
func (g *Gate) Update(rmsDb float64) bool {
	if !g.calibrated {
		g.calibration = append(g.calibration, rmsDb)
		if len(g.calibration) >= g.calibrationFrames {
			g.finishCalibration()
		}
		return false
	}

	if !g.open {
		if rmsDb > g.voiceDb {
			g.framesAbove++
			if g.framesAbove >= framesToOpen {
				g.open = true
				g.framesAbove = 0
				g.framesBelow = 0
			}
		} else {
			g.framesAbove = 0
		}
	} else {
		if rmsDb < g.silenceDb {
			g.framesBelow++
			if g.framesBelow >= framesToClose {
				g.open = false
				g.framesAbove = 0
				g.framesBelow = 0
			}
		} else {
			g.framesBelow = 0
		}
	}

	return g.open
}

func (g *Gate) finishCalibration() {
	sorted := make([]float64, len(g.calibration))
	copy(sorted, g.calibration)
	sort.Float64s(sorted)

	g.noiseFloorDb = stat.Quantile(noiseFloorQuantile, stat.Empirical, sorted, nil)
	g.silenceDb = g.noiseFloorDb + silenceMarginDb
	g.voiceDb = g.noiseFloorDb + voiceMarginDb
	g.calibrated = true
	g.calibration = nil

	if g.onCalibrated != nil {
		g.onCalibrated(g.noiseFloorDb)
	}
}

// Open reports the current gate state.
func (g *Gate) Open() bool { return g.open }

// Calibrated reports whether the noise floor has been established.
func (g *Gate) Calibrated() bool { return g.calibrated }

// NoiseFloor returns the calibrated noise floor in dB.
func (g *Gate) NoiseFloor() float64 { return g.noiseFloorDb }

// Thresholds returns the derived silence and voice thresholds in dB.
func (g *Gate) Thresholds() (silenceDb, voiceDb float64) {
	return g.silenceDb, g.voiceDb
}

// Reset returns the gate to its uncalibrated initial state.
func (g *Gate) Reset() {
	g.calibration = make([]float64, 0, g.calibrationFrames)
	g.calibrated = false
	g.noiseFloorDb = 0
	g.silenceDb = 0
	g.voiceDb = 0
	g.framesAbove = 0
	g.framesBelow = 0
	g.open = false
}
