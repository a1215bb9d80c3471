package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// NoPitchFrequency is the sentinel frequency reported when a frame contains
// no detectable fundamental. It is the defined "no pitch" result, not an
// error condition.
const NoPitchFrequency = -1.0

// YinParams contains parameters for the YIN fundamental frequency estimator.
type YinParams struct {
	SampleRate int     `json:"sample_rate"`
	FrameSize  int     `json:"frame_size"`
	Threshold  float64 `json:"threshold"` // absolute threshold on the normalized difference (lower = stricter)
	MinFreq    float64 `json:"min_freq"`  // Hz
	MaxFreq    float64 `json:"max_freq"`  // Hz

	// UseFFT selects the FFT-accelerated difference function. The direct
	// time-domain path allocates nothing per call and is preferred inside
	// real-time capture callbacks.
	UseFFT bool `json:"use_fft"`
}

// DefaultYinParams returns parameters tuned for singing voice capture.
func DefaultYinParams(sampleRate int) YinParams {
	return YinParams{
		SampleRate: sampleRate,
		FrameSize:  2048,
		Threshold:  0.12,
		MinFreq:    65.0,   // C2, low bass
		MaxFreq:    1100.0, // above soprano C6
	}
}

// YinEstimator implements the YIN fundamental frequency estimation algorithm
// with cumulative-mean normalization and parabolic refinement.
//
// References:
//   - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency
//     estimator for speech and music"
//
// The estimator owns preallocated work buffers and is not safe for
// concurrent use.
type YinEstimator struct {
	params   YinParams
	halfSize int

	tauMax int

	diff   []float64
	cmndf  []float64
	prefix []float64
	padded []float64
	half   []float64
}

// NewYinEstimator creates a YIN estimator with the given parameters.
func NewYinEstimator(params YinParams) (*YinEstimator, error) {
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", params.SampleRate)
	}
	if params.FrameSize < 4 || params.FrameSize%2 != 0 {
		return nil, fmt.Errorf("frame size must be an even number >= 4, got %d", params.FrameSize)
	}
	if params.Threshold <= 0 || params.Threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1), got %g", params.Threshold)
	}
	if params.MinFreq <= 0 || params.MaxFreq <= params.MinFreq {
		return nil, fmt.Errorf("invalid frequency range [%g, %g]", params.MinFreq, params.MaxFreq)
	}

	halfSize := params.FrameSize / 2
	sr := float64(params.SampleRate)

	lagAtMaxFreq := int(math.Floor(sr / params.MaxFreq))
	if lagAtMaxFreq < 2 {
		lagAtMaxFreq = 2
	}
	tauMax := int(math.Floor(sr / params.MinFreq))
	if tauMax > halfSize {
		tauMax = halfSize
	}
	if lagAtMaxFreq >= tauMax {
		minDetectable := sr / float64(halfSize)
		return nil, fmt.Errorf("frequency range [%g, %g] not resolvable at frame size %d (min detectable %.2f Hz)",
			params.MinFreq, params.MaxFreq, params.FrameSize, minDetectable)
	}

	return &YinEstimator{
		params:   params,
		halfSize: halfSize,
		tauMax:   tauMax,
		diff:     make([]float64, halfSize),
		cmndf:    make([]float64, halfSize),
		prefix:   make([]float64, params.FrameSize+1),
		padded:   make([]float64, 2*params.FrameSize),
		half:     make([]float64, 2*params.FrameSize),
	}, nil
}

// Params returns the estimator parameters.
func (y *YinEstimator) Params() YinParams {
	return y.params
}

// Estimate returns the fundamental frequency of the frame in Hz and a
// confidence in [0, 1]. When no lag crosses the threshold, or the refined
// frequency falls outside the configured range, it returns
// (NoPitchFrequency, 0). The frame must have length FrameSize; shorter or
// longer frames yield the no-pitch sentinel.
func (y *YinEstimator) Estimate(frame []float64) (frequency, confidence float64) {
	if len(frame) != y.params.FrameSize {
		return NoPitchFrequency, 0
	}

	if y.params.UseFFT {
		y.differenceFFT(frame)
	} else {
		y.differenceDirect(frame)
	}

	// Cumulative-mean normalization. The running sum starts at tau=1: d[0]
	// is always zero and must never enter the divisor.
	y.cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < y.halfSize; tau++ {
		runningSum += y.diff[tau]
		if runningSum > 0 {
			y.cmndf[tau] = y.diff[tau] * float64(tau) / runningSum
		} else {
			y.cmndf[tau] = 1.0
		}
	}

	// Absolute threshold search: first dip below the threshold, then walk
	// down to its local minimum so we do not lock onto the leading edge.
	// Scanning starts at lag 2 so that an above-range tone lands on its
	// true period and fails the final range check, instead of being picked
	// up at an in-range subharmonic lag.
	best := -1
	for tau := 2; tau < y.tauMax; tau++ {
		if y.cmndf[tau] < y.params.Threshold {
			for tau+1 < y.tauMax && y.cmndf[tau+1] < y.cmndf[tau] {
				tau++
			}
			best = tau
			break
		}
	}
	if best < 0 {
		return NoPitchFrequency, 0
	}

	refined := float64(best) + y.parabolicAdjustment(best)

	frequency = float64(y.params.SampleRate) / refined
	confidence = 1.0 - y.cmndf[best]

	if frequency < y.params.MinFreq || frequency > y.params.MaxFreq {
		return NoPitchFrequency, 0
	}
	return frequency, confidence
}

// parabolicAdjustment interpolates a sub-lag offset in (-1, 1) from the
// normalized difference values around tau. Degenerate parabolas and
// adjustments of a full lag or more are rejected.
func (y *YinEstimator) parabolicAdjustment(tau int) float64 {
	if tau <= 0 || tau+1 >= y.halfSize {
		return 0
	}

	y1 := y.cmndf[tau-1]
	y2 := y.cmndf[tau]
	y3 := y.cmndf[tau+1]

	denom := y1 - 2*y2 + y3
	if denom == 0 {
		return 0
	}

	adj := (y1 - y3) / (2 * denom)
	if math.Abs(adj) >= 1 {
		return 0
	}
	return adj
}

// differenceDirect computes the squared-difference function in the time
// domain: d[tau] = sum_j (x[j] - x[j+tau])^2 for j < halfSize.
func (y *YinEstimator) differenceDirect(frame []float64) {
	for tau := 0; tau < y.halfSize; tau++ {
		sum := 0.0
		for j := 0; j < y.halfSize; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		y.diff[tau] = sum
	}
}

// differenceFFT computes the same difference function via the
// autocorrelation identity d[tau] = p(0) + p(tau) - 2*cross(tau), with the
// windowed cross term obtained by correlating the frame against its first
// half in the frequency domain.
func (y *YinEstimator) differenceFFT(frame []float64) {
	n := y.params.FrameSize

	y.prefix[0] = 0
	for i, v := range frame {
		y.prefix[i+1] = y.prefix[i] + v*v
	}

	copy(y.padded, frame)
	for i := n; i < len(y.padded); i++ {
		y.padded[i] = 0
	}
	copy(y.half, frame[:y.halfSize])
	for i := y.halfSize; i < len(y.half); i++ {
		y.half[i] = 0
	}

	specFrame := fft.FFTReal(y.padded)
	specHalf := fft.FFTReal(y.half)
	for i := range specFrame {
		specFrame[i] *= cmplx.Conj(specHalf[i])
	}
	corr := fft.IFFT(specFrame)

	p0 := y.prefix[y.halfSize]
	for tau := 0; tau < y.halfSize; tau++ {
		pTau := y.prefix[tau+y.halfSize] - y.prefix[tau]
		d := p0 + pTau - 2*real(corr[tau])
		if d < 0 {
			// round-off from the transform
			d = 0
		}
		y.diff[tau] = d
	}
}
