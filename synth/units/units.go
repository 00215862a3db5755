package units

import (
	"math"

	approx "github.com/meko-christian/algo-approx"
)

// MinTimecents is the SF2 sentinel for an instantaneous segment.
const MinTimecents = -32767

// DBSilence is the attenuation in dB at which output is treated as silent.
const DBSilence = 100.0

// SmoothingFactor is the per-sample exponential smoothing weight at
// 44.1 kHz shared by attenuation and cutoff smoothing.
const SmoothingFactor = 0.01

const (
	gainTableMinCb = -2000 // +200 dB of gain
	gainTableMaxCb = 1000  // 100 dB of attenuation
	ln2Over1200    = math.Ln2 / 1200
)

var gainTable = buildGainTable()

func buildGainTable() []float64 {
	t := make([]float64, gainTableMaxCb-gainTableMinCb+1)
	for i := range t {
		cb := float64(i + gainTableMinCb)
		t[i] = math.Pow(10, -cb/200)
	}
	return t
}

// TimecentsToSeconds converts timecents to seconds. Values at or below
// MinTimecents map to zero.
func TimecentsToSeconds(tc float64) float64 {
	if tc <= MinTimecents {
		return 0
	}
	return math.Pow(2, tc/1200)
}

// TimecentsToSamples converts timecents to a whole number of samples at
// the given rate.
func TimecentsToSamples(tc, sampleRate float64) float64 {
	return math.Floor(TimecentsToSeconds(tc) * sampleRate)
}

// AbsCentsToHz converts absolute cents to Hz.
func AbsCentsToHz(cents float64) float64 {
	return 440 * math.Pow(2, (cents-6900)/1200)
}

// AbsCentsToHzFast is AbsCentsToHz using a polynomial exp approximation.
// Accurate to a few cents, enough for LFO rates and cutoffs that
// are recomputed once per block.
func AbsCentsToHzFast(cents float64) float64 {
	return 440 * float64(approx.FastExp(float32((cents-6900)*ln2Over1200)))
}

// CentsToRatio converts a relative pitch offset in cents to a frequency
// ratio.
func CentsToRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}

// DecibelAttenuationToGain converts an attenuation in dB to linear gain.
// Attenuations at or beyond DBSilence return exactly zero. Negative values
// amplify.
func DecibelAttenuationToGain(db float64) float64 {
	if db >= DBSilence {
		return 0
	}
	x := db*10 - gainTableMinCb
	if x <= 0 {
		return gainTable[0]
	}
	i := int(x)
	frac := x - float64(i)
	return gainTable[i] + (gainTable[i+1]-gainTable[i])*frac
}

// CentibelAttenuationToGain is DecibelAttenuationToGain in centibels.
func CentibelAttenuationToGain(cb float64) float64 {
	return DecibelAttenuationToGain(cb / 10)
}

// GainToDecibelAttenuation is the inverse of DecibelAttenuationToGain
// without the lookup table. Zero gain maps to DBSilence.
func GainToDecibelAttenuation(gain float64) float64 {
	if gain <= 0 {
		return DBSilence
	}
	return -20 * math.Log10(gain)
}

// SmoothingCoefficient returns SmoothingFactor scaled to sampleRate so the
// smoothing time constant does not depend on the rate.
func SmoothingCoefficient(sampleRate float64) float64 {
	return math.Min(1, SmoothingFactor*44100/sampleRate)
}

// BlockSmoothingCoefficient returns the weight that applies n samples of
// per-sample smoothing at once.
func BlockSmoothingCoefficient(sampleRate float64, n int) float64 {
	return 1 - math.Pow(1-SmoothingCoefficient(sampleRate), float64(n))
}

// Concave evaluates the SF2 concave controller curve for x in [0, 1].
func Concave(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	v := -200.0 / 960 * math.Log(1-x) / math.Ln10
	return math.Min(v, 1)
}

// Convex evaluates the SF2 convex controller curve for x in [0, 1]. It is
// the point reflection of Concave.
func Convex(x float64) float64 {
	return 1 - Concave(1-x)
}
