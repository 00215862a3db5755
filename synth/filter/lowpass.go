package filter

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/units"
)

const (
	// BypassCents is the cutoff above which an unresonant filter is skipped.
	BypassCents = 13499

	recomputeCents = 1.0
)

// Lowpass is the per-voice filter state.
type Lowpass struct {
	sampleRate float64

	coeffs      Coefficients
	initialized bool
	active      bool

	// currentFc is the smoothed base cutoff in absolute cents.
	currentFc     float64
	lastCutoff    float64
	lastResonance float64

	d0, d1 float64
}

// NewLowpass returns a filter for sampleRate.
func NewLowpass(sampleRate float64) Lowpass {
	return Lowpass{sampleRate: sampleRate}
}

// Process filters buf in place. initialFc is the modulated base cutoff in
// absolute cents, excursion the LFO and envelope offset in cents, and
// resonanceCb the filter Q in centibels.
func (f *Lowpass) Process(buf []float32, initialFc, excursion, resonanceCb float64) {
	if len(buf) == 0 {
		return
	}
	if !f.initialized {
		f.currentFc = initialFc
		f.initialized = true
	} else {
		f.currentFc += (initialFc - f.currentFc) * units.BlockSmoothingCoefficient(f.sampleRate, len(buf))
	}

	cutoff := f.currentFc + excursion
	if cutoff > BypassCents && initialFc > BypassCents && resonanceCb <= 0 {
		f.active = false
		f.d0, f.d1 = 0, 0
		return
	}

	prev := f.coeffs
	ramp := false
	if !f.active || math.Abs(cutoff-f.lastCutoff) > recomputeCents || resonanceCb != f.lastResonance {
		f.coeffs = LowpassCoefficients(units.AbsCentsToHzFast(cutoff), resonanceCb, f.sampleRate)
		ramp = f.active
		f.lastCutoff = cutoff
		f.lastResonance = resonanceCb
	}
	f.active = true

	if ramp {
		f.processRamp(buf, prev)
		return
	}
	c := f.coeffs
	d0, d1 := f.d0, f.d1
	for i, s := range buf {
		x := float64(s)
		y := c.B0*x + d0
		d0 = c.B1*x - c.A1*y + d1
		d1 = c.B2*x - c.A2*y
		buf[i] = float32(y)
	}
	f.store(buf, d0, d1)
}

func (f *Lowpass) processRamp(buf []float32, from Coefficients) {
	n := float64(len(buf))
	d0, d1 := f.d0, f.d1
	for i, s := range buf {
		c := from.lerp(f.coeffs, float64(i+1)/n)
		x := float64(s)
		y := c.B0*x + d0
		d0 = c.B1*x - c.A1*y + d1
		d1 = c.B2*x - c.A2*y
		buf[i] = float32(y)
	}
	f.store(buf, d0, d1)
}

// store keeps the filter state for the next block. State that is no
// longer finite is cleared together with the block it produced.
func (f *Lowpass) store(buf []float32, d0, d1 float64) {
	if math.IsNaN(d0+d1) || math.IsInf(d0+d1, 0) {
		f.d0, f.d1 = 0, 0
		clear(buf)
		return
	}
	f.d0, f.d1 = d0, d1
}

// Active reports whether the last block was filtered.
func (f *Lowpass) Active() bool { return f.active }

// CurrentCutoff returns the smoothed base cutoff in absolute cents.
func (f *Lowpass) CurrentCutoff() float64 { return f.currentFc }
