package modulator

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
)

// Transform is the SF2 output transform.
type Transform uint8

const (
	TransformLinear   Transform = 0
	TransformAbsolute Transform = 2
)

// DefaultResonantCC drives the default resonant modulator.
const DefaultResonantCC = 74

const effectAmountCap = 1000

// Modulator routes shaped sources into a destination generator. Voices
// hold modulators by value, so Value never leaks between voices.
type Modulator struct {
	Primary     Source
	Secondary   Source
	Destination generator.Type
	Amount      int16
	Transform   Transform

	// Value is the contribution computed by the last Compute call.
	Value float64

	// IsEffect marks the default CC91/CC93 send modulators.
	IsEffect bool
	// IsDefaultResonant marks the default CC74 to filter Q modulator.
	IsDefaultResonant bool
}

var (
	reverbSource   = CC(91)
	chorusSource   = CC(93)
	resonantSource = Source{Index: DefaultResonantCC, CC: true, Bipolar: true}
	noneSource     = Source{}
)

// New returns a modulator with its effect and resonance flags derived
// from the routing.
func New(primary, secondary Source, dest generator.Type, amount int16, transform Transform) Modulator {
	m := Modulator{
		Primary:     primary,
		Secondary:   secondary,
		Destination: dest,
		Amount:      amount,
		Transform:   transform,
	}
	m.IsEffect = (primary == reverbSource || primary == chorusSource) &&
		secondary == noneSource &&
		(dest == generator.ReverbEffectsSend || dest == generator.ChorusEffectsSend)
	m.IsDefaultResonant = primary == resonantSource &&
		secondary == noneSource &&
		dest == generator.InitialFilterQ
	return m
}

// Identical reports whether m and o share sources, destination and
// transform. The amount is compared only when checkAmount is set.
func (m *Modulator) Identical(o *Modulator, checkAmount bool) bool {
	return m.Primary == o.Primary &&
		m.Secondary == o.Secondary &&
		m.Destination == o.Destination &&
		m.Transform == o.Transform &&
		(!checkAmount || m.Amount == o.Amount)
}

// Uses reports whether either source of m reads the given input. cc
// selects between controller numbers and non-CC source indices.
func (m *Modulator) Uses(cc bool, index uint8) bool {
	return (m.Primary.CC == cc && m.Primary.Index == index) ||
		(m.Secondary.CC == cc && m.Secondary.Index == index)
}

// Compute evaluates m against ctx, stores the result in Value and
// returns it.
func (m *Modulator) Compute(ctx *Context) float64 {
	if m.Amount == 0 {
		m.Value = 0
		return 0
	}
	amount := float64(m.Amount)
	if m.IsEffect && amount <= effectAmountCap {
		amount = math.Min(amount*5, effectAmountCap)
	}
	v := m.Primary.Value(ctx) * m.Secondary.Value(ctx) * amount
	if m.Transform == TransformAbsolute {
		v = math.Abs(v)
	}
	m.Value = v
	return v
}

// ResonanceOffset returns the attenuation in centibels the default
// resonant modulator trades against its filter Q boost.
func (m *Modulator) ResonanceOffset() float64 {
	if !m.IsDefaultResonant {
		return 0
	}
	return math.Max(0, m.Value/2)
}
