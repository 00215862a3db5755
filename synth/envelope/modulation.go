package envelope

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/units"
)

const (
	convexAttackSize = 1000
	minModReleaseTc  = -7200
)

var convexAttack = func() [convexAttackSize + 1]float64 {
	var t [convexAttackSize + 1]float64
	for i := range t {
		t[i] = units.Convex(float64(i) / convexAttackSize)
	}
	return t
}()

// Modulation is the modulation envelope of one voice. Its output lies in
// [0, 1]; the sign of an excursion comes from the depth generator.
type Modulation struct {
	sampleRate float64

	inRelease    bool
	time         int64
	releaseStart int64

	sustainLevel      float64
	releaseStartLevel float64

	attackDuration  float64
	decayDuration   float64
	releaseNominal  float64
	releaseDuration float64

	delayEnd  float64
	attackEnd float64
	holdEnd   float64
	decayEnd  float64
}

// NewModulation returns a modulation envelope at sampleRate.
func NewModulation(sampleRate float64) Modulation {
	return Modulation{sampleRate: sampleRate}
}

func (e *Modulation) samples(tc float64) float64 {
	return units.TimecentsToSamples(tc, e.sampleRate)
}

// Recalculate derives the stage boundaries from the modulated generators
// g. key is the MIDI note for key-number scaling.
func (e *Modulation) Recalculate(g *generator.Table, key int) {
	e.sustainLevel = math.Max(0, math.Min(1-float64(g[generator.SustainModEnv])/1000, 1))

	keyOffset := float64(60 - key)
	e.attackDuration = e.samples(float64(g[generator.AttackModEnv]))
	decayTc := float64(g[generator.DecayModEnv]) + keyOffset*float64(g[generator.KeyNumToModEnvDecay])
	e.decayDuration = e.samples(decayTc) * (1 - e.sustainLevel)
	holdTc := float64(g[generator.HoldModEnv]) + keyOffset*float64(g[generator.KeyNumToModEnvHold])

	e.delayEnd = e.samples(float64(g[generator.DelayModEnv]))
	e.attackEnd = e.delayEnd + e.attackDuration
	e.holdEnd = e.attackEnd + e.samples(holdTc)
	e.decayEnd = e.holdEnd + e.decayDuration

	e.releaseNominal = e.samples(math.Max(float64(g[generator.ReleaseModEnv]), minModReleaseTc))
	e.releaseDuration = e.releaseNominal * e.releaseStartLevel
}

func (e *Modulation) levelAt(t float64) float64 {
	switch {
	case t < e.delayEnd:
		return 0
	case t < e.attackEnd:
		return convexAttack[int(convexAttackSize*(t-e.delayEnd)/e.attackDuration)]
	case t < e.holdEnd:
		return 1
	case t < e.decayEnd:
		return 1 - (1-e.sustainLevel)*(1-(e.decayEnd-t)/e.decayDuration)
	default:
		return e.sustainLevel
	}
}

// StartRelease captures the current level and enters release.
func (e *Modulation) StartRelease() {
	if e.inRelease {
		return
	}
	e.inRelease = true
	e.releaseStart = e.time
	e.releaseStartLevel = math.Max(0, math.Min(e.levelAt(float64(e.time)), 1))
	e.releaseDuration = e.releaseNominal * e.releaseStartLevel
}

// Value returns the envelope output at the current time.
func (e *Modulation) Value() float64 {
	if !e.inRelease {
		return e.levelAt(float64(e.time))
	}
	if e.releaseDuration <= 0 {
		return 0
	}
	elapsed := float64(e.time - e.releaseStart)
	return math.Max(0, (1-elapsed/e.releaseDuration)*e.releaseStartLevel)
}

// Advance moves the envelope clock forward by n samples.
func (e *Modulation) Advance(n int) { e.time += int64(n) }
