package envelope

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/units"
)

const (
	// PerceivedSilenceDB is the attenuation past which a voice is inaudible.
	PerceivedSilenceDB = 90.0

	gainSilence = 0.005
)

// Stage is a forward envelope stage.
type Stage uint8

const (
	StageDelay Stage = iota
	StageAttack
	StageHold
	StageDecay
	StageSustain
)

// Volume is the volume envelope of one voice.
type Volume struct {
	sampleRate float64
	smoothing  float64

	stage     Stage
	inRelease bool
	finished  bool

	// time counts samples since the note started.
	time         int64
	releaseStart int64

	attenuation float64
	targetGain  float64
	sustainDB   float64
	currentDB   float64

	attackDuration  float64
	decayDuration   float64
	releaseNominal  float64
	releaseDuration float64
	releaseStartDB  float64

	delayEnd  float64
	attackEnd float64
	holdEnd   float64
	decayEnd  float64

	canEndOnSilentSustain bool
}

// NewVolume returns a volume envelope for a voice whose unmodulated
// generators are g. Whether a silent sustain may end the voice is decided
// here, once.
func NewVolume(sampleRate float64, g *generator.Table) Volume {
	return Volume{
		sampleRate:            sampleRate,
		smoothing:             units.SmoothingCoefficient(sampleRate),
		currentDB:             units.DBSilence,
		canEndOnSilentSustain: float64(g[generator.SustainVolEnv])/10 >= PerceivedSilenceDB,
	}
}

func (e *Volume) samples(tc float64) float64 {
	return units.TimecentsToSamples(tc, e.sampleRate)
}

// Recalculate derives the stage boundaries from the modulated generators
// g. key is the voice's target key for key-number scaling.
func (e *Volume) Recalculate(g *generator.Table, key int) {
	att := math.Max(0, math.Min(float64(g[generator.InitialAttenuation]), 1440))
	e.targetGain = units.CentibelAttenuationToGain(att)
	e.sustainDB = math.Min(units.DBSilence, float64(g[generator.SustainVolEnv])/10)

	keyOffset := float64(60 - key)
	e.attackDuration = e.samples(float64(g[generator.AttackVolEnv]))
	decayTc := float64(g[generator.DecayVolEnv]) + keyOffset*float64(g[generator.KeyNumToVolEnvDecay])
	e.decayDuration = e.samples(decayTc) * e.sustainDB / units.DBSilence
	holdTc := float64(g[generator.HoldVolEnv]) + keyOffset*float64(g[generator.KeyNumToVolEnvHold])

	e.delayEnd = e.samples(float64(g[generator.DelayVolEnv]))
	e.attackEnd = e.delayEnd + e.attackDuration
	e.holdEnd = e.attackEnd + e.samples(holdTc)
	e.decayEnd = e.holdEnd + e.decayDuration

	e.releaseNominal = e.samples(float64(g[generator.ReleaseVolEnv]))
	e.rescaleRelease()
}

func (e *Volume) rescaleRelease() {
	e.releaseDuration = e.releaseNominal * (units.DBSilence - e.releaseStartDB) / units.DBSilence
}

// SnapAttenuation jumps the smoothed attenuation to its target. Used at
// note-on so a voice does not fade in from unity gain.
func (e *Volume) SnapAttenuation() { e.attenuation = e.targetGain }

// levelAt returns the forward-stage attenuation in dB at sample time t.
func (e *Volume) levelAt(t float64) float64 {
	switch {
	case t < e.delayEnd:
		return units.DBSilence
	case t < e.attackEnd:
		return units.GainToDecibelAttenuation((t - e.delayEnd) / e.attackDuration)
	case t < e.holdEnd:
		return 0
	case t < e.decayEnd:
		return (1 - (e.decayEnd-t)/e.decayDuration) * e.sustainDB
	default:
		return e.sustainDB
	}
}

// StartRelease captures the current level and enters release.
func (e *Volume) StartRelease() {
	if e.inRelease {
		return
	}
	e.inRelease = true
	e.releaseStart = e.time
	e.releaseStartDB = math.Max(0, math.Min(e.levelAt(float64(e.time)), units.DBSilence))
	e.rescaleRelease()
	if e.releaseStartDB >= PerceivedSilenceDB {
		e.finished = true
	}
}

// Apply scales buf in place by the envelope and advances its clock.
// centibelOffset is extra attenuation from LFOs and resonance
// compensation.
func (e *Volume) Apply(buf []float32, centibelOffset float64) {
	offsetDB := centibelOffset / 10
	if e.inRelease {
		e.applyRelease(buf, offsetDB)
		return
	}
	for i := range buf {
		e.attenuation += (e.targetGain - e.attenuation) * e.smoothing
		t := float64(e.time)

		var gain float64
		switch {
		case t < e.delayEnd:
			e.stage = StageDelay
			e.currentDB = units.DBSilence
		case t < e.attackEnd:
			// Linear in gain, not in dB.
			e.stage = StageAttack
			lin := (t - e.delayEnd) / e.attackDuration
			e.currentDB = units.GainToDecibelAttenuation(lin)
			gain = lin * units.DecibelAttenuationToGain(offsetDB)
		case t < e.holdEnd:
			e.stage = StageHold
			e.currentDB = 0
			gain = units.DecibelAttenuationToGain(offsetDB)
		case t < e.decayEnd:
			e.stage = StageDecay
			e.currentDB = (1 - (e.decayEnd-t)/e.decayDuration) * e.sustainDB
			gain = units.DecibelAttenuationToGain(e.currentDB + offsetDB)
		default:
			e.stage = StageSustain
			e.currentDB = e.sustainDB
			if e.canEndOnSilentSustain && e.sustainDB >= PerceivedSilenceDB {
				e.finished = true
				clear(buf[i:])
				return
			}
			gain = units.DecibelAttenuationToGain(e.sustainDB + offsetDB)
		}
		buf[i] *= float32(gain * e.attenuation)
		e.time++
	}
}

func (e *Volume) applyRelease(buf []float32, offsetDB float64) {
	for i := range buf {
		elapsed := float64(e.time - e.releaseStart)
		if e.finished || elapsed >= e.releaseDuration {
			e.finished = true
			e.currentDB = units.DBSilence
			clear(buf[i:])
			return
		}
		e.attenuation += (e.targetGain - e.attenuation) * e.smoothing
		e.currentDB = elapsed/e.releaseDuration*(units.DBSilence-e.releaseStartDB) + e.releaseStartDB
		gain := e.attenuation * units.DecibelAttenuationToGain(e.currentDB+offsetDB)
		if e.currentDB >= PerceivedSilenceDB || gain <= gainSilence {
			e.finished = true
			clear(buf[i:])
			return
		}
		buf[i] *= float32(gain)
		e.time++
	}
}

// Stage returns the forward stage reached by the last Apply.
func (e *Volume) Stage() Stage { return e.stage }

// InRelease reports whether release has started.
func (e *Volume) InRelease() bool { return e.inRelease }

// Finished reports whether the envelope has reached silence for good.
func (e *Volume) Finished() bool { return e.finished }

// CurrentDB returns the envelope attenuation in dB at the last processed
// sample, excluding initial attenuation.
func (e *Volume) CurrentDB() float64 { return e.currentDB }

// ReleaseDuration returns the rescaled release length in samples.
func (e *Volume) ReleaseDuration() float64 { return e.releaseDuration }

// DecayDuration returns the rescaled decay length in samples.
func (e *Volume) DecayDuration() float64 { return e.decayDuration }

// Time returns the number of samples processed since note-on.
func (e *Volume) Time() int64 { return e.time }
