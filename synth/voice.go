package synth

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/envelope"
	"github.com/cwbudde/algo-sfsynth/synth/filter"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/lfo"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
	"github.com/cwbudde/algo-sfsynth/synth/oscillator"
	"github.com/cwbudde/algo-sfsynth/synth/panner"
	"github.com/cwbudde/algo-sfsynth/synth/units"
)

const (
	// killReleaseTc is the release used when voices are killed or stolen.
	killReleaseTc = -12000
	// exclusiveReleaseTc is the release of a voice choked by another
	// voice of the same exclusive class.
	exclusiveReleaseTc = -2320

	noRelease = math.MaxInt64
)

// Voice is one sounding sample with its own generators, modulators,
// envelopes, filter and pan state.
type Voice struct {
	sample     oscillator.Sample
	sampleName string

	// generators are the unmodulated values; modulated is generators
	// plus every modulator contribution, clamped.
	generators generator.Table
	modulated  generator.Table
	modulators []modulator.Modulator

	volEnv envelope.Volume
	modEnv envelope.Modulation
	filter filter.Lowpass
	pan    panner.Panner

	resonanceOffset float64

	midiNote  int
	realKey   int
	targetKey int
	velocity  int
	pressure  int

	exclusiveClass int

	startTime        int64
	releaseStartTime int64

	released bool
	finished bool
	killed   bool

	releaseOverride    int16
	hasReleaseOverride bool

	gain float32

	tuningCents int
	tuningRatio float64

	portamentoFrom     int
	portamentoDuration float64 // seconds
}

// MidiNote returns the key that started the voice.
func (v *Voice) MidiNote() int { return v.midiNote }

// Velocity returns the voice's effective velocity.
func (v *Voice) Velocity() int { return v.velocity }

// ExclusiveClass returns the voice's choke group, 0 for none.
func (v *Voice) ExclusiveClass() int { return v.exclusiveClass }

// Released reports whether the voice has entered release.
func (v *Voice) Released() bool { return v.released }

// Finished reports whether the voice is silent for good.
func (v *Voice) Finished() bool { return v.finished }

// Generator returns the modulated value of t.
func (v *Voice) Generator(t generator.Type) int16 {
	if !t.Valid() {
		return 0
	}
	return v.modulated[t]
}

func (v *Voice) context(c *Channel) modulator.Context {
	return modulator.Context{
		Controllers: c.controllers[:],
		Key:         v.midiNote,
		Velocity:    v.velocity,
		Pressure:    v.pressure,
	}
}

// computeAll evaluates every modulator and rebuilds the modulated table
// from scratch.
func (v *Voice) computeAll(c *Channel) {
	ctx := v.context(c)
	var sums [generator.Count]float64
	v.resonanceOffset = 0
	for i := range v.modulators {
		m := &v.modulators[i]
		val := m.Compute(&ctx)
		if m.Destination.Valid() {
			sums[m.Destination] += val
		}
		v.resonanceOffset += m.ResonanceOffset()
	}
	for t := range generator.Count {
		v.modulated[t] = v.modulatedValue(c, generator.Type(t), sums[t])
	}
	v.applyReleaseOverride()
	v.volEnv.Recalculate(&v.modulated, v.targetKey)
	v.modEnv.Recalculate(&v.modulated, v.midiNote)
}

// update recomputes only the modulators reading the given source and the
// destinations they feed.
func (v *Voice) update(c *Channel, cc bool, index uint8) {
	ctx := v.context(c)
	var dirty [generator.Count]bool
	touched := false
	for i := range v.modulators {
		m := &v.modulators[i]
		if !m.Uses(cc, index) {
			continue
		}
		m.Compute(&ctx)
		if m.Destination.Valid() {
			dirty[m.Destination] = true
			touched = true
		}
	}
	if !touched {
		return
	}

	v.resonanceOffset = 0
	for i := range v.modulators {
		v.resonanceOffset += v.modulators[i].ResonanceOffset()
	}

	volume := false
	for t, d := range dirty {
		if !d {
			continue
		}
		var sum float64
		for i := range v.modulators {
			if int(v.modulators[i].Destination) == t {
				sum += v.modulators[i].Value
			}
		}
		typ := generator.Type(t)
		v.modulated[t] = v.modulatedValue(c, typ, sum)
		volume = volume || typ.IsVolumeEnvelope()
	}
	v.applyReleaseOverride()
	if volume {
		v.volEnv.Recalculate(&v.modulated, v.targetKey)
	}
	v.modEnv.Recalculate(&v.modulated, v.midiNote)
}

func (v *Voice) modulatedValue(c *Channel, t generator.Type, sum float64) int16 {
	raw := int32(v.generators[t]) + int32(sum)
	if c.offsetsEnabled {
		raw += int32(c.offsets[t])
	}
	return generator.Clamp(t, raw)
}

func (v *Voice) applyReleaseOverride() {
	if v.hasReleaseOverride {
		v.modulated[generator.ReleaseVolEnv] = v.releaseOverride
	}
}

// applySampleOffsets moves the cursor, end and loop points by the four
// address offset generators.
func (v *Voice) applySampleOffsets() {
	g := &v.modulated
	s := &v.sample
	n := len(s.Data)
	offset := func(fine, coarse generator.Type) int {
		return int(g[fine]) + int(g[coarse])*32768
	}

	s.Cursor = float64(max(0, min(offset(generator.StartAddrsOffset, generator.StartAddrsCoarseOffset), n-1)))
	s.End = max(0, min(n+offset(generator.EndAddrOffset, generator.EndAddrsCoarseOffset), n))
	s.LoopStart = max(0, min(s.LoopStart+offset(generator.StartloopAddrsOffset, generator.StartloopAddrsCoarseOffset), n))
	s.LoopEnd = max(0, min(s.LoopEnd+offset(generator.EndloopAddrsOffset, generator.EndloopAddrsCoarseOffset), n))
	if s.LoopEnd < s.LoopStart {
		s.LoopStart, s.LoopEnd = s.LoopEnd, s.LoopStart
	}
	if s.LoopEnd-s.LoopStart < 1 {
		s.IsLooping = false
		if s.Mode == oscillator.Loop || s.Mode == oscillator.LoopUntilRelease {
			s.Mode = oscillator.NoLoop
		}
	}
}

// scheduleRelease releases the voice at now, but not before it has
// sounded for minLength samples.
func (v *Voice) scheduleRelease(now, minLength int64) {
	if v.releaseStartTime != noRelease {
		return
	}
	v.releaseStartTime = max(now, v.startTime+minLength)
}

// forceRelease overrides the release time and releases at now.
func (v *Voice) forceRelease(now int64, releaseTc int16) {
	v.releaseOverride = releaseTc
	v.hasReleaseOverride = true
	v.applyReleaseOverride()
	v.volEnv.Recalculate(&v.modulated, v.targetKey)
	if v.releaseStartTime == noRelease || v.releaseStartTime > now {
		v.releaseStartTime = now
	}
}

func (v *Voice) kill(now int64) {
	v.killed = true
	v.forceRelease(now, killReleaseTc)
}

func (v *Voice) startRelease() {
	v.released = true
	v.volEnv.StartRelease()
	v.modEnv.StartRelease()
	if v.sample.Mode == oscillator.LoopUntilRelease {
		v.sample.IsLooping = false
	}
}

// priority ranks voices for stealing; the lowest goes first.
func (v *Voice) priority() float64 {
	p := float64(v.velocity) / 25
	if v.released {
		p -= 5
	}
	p -= float64(v.volEnv.Stage())
	p -= v.volEnv.CurrentDB() / 50
	return p
}

// render produces one block of the voice into b at offset. buf is
// scratch space of the block length.
func (v *Voice) render(c *Channel, now int64, b *Buses, offset int, buf []float32) {
	if v.finished {
		return
	}
	s := c.synth
	if !v.released && now >= v.releaseStartTime {
		v.startRelease()
	}

	g := &v.modulated
	elapsed := float64(now-v.startTime) / s.cfg.SampleRate

	scale := float64(g[generator.ScaleTuning])
	cents := float64(g[generator.FineTune]) + c.tuningCents +
		float64(g[generator.CoarseTune])*100 +
		float64(v.targetKey-v.sample.RootKey)*scale
	if v.portamentoDuration > 0 {
		done := min(elapsed/v.portamentoDuration, 1)
		cents += float64(v.portamentoFrom-v.targetKey) * scale * (1 - done)
	}

	var excursion, volumeCb float64
	if g[generator.VibLfoToPitch] != 0 || g[generator.VibLfoToVolume] != 0 || g[generator.VibLfoToFilterFc] != 0 {
		x := lfo.ParamsFromGenerators(g[generator.DelayVibLFO], g[generator.FreqVibLFO]).Value(elapsed)
		cents += x * float64(g[generator.VibLfoToPitch])
		volumeCb -= x * float64(g[generator.VibLfoToVolume])
		excursion += x * float64(g[generator.VibLfoToFilterFc])
	}
	if g[generator.ModLfoToPitch] != 0 || g[generator.ModLfoToVolume] != 0 || g[generator.ModLfoToFilterFc] != 0 {
		x := lfo.ParamsFromGenerators(g[generator.DelayModLFO], g[generator.FreqModLFO]).Value(elapsed)
		cents += x * float64(g[generator.ModLfoToPitch])
		volumeCb -= x * float64(g[generator.ModLfoToVolume])
		excursion += x * float64(g[generator.ModLfoToFilterFc])
	}
	if g[generator.ModEnvToPitch] != 0 || g[generator.ModEnvToFilterFc] != 0 {
		e := v.modEnv.Value()
		cents += e * float64(g[generator.ModEnvToPitch])
		excursion += e * float64(g[generator.ModEnvToFilterFc])
	}
	v.modEnv.Advance(len(buf))

	if tc := int(cents); tc != v.tuningCents {
		v.tuningCents = tc
		v.tuningRatio = units.CentsToRatio(float64(tc))
	}

	if v.sample.Mode == oscillator.StartOnRelease && !v.released {
		// Silent until release; keep the envelope clock running.
		clear(buf)
		v.volEnv.Apply(buf, 0)
		v.finished = v.volEnv.Finished()
		return
	}

	ended := v.sample.Render(buf, v.tuningRatio, s.interpolation)
	v.filter.Process(buf, float64(g[generator.InitialFilterFc]), excursion,
		float64(g[generator.InitialFilterQ])-v.resonanceOffset)
	v.volEnv.Apply(buf, volumeCb+v.resonanceOffset)

	v.pan.Mix(buf, b, offset, panner.Send{
		Pan:        v.panTarget(s),
		Gain:       v.gain * s.masterGain,
		Reverb:     float64(g[generator.ReverbEffectsSend]),
		Chorus:     float64(g[generator.ChorusEffectsSend]),
		ReverbGain: s.cfg.ReverbGain,
		ChorusGain: s.cfg.ChorusGain,
		Effects:    s.effects,
	})

	if ended || v.volEnv.Finished() {
		v.finished = true
	}
}

func (v *Voice) panTarget(s *Synthesizer) float64 {
	return max(-panner.MaxPan, min(float64(v.modulated[generator.Pan])+s.masterPan, panner.MaxPan))
}
