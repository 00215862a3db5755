package synth

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth/envelope"
	"github.com/cwbudde/algo-sfsynth/synth/filter"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
	"github.com/cwbudde/algo-sfsynth/synth/oscillator"
)

// emuAttenuationScale reproduces the attenuation scaling of EMU hardware
// that most banks are authored against.
const emuAttenuationScale = 0.4

type cacheKey struct {
	bank, program, note, velocity int
}

// voiceTemplate is an unmodulated voice. Templates are never written
// after they are stored; voices are stamped from copies.
type voiceTemplate struct {
	name           string
	sample         oscillator.Sample
	generators     generator.Table
	modulators     []modulator.Modulator
	exclusiveClass int
	targetKey      int
	velocity       int
}

// voicesFor returns fresh voices for note and velocity on c, resolving
// the channel preset only on a cache miss.
func (s *Synthesizer) voicesFor(c *Channel, note, velocity int) []*Voice {
	key := cacheKey{bank: c.presetBank, program: c.presetProgram, note: note, velocity: velocity}
	templates, ok := s.cache[key]
	if !ok {
		templates = s.buildTemplates(c.preset, note, velocity)
		s.cache[key] = templates
	}
	if len(templates) == 0 {
		return nil
	}
	voices := make([]*Voice, len(templates))
	for i := range templates {
		voices[i] = s.stamp(&templates[i], note)
	}
	return voices
}

func (s *Synthesizer) buildTemplates(preset soundbank.Resolver, note, velocity int) []voiceTemplate {
	if preset == nil {
		return nil
	}
	zones := preset.SamplesAndGenerators(note, velocity)
	templates := make([]voiceTemplate, 0, len(zones))
	for _, z := range zones {
		if z.Sample == nil {
			s.log.Warn("discarding zone without sample", "note", note)
			continue
		}
		data, err := s.sampleData(z.Sample)
		if err != nil {
			s.log.Warn("discarding sample", "sample", z.Sample.Name, "reason", err)
			continue
		}

		g := generator.Build(z.PresetGenerators, z.InstrumentGenerators)
		g[generator.InitialAttenuation] = int16(float64(g[generator.InitialAttenuation]) * emuAttenuationScale)

		rootKey := z.Sample.OriginalKey
		if k := g[generator.OverridingRootKey]; k > -1 {
			rootKey = int(k)
		}
		targetKey := note
		if k := g[generator.KeyNum]; k > -1 {
			targetKey = int(k)
		}
		vel := velocity
		if v := g[generator.Velocity]; v > -1 {
			vel = int(v)
		}
		mode := oscillator.LoopMode(g[generator.SampleModes] & 3)
		playback := oscillator.NewSample(data, z.Sample.SampleRate, s.cfg.SampleRate,
			z.Sample.PitchCorrection, rootKey, z.Sample.LoopStart, z.Sample.LoopEnd, mode)

		templates = append(templates, voiceTemplate{
			name:           z.Sample.Name,
			sample:         playback,
			generators:     g,
			modulators:     append([]modulator.Modulator(nil), z.Modulators...),
			exclusiveClass: int(g[generator.ExclusiveClass]),
			targetKey:      targetKey,
			velocity:       vel,
		})
	}
	return templates
}

// sampleData returns the frames a voice may play from smp. Frames that
// are not finite are replaced with silence in a private copy, which is
// kept until the cache is cleared. The bank's own data is not modified.
func (s *Synthesizer) sampleData(smp *soundbank.Sample) ([]float32, error) {
	if data, ok := s.samples[smp]; ok {
		return data, nil
	}
	data, err := smp.AudioData()
	if err != nil {
		return nil, err
	}
	if !(smp.SampleRate > 0) || math.IsInf(smp.SampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate %v", soundbank.ErrInvalidSample, smp.SampleRate)
	}
	if math.IsNaN(smp.PitchCorrection) || math.IsInf(smp.PitchCorrection, 0) {
		return nil, fmt.Errorf("%w: pitch correction %v", soundbank.ErrInvalidSample, smp.PitchCorrection)
	}

	if first := slices.IndexFunc(data, notFinite); first >= 0 {
		clean := slices.Clone(data)
		n := 0
		for i := first; i < len(clean); i++ {
			if notFinite(clean[i]) {
				clean[i] = 0
				n++
			}
		}
		s.log.Warn("silencing non-finite sample frames", "sample", smp.Name, "frames", n)
		data = clean
	}
	s.samples[smp] = data
	return data, nil
}

func notFinite(x float32) bool {
	return math.IsNaN(float64(x)) || math.IsInf(float64(x), 0)
}

// stamp makes a private voice from t.
func (s *Synthesizer) stamp(t *voiceTemplate, note int) *Voice {
	sr := s.cfg.SampleRate
	return &Voice{
		sample:           t.sample,
		sampleName:       t.name,
		generators:       t.generators,
		modulators:       append([]modulator.Modulator(nil), t.modulators...),
		modEnv:           envelope.NewModulation(sr),
		filter:           filter.NewLowpass(sr),
		midiNote:         note,
		realKey:          note,
		targetKey:        t.targetKey,
		velocity:         t.velocity,
		exclusiveClass:   t.exclusiveClass,
		startTime:        s.time,
		releaseStartTime: noRelease,
		gain:             1,
		tuningRatio:      1,
		portamentoFrom:   -1,
	}
}
