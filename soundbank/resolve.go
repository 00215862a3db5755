package soundbank

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

// SamplesAndGenerators returns one entry per (preset zone, instrument
// zone) pair that covers key and velocity.
//
// Local zone generators replace the global zone's value of the same type
// and identical local modulators replace global ones. Instrument
// modulators replace identical defaults; preset modulators are added on
// top, summing the amount of an identical modulator.
func (p *Preset) SamplesAndGenerators(key, velocity int) []ZoneSample {
	var out []ZoneSample
	for i := range p.Zones {
		pz := &p.Zones[i]
		if pz.Instrument == nil || !pz.matches(key, velocity) {
			continue
		}
		presetGens := mergeGenerators(p.Global.Generators, pz.Generators)
		presetMods := mergeModulators(p.Global.Modulators, pz.Modulators)

		inst := pz.Instrument
		for j := range inst.Zones {
			iz := &inst.Zones[j]
			if iz.Sample == nil || !iz.matches(key, velocity) {
				continue
			}
			mods := mergeModulators(modulator.Defaults(), mergeModulators(inst.Global.Modulators, iz.Modulators))
			out = append(out, ZoneSample{
				Sample:               iz.Sample,
				PresetGenerators:     presetGens,
				InstrumentGenerators: mergeGenerators(inst.Global.Generators, iz.Generators),
				Modulators:           addModulators(mods, presetMods),
			})
		}
	}
	return out
}

func mergeGenerators(global, local []generator.Generator) []generator.Generator {
	if len(global) == 0 {
		return local
	}
	out := make([]generator.Generator, 0, len(global)+len(local))
	for _, g := range global {
		if _, ok := generator.Find(local, g.Type); !ok {
			out = append(out, g)
		}
	}
	return append(out, local...)
}

// mergeModulators returns base with identical entries replaced by
// overrides and the rest of overrides appended.
func mergeModulators(base, overrides []modulator.Modulator) []modulator.Modulator {
	out := append([]modulator.Modulator(nil), base...)
	for _, m := range overrides {
		replaced := false
		for i := range out {
			if out[i].Identical(&m, false) {
				out[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, m)
		}
	}
	return out
}

func addModulators(base, extra []modulator.Modulator) []modulator.Modulator {
	for _, m := range extra {
		summed := false
		for i := range base {
			if base[i].Identical(&m, false) {
				sum := int32(base[i].Amount) + int32(m.Amount)
				base[i].Amount = int16(max(math.MinInt16, min(sum, math.MaxInt16)))
				summed = true
				break
			}
		}
		if !summed {
			base = append(base, m)
		}
	}
	return base
}
