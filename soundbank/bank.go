package soundbank

import (
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

// DrumBank is the bank number used by percussion channels.
const DrumBank = 128

// Range is an inclusive MIDI key or velocity range.
type Range struct {
	Min, Max int
}

// FullRange covers every key or velocity.
var FullRange = Range{Min: 0, Max: 127}

// Contains reports whether v lies inside r.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Zone is a key/velocity-scoped bundle of generators and modulators.
// Instrument zones reference a Sample; preset zones an Instrument.
type Zone struct {
	KeyRange   Range
	VelRange   Range
	Generators []generator.Generator
	Modulators []modulator.Modulator

	Sample     *Sample
	Instrument *Instrument
}

// NewZone returns a zone covering every key and velocity.
func NewZone() Zone {
	return Zone{KeyRange: FullRange, VelRange: FullRange}
}

func (z *Zone) matches(key, velocity int) bool {
	return z.KeyRange.Contains(key) && z.VelRange.Contains(velocity)
}

// Instrument is a set of sample zones with an optional global zone.
type Instrument struct {
	Name   string
	Global Zone
	Zones  []Zone
}

// Preset is a set of instrument zones selected by bank and program.
type Preset struct {
	Name    string
	Bank    int
	Program int
	Global  Zone
	Zones   []Zone
}

// ZoneSample is one sample a note plays, with everything needed to build
// a voice for it.
type ZoneSample struct {
	Sample               *Sample
	PresetGenerators     []generator.Generator
	InstrumentGenerators []generator.Generator
	Modulators           []modulator.Modulator
}

// Resolver turns a note into the samples it plays.
type Resolver interface {
	SamplesAndGenerators(key, velocity int) []ZoneSample
}

// Provider looks up presets by bank and program.
type Provider interface {
	Resolve(bank, program int) (Resolver, bool)
}

type placeholder struct{}

func (placeholder) SamplesAndGenerators(int, int) []ZoneSample { return nil }

// Placeholder is an empty preset used when nothing else resolves.
var Placeholder Resolver = placeholder{}

// Bank is an in-memory collection of presets.
type Bank struct {
	Name        string
	Presets     []*Preset
	Instruments []*Instrument
	Samples     []*Sample

	index map[[2]int]*Preset
}

// NewBank indexes presets by bank and program. Later duplicates win.
func NewBank(name string, presets []*Preset) *Bank {
	b := &Bank{Name: name, Presets: presets, index: make(map[[2]int]*Preset, len(presets))}
	for _, p := range presets {
		b.index[[2]int{p.Bank, p.Program}] = p
	}
	return b
}

// Resolve returns the preset for bank and program. If the exact preset
// is missing it falls back to the same program in bank 0 (or program 0 of
// the drum bank for percussion), then to the first preset of the bank.
func (b *Bank) Resolve(bank, program int) (Resolver, bool) {
	if p, ok := b.index[[2]int{bank, program}]; ok {
		return p, true
	}
	if bank == DrumBank {
		if p, ok := b.index[[2]int{DrumBank, 0}]; ok {
			return p, true
		}
	} else if p, ok := b.index[[2]int{0, program}]; ok {
		return p, true
	}
	if len(b.Presets) > 0 {
		return b.Presets[0], true
	}
	return nil, false
}

// Preset returns the exact preset for bank and program, or nil.
func (b *Bank) Preset(bank, program int) *Preset {
	return b.index[[2]int{bank, program}]
}
