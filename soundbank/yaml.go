package soundbank

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

// Document is the YAML form of a bank.
//
//	name: Demo
//	samples:
//	  - name: saw
//	    file: saw.wav
//	    originalKey: 57
//	    loopStart: 0
//	    loopEnd: 441
//	instruments:
//	  - name: Saw
//	    zones:
//	      - sample: saw
//	        generators: {sampleModes: 1, releaseVolEnv: -2400}
//	presets:
//	  - name: Saw
//	    program: 0
//	    zones:
//	      - instrument: Saw
type Document struct {
	Name        string          `yaml:"name"`
	Samples     []SampleDoc     `yaml:"samples"`
	Instruments []InstrumentDoc `yaml:"instruments"`
	Presets     []PresetDoc     `yaml:"presets"`
}

// SampleDoc describes a sample loaded from a WAV file or synthesized.
type SampleDoc struct {
	Name            string  `yaml:"name"`
	File            string  `yaml:"file,omitempty"`
	Waveform        string  `yaml:"waveform,omitempty"`
	Length          int     `yaml:"length,omitempty"`
	SampleRate      float64 `yaml:"sampleRate,omitempty"`
	OriginalKey     *int    `yaml:"originalKey,omitempty"`
	PitchCorrection float64 `yaml:"pitchCorrection,omitempty"`
	LoopStart       *int    `yaml:"loopStart,omitempty"`
	LoopEnd         *int    `yaml:"loopEnd,omitempty"`
}

// ZoneDoc is a preset or instrument zone.
type ZoneDoc struct {
	Sample     string         `yaml:"sample,omitempty"`
	Instrument string         `yaml:"instrument,omitempty"`
	KeyRange   []int          `yaml:"keyRange,omitempty"`
	VelRange   []int          `yaml:"velRange,omitempty"`
	Generators map[string]int `yaml:"generators,omitempty"`
	Modulators []ModulatorDoc `yaml:"modulators,omitempty"`
}

// InstrumentDoc is an instrument with an optional global zone.
type InstrumentDoc struct {
	Name   string    `yaml:"name"`
	Global *ZoneDoc  `yaml:"global,omitempty"`
	Zones  []ZoneDoc `yaml:"zones"`
}

// PresetDoc is a preset with an optional global zone.
type PresetDoc struct {
	Name    string    `yaml:"name"`
	Bank    int       `yaml:"bank"`
	Program int       `yaml:"program"`
	Global  *ZoneDoc  `yaml:"global,omitempty"`
	Zones   []ZoneDoc `yaml:"zones"`
}

// SourceDoc is a modulator source.
type SourceDoc struct {
	CC       *int   `yaml:"cc,omitempty"`
	Source   string `yaml:"source,omitempty"`
	Curve    string `yaml:"curve,omitempty"`
	Bipolar  bool   `yaml:"bipolar,omitempty"`
	Negative bool   `yaml:"negative,omitempty"`
}

// ModulatorDoc is a modulator routing.
type ModulatorDoc struct {
	Primary     SourceDoc  `yaml:"primary"`
	Secondary   *SourceDoc `yaml:"secondary,omitempty"`
	Destination string     `yaml:"destination"`
	Amount      int        `yaml:"amount"`
	Absolute    bool       `yaml:"absolute,omitempty"`
}

var sourceNames = map[string]uint8{
	"none":            modulator.NoController,
	"velocity":        modulator.NoteOnVelocity,
	"key":             modulator.NoteOnKeyNum,
	"polyPressure":    modulator.PolyPressure,
	"channelPressure": modulator.ChannelPressure,
	"pitchWheel":      modulator.PitchWheel,
	"pitchWheelRange": modulator.PitchWheelRange,
}

var curveNames = map[string]modulator.Curve{
	"":        modulator.CurveLinear,
	"linear":  modulator.CurveLinear,
	"concave": modulator.CurveConcave,
	"convex":  modulator.CurveConvex,
	"switch":  modulator.CurveSwitch,
}

// LoadFile reads a YAML bank document. WAV paths are relative to the
// document's directory.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data), filepath.Dir(path))
}

// Load decodes a YAML bank document from r, resolving WAV files against
// dir.
func Load(r io.Reader, dir string) (*Bank, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc.Build(dir)
}

// Build assembles the bank described by d.
func (d *Document) Build(dir string) (*Bank, error) {
	samples := make(map[string]*Sample, len(d.Samples))
	bank := &Bank{Name: d.Name}
	for _, sd := range d.Samples {
		s, err := sd.build(dir)
		if err != nil {
			return nil, err
		}
		samples[sd.Name] = s
		bank.Samples = append(bank.Samples, s)
	}

	instruments := make(map[string]*Instrument, len(d.Instruments))
	for _, id := range d.Instruments {
		inst := &Instrument{Name: id.Name, Global: NewZone()}
		if id.Global != nil {
			z, err := id.Global.build(nil, nil)
			if err != nil {
				return nil, fmt.Errorf("instrument %q: %w", id.Name, err)
			}
			inst.Global = z
		}
		for _, zd := range id.Zones {
			z, err := zd.build(samples, nil)
			if err != nil {
				return nil, fmt.Errorf("instrument %q: %w", id.Name, err)
			}
			if z.Sample == nil {
				return nil, fmt.Errorf("%w: instrument %q zone without sample", ErrInvalidDocument, id.Name)
			}
			inst.Zones = append(inst.Zones, z)
		}
		instruments[id.Name] = inst
		bank.Instruments = append(bank.Instruments, inst)
	}

	presets := make([]*Preset, 0, len(d.Presets))
	for _, pd := range d.Presets {
		p := &Preset{Name: pd.Name, Bank: pd.Bank, Program: pd.Program, Global: NewZone()}
		if pd.Global != nil {
			z, err := pd.Global.build(nil, nil)
			if err != nil {
				return nil, fmt.Errorf("preset %q: %w", pd.Name, err)
			}
			p.Global = z
		}
		for _, zd := range pd.Zones {
			z, err := zd.build(nil, instruments)
			if err != nil {
				return nil, fmt.Errorf("preset %q: %w", pd.Name, err)
			}
			if z.Instrument == nil {
				return nil, fmt.Errorf("%w: preset %q zone without instrument", ErrInvalidDocument, pd.Name)
			}
			p.Zones = append(p.Zones, z)
		}
		presets = append(presets, p)
	}

	b := NewBank(d.Name, presets)
	b.Instruments = bank.Instruments
	b.Samples = bank.Samples
	return b, nil
}

func (sd *SampleDoc) build(dir string) (*Sample, error) {
	var (
		s   *Sample
		err error
	)
	switch {
	case sd.File != "":
		path := sd.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		s, err = LoadWAV(sd.Name, path)
	case sd.Waveform != "":
		s, err = Generate(sd.Name, sd.Waveform, sd.Length, sd.SampleRate)
	default:
		err = fmt.Errorf("%w: sample %q has neither file nor waveform", ErrInvalidDocument, sd.Name)
	}
	if err != nil {
		return nil, err
	}
	if sd.SampleRate > 0 {
		s.SampleRate = sd.SampleRate
	}
	if sd.OriginalKey != nil {
		s.OriginalKey = *sd.OriginalKey
	}
	if sd.LoopStart != nil {
		s.LoopStart = *sd.LoopStart
	}
	if sd.LoopEnd != nil {
		s.LoopEnd = *sd.LoopEnd
	}
	if sd.PitchCorrection != 0 {
		s.PitchCorrection = sd.PitchCorrection
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (zd *ZoneDoc) build(samples map[string]*Sample, instruments map[string]*Instrument) (Zone, error) {
	z := NewZone()
	var err error
	if z.KeyRange, err = parseRange(zd.KeyRange); err != nil {
		return z, err
	}
	if z.VelRange, err = parseRange(zd.VelRange); err != nil {
		return z, err
	}
	for name, v := range zd.Generators {
		t, err := generator.Parse(name)
		if err != nil {
			return z, err
		}
		z.Generators = append(z.Generators, generator.Generator{Type: t, Value: int16(max(math.MinInt16, min(v, math.MaxInt16)))})
	}
	for _, md := range zd.Modulators {
		m, err := md.build()
		if err != nil {
			return z, err
		}
		z.Modulators = append(z.Modulators, m)
	}
	if zd.Sample != "" {
		if z.Sample = samples[zd.Sample]; z.Sample == nil {
			return z, fmt.Errorf("%w: unknown sample %q", ErrInvalidDocument, zd.Sample)
		}
	}
	if zd.Instrument != "" {
		if z.Instrument = instruments[zd.Instrument]; z.Instrument == nil {
			return z, fmt.Errorf("%w: unknown instrument %q", ErrInvalidDocument, zd.Instrument)
		}
	}
	return z, nil
}

func parseRange(r []int) (Range, error) {
	switch len(r) {
	case 0:
		return FullRange, nil
	case 2:
		if r[0] < 0 || r[1] > 127 || r[0] > r[1] {
			return Range{}, fmt.Errorf("%w: range %v", ErrInvalidDocument, r)
		}
		return Range{Min: r[0], Max: r[1]}, nil
	default:
		return Range{}, fmt.Errorf("%w: range needs two values, got %v", ErrInvalidDocument, r)
	}
}

func (sd *SourceDoc) build() (modulator.Source, error) {
	curve, ok := curveNames[sd.Curve]
	if !ok {
		return modulator.Source{}, fmt.Errorf("%w: unknown curve %q", ErrInvalidDocument, sd.Curve)
	}
	s := modulator.Source{Curve: curve, Bipolar: sd.Bipolar, Negative: sd.Negative}
	switch {
	case sd.CC != nil:
		if *sd.CC < 0 || *sd.CC > 127 {
			return s, fmt.Errorf("%w: controller %d", ErrInvalidDocument, *sd.CC)
		}
		s.CC = true
		s.Index = uint8(*sd.CC)
	default:
		idx, ok := sourceNames[sd.Source]
		if !ok && sd.Source != "" {
			return s, fmt.Errorf("%w: unknown source %q", ErrInvalidDocument, sd.Source)
		}
		s.Index = idx
	}
	return s, nil
}

func (md *ModulatorDoc) build() (modulator.Modulator, error) {
	primary, err := md.Primary.build()
	if err != nil {
		return modulator.Modulator{}, err
	}
	var secondary modulator.Source
	if md.Secondary != nil {
		if secondary, err = md.Secondary.build(); err != nil {
			return modulator.Modulator{}, err
		}
	}
	dest, err := generator.Parse(md.Destination)
	if err != nil {
		return modulator.Modulator{}, err
	}
	transform := modulator.TransformLinear
	if md.Absolute {
		transform = modulator.TransformAbsolute
	}
	amount := int16(max(math.MinInt16, min(md.Amount, math.MaxInt16)))
	return modulator.New(primary, secondary, dest, amount, transform), nil
}
