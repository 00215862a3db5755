package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sfsynth/effects"
	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/oscillator"
)

// engineConfig is the YAML form of the engine settings. Zero values keep
// the engine defaults.
type engineConfig struct {
	SampleRate    float64       `yaml:"sampleRate"`
	BlockSize     int           `yaml:"blockSize"`
	Interpolation string        `yaml:"interpolation"`
	VoiceCap      int           `yaml:"voiceCap"`
	MasterGain    *float32      `yaml:"masterGain"`
	ReverbGain    *float32      `yaml:"reverbGain"`
	ChorusGain    *float32      `yaml:"chorusGain"`
	MinNoteLength time.Duration `yaml:"minNoteLength"`

	Reverb struct {
		Decay     float64  `yaml:"decay"`
		Wet       *float64 `yaml:"wet"`
		Partition int      `yaml:"partition"`
		Seed      *int64   `yaml:"seed"`
	} `yaml:"reverb"`

	Chorus struct {
		Rate  float64  `yaml:"rate"`
		Delay float64  `yaml:"delay"`
		Depth float64  `yaml:"depth"`
		Level *float64 `yaml:"level"`
	} `yaml:"chorus"`
}

func loadEngineConfig(path string) (engineConfig, error) {
	var cfg engineConfig
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// options turns the config and command-line overrides into engine
// options, building the effect units at the final sample rate.
func (c *commonFlags) options(cfg engineConfig, log *slog.Logger) ([]synth.Option, error) {
	if c.rate > 0 {
		cfg.SampleRate = c.rate
	}
	if c.interp != "" {
		cfg.Interpolation = c.interp
	}
	rate := synth.DefaultConfig().SampleRate
	if cfg.SampleRate > 0 {
		rate = cfg.SampleRate
	}

	opts := []synth.Option{
		synth.WithSampleRate(rate),
		synth.WithBlockSize(cfg.BlockSize),
		synth.WithVoiceCap(cfg.VoiceCap),
		synth.WithEffects(c.effects),
		synth.WithLogger(log),
	}
	if cfg.Interpolation != "" {
		interp, err := oscillator.ParseInterpolation(cfg.Interpolation)
		if err != nil {
			return nil, err
		}
		opts = append(opts, synth.WithInterpolation(interp))
	}
	if cfg.MasterGain != nil {
		opts = append(opts, synth.WithMasterGain(*cfg.MasterGain))
	}
	if cfg.ReverbGain != nil {
		opts = append(opts, synth.WithReverbGain(*cfg.ReverbGain))
	}
	if cfg.ChorusGain != nil {
		opts = append(opts, synth.WithChorusGain(*cfg.ChorusGain))
	}
	if cfg.MinNoteLength > 0 {
		opts = append(opts, synth.WithMinNoteLength(cfg.MinNoteLength))
	}
	if !c.effects {
		return opts, nil
	}

	rv := cfg.Reverb
	reverbOpts := []effects.ReverbOption{
		effects.WithReverbDecay(rv.Decay),
		effects.WithReverbPartition(rv.Partition),
	}
	if rv.Wet != nil {
		reverbOpts = append(reverbOpts, effects.WithReverbWet(*rv.Wet))
	}
	if rv.Seed != nil {
		reverbOpts = append(reverbOpts, effects.WithReverbSeed(*rv.Seed))
	}
	reverb, err := effects.NewReverb(rate, reverbOpts...)
	if err != nil {
		return nil, err
	}

	ch := cfg.Chorus
	chorusOpts := []effects.ChorusOption{
		effects.WithChorusRate(ch.Rate),
		effects.WithChorusDelay(ch.Delay),
		effects.WithChorusDepth(ch.Depth),
	}
	if ch.Level != nil {
		chorusOpts = append(chorusOpts, effects.WithChorusLevel(*ch.Level))
	}
	chorus, err := effects.NewChorus(rate, chorusOpts...)
	if err != nil {
		return nil, err
	}
	log.Debug("effects ready", "reverb_latency", reverb.Latency(), "reverb_partitions", reverb.Partitions())
	return append(opts, synth.WithReverb(reverb), synth.WithChorus(chorus)), nil
}

// newSynth loads the bank and config named by the flags.
func (c *commonFlags) newSynth(log *slog.Logger) (*synth.Synthesizer, error) {
	cfg, err := loadEngineConfig(c.config)
	if err != nil {
		return nil, err
	}
	opts, err := c.options(cfg, log)
	if err != nil {
		return nil, err
	}

	var bank soundbank.Provider
	if c.bank != "" {
		b, err := soundbank.LoadFile(c.bank)
		if err != nil {
			return nil, err
		}
		log.Debug("bank loaded", "name", b.Name, "presets", len(b.Presets), "samples", len(b.Samples))
		bank = b
	} else {
		b, err := builtinBank()
		if err != nil {
			return nil, err
		}
		bank = b
	}
	return synth.New(bank, opts...)
}

var builtinWaveforms = []string{"sine", "saw", "square", "triangle"}

// builtinBank has one looped waveform preset per program, with a short
// attack and release so notes do not click.
func builtinBank() (*soundbank.Bank, error) {
	presets := make([]*soundbank.Preset, 0, len(builtinWaveforms))
	for program, waveform := range builtinWaveforms {
		sample, err := soundbank.Generate(waveform, waveform, 0, 0)
		if err != nil {
			return nil, err
		}
		zone := soundbank.NewZone()
		zone.Sample = sample
		zone.Generators = []generator.Generator{
			{Type: generator.SampleModes, Value: 1},
			{Type: generator.AttackVolEnv, Value: -7973},
			{Type: generator.ReleaseVolEnv, Value: -3986},
			{Type: generator.InitialAttenuation, Value: 60},
		}

		pz := soundbank.NewZone()
		pz.Instrument = &soundbank.Instrument{Name: waveform, Zones: []soundbank.Zone{zone}}
		presets = append(presets, &soundbank.Preset{
			Name:    waveform,
			Program: program,
			Zones:   []soundbank.Zone{pz},
		})
	}
	return soundbank.NewBank("builtin", presets), nil
}
