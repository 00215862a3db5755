package synth

import (
	"log/slog"
	"time"

	"github.com/cwbudde/algo-sfsynth/synth/oscillator"
)

// Config holds engine settings.
type Config struct {
	SampleRate    float64
	BlockSize     int
	Interpolation oscillator.Interpolation
	VoiceCap      int
	Channels      int
	Effects       bool
	ReverbGain    float32
	ChorusGain    float32
	MasterGain    float32
	MinNoteLength time.Duration
	Logger        *slog.Logger

	reverb StereoProcessor
	chorus StereoProcessor
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		BlockSize:     128,
		Interpolation: oscillator.Linear,
		VoiceCap:      350,
		Channels:      16,
		Effects:       true,
		ReverbGain:    1,
		ChorusGain:    1,
		MasterGain:    1,
		MinNoteLength: 30 * time.Millisecond,
	}
}

// WithSampleRate sets the output sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of frames between modulation updates.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithInterpolation selects the oscillator interpolation for all voices.
func WithInterpolation(i oscillator.Interpolation) Option {
	return func(cfg *Config) { cfg.Interpolation = i }
}

// WithVoiceCap sets the maximum number of sounding voices.
func WithVoiceCap(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.VoiceCap = n
		}
	}
}

// WithChannels sets the number of MIDI channels.
func WithChannels(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Channels = n
		}
	}
}

// WithEffects enables or disables the reverb and chorus sends.
func WithEffects(enabled bool) Option {
	return func(cfg *Config) { cfg.Effects = enabled }
}

// WithReverbGain sets the global reverb send level.
func WithReverbGain(g float32) Option {
	return func(cfg *Config) {
		if g >= 0 {
			cfg.ReverbGain = g
		}
	}
}

// WithChorusGain sets the global chorus send level.
func WithChorusGain(g float32) Option {
	return func(cfg *Config) {
		if g >= 0 {
			cfg.ChorusGain = g
		}
	}
}

// WithMasterGain sets the linear output gain.
func WithMasterGain(g float32) Option {
	return func(cfg *Config) {
		if g >= 0 {
			cfg.MasterGain = g
		}
	}
}

// WithMinNoteLength sets the shortest time between note-on and the start
// of release.
func WithMinNoteLength(d time.Duration) Option {
	return func(cfg *Config) {
		if d >= 0 {
			cfg.MinNoteLength = d
		}
	}
}

// WithLogger sets the logger used for voice and preset warnings.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithReverb replaces the default reverb used by RenderStereo.
func WithReverb(p StereoProcessor) Option {
	return func(cfg *Config) { cfg.reverb = p }
}

// WithChorus replaces the default chorus used by RenderStereo.
func WithChorus(p StereoProcessor) Option {
	return func(cfg *Config) { cfg.chorus = p }
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
