package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultChorusRate  = 0.4   // Hz
	defaultChorusDelay = 0.012 // seconds
	defaultChorusDepth = 0.003 // seconds
	defaultChorusLevel = 0.7
)

// ChorusConfig holds chorus construction settings.
type ChorusConfig struct {
	Rate  float64 // LFO rate in Hz
	Delay float64 // center delay in seconds
	Depth float64 // delay swing in seconds
	Level float64 // wet gain
}

// ChorusOption mutates a ChorusConfig.
type ChorusOption func(*ChorusConfig)

// WithChorusRate sets the LFO rate in Hz.
func WithChorusRate(hz float64) ChorusOption {
	return func(cfg *ChorusConfig) {
		if hz > 0 {
			cfg.Rate = hz
		}
	}
}

// WithChorusDelay sets the center delay in seconds.
func WithChorusDelay(seconds float64) ChorusOption {
	return func(cfg *ChorusConfig) {
		if seconds > 0 {
			cfg.Delay = seconds
		}
	}
}

// WithChorusDepth sets how far the delay swings around its center.
func WithChorusDepth(seconds float64) ChorusOption {
	return func(cfg *ChorusConfig) {
		if seconds >= 0 {
			cfg.Depth = seconds
		}
	}
}

// WithChorusLevel sets the wet gain.
func WithChorusLevel(g float64) ChorusOption {
	return func(cfg *ChorusConfig) {
		if g >= 0 {
			cfg.Level = g
		}
	}
}

// Chorus is a stereo modulated delay. The right channel's LFO runs a
// quarter period behind the left one.
type Chorus struct {
	sampleRate float64
	cfg        ChorusConfig

	left, right delayLine
	phase       float64
	phaseInc    float64
	center      float64 // samples
	swing       float64 // samples

	wetL, wetR []float64
	gain       []float64
}

// NewChorus returns a chorus at sampleRate.
func NewChorus(sampleRate float64, opts ...ChorusOption) (*Chorus, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: chorus sample rate %v", ErrInvalidParameter, sampleRate)
	}
	cfg := ChorusConfig{
		Rate:  defaultChorusRate,
		Delay: defaultChorusDelay,
		Depth: defaultChorusDepth,
		Level: defaultChorusLevel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Depth >= cfg.Delay {
		return nil, fmt.Errorf("%w: chorus depth %v must be below delay %v", ErrInvalidParameter, cfg.Depth, cfg.Delay)
	}

	c := &Chorus{
		sampleRate: sampleRate,
		cfg:        cfg,
		phaseInc:   cfg.Rate / sampleRate,
		center:     cfg.Delay * sampleRate,
		swing:      cfg.Depth * sampleRate,
	}
	size := int(math.Ceil(c.center+c.swing)) + 4
	c.left = newDelayLine(size)
	c.right = newDelayLine(size)
	return c, nil
}

// Process writes the chorused inL and inR to outL and outR.
func (c *Chorus) Process(inL, inR, outL, outR []float32) {
	n := min(len(inL), len(inR), len(outL), len(outR))
	if len(c.wetL) < n {
		c.wetL = make([]float64, n)
		c.wetR = make([]float64, n)
		c.gain = make([]float64, n)
		for i := range c.gain {
			c.gain[i] = c.cfg.Level
		}
	}
	wetL, wetR := c.wetL[:n], c.wetR[:n]

	for i := range n {
		c.left.write(float64(inL[i]))
		c.right.write(float64(inR[i]))

		ph := 2 * math.Pi * c.phase
		wetL[i] = c.left.readFractional(c.center + c.swing*math.Sin(ph))
		wetR[i] = c.right.readFractional(c.center + c.swing*math.Cos(ph))

		c.phase += c.phaseInc
		if c.phase >= 1 {
			c.phase--
		}
	}

	vecmath.MulBlockInPlace(wetL, c.gain[:n])
	vecmath.MulBlockInPlace(wetR, c.gain[:n])
	for i := range n {
		outL[i] = float32(wetL[i])
		outR[i] = float32(wetR[i])
	}
}

// SetLevel changes the wet gain.
func (c *Chorus) SetLevel(g float64) error {
	if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("%w: chorus level %v", ErrInvalidParameter, g)
	}
	c.cfg.Level = g
	for i := range c.gain {
		c.gain[i] = g
	}
	return nil
}

// Config returns the chorus settings.
func (c *Chorus) Config() ChorusConfig { return c.cfg }

// Reset clears the delay lines and restarts the LFO.
func (c *Chorus) Reset() {
	c.left.reset()
	c.right.reset()
	c.phase = 0
}
