// Package panner mixes a mono voice block into the stereo dry bus and the
// reverb and chorus send buses using a quarter-wave equal-power law.
package panner

import (
	"sync"

	"github.com/chewxy/math32"
)

const (
	// MaxPan is the hard-right pan value; -MaxPan is hard left.
	MaxPan = 500

	// ReverbDivider and ChorusDivider scale send generators (0..1000)
	// into bus gains.
	ReverbDivider = 3070
	ChorusDivider = 1500

	// Smoothing is the per-block weight by which the current pan follows
	// its target.
	Smoothing = 0.05

	tableSize = 2*MaxPan + 1
)

type panTables struct {
	left, right [tableSize]float32
}

var tables = sync.OnceValue(func() *panTables {
	t := new(panTables)
	for i := range tableSize {
		x := math32.Pi / 2 * float32(i) / (tableSize - 1)
		t.left[i] = math32.Cos(x)
		t.right[i] = math32.Sin(x)
	}
	t.left[0], t.right[0] = 1, 0
	t.left[tableSize-1], t.right[tableSize-1] = 0, 1
	return t
})

// Gains returns the left and right gains for pan in [-MaxPan, MaxPan].
func Gains(pan float64) (left, right float32) {
	i := int(pan+MaxPan+0.5)
	i = max(0, min(i, tableSize-1))
	t := tables()
	return t.left[i], t.right[i]
}

// Buses are the caller-owned output buffers a voice mixes into.
type Buses struct {
	Left, Right             []float32
	ReverbLeft, ReverbRight []float32
	ChorusLeft, ChorusRight []float32
}

// Send describes one block's routing for a voice.
type Send struct {
	// Pan is the target pan in [-MaxPan, MaxPan].
	Pan float64
	// Gain is a linear gain applied to every path.
	Gain float32
	// Reverb and Chorus are send generator values in 0..1000.
	Reverb, Chorus float64
	// ReverbGain and ChorusGain are global send levels.
	ReverbGain, ChorusGain float32
	// Effects enables the send paths.
	Effects bool
}

// Panner is a voice's smoothed pan position.
type Panner struct {
	current float64
}

// Reset places the pan at pan without smoothing.
func (p *Panner) Reset(pan float64) { p.current = pan }

// Current returns the smoothed pan position.
func (p *Panner) Current() float64 { return p.current }

// Mix adds in to the buses starting at offset. A nil bus is skipped; every
// other bus must hold at least offset+len(in) samples.
func (p *Panner) Mix(in []float32, b *Buses, offset int, s Send) {
	p.current += (s.Pan - p.current) * Smoothing
	gl, gr := Gains(p.current)
	gl *= s.Gain
	gr *= s.Gain

	mixInto(b.Left, offset, in, gl)
	mixInto(b.Right, offset, in, gr)

	if !s.Effects {
		return
	}
	if s.Reverb > 0 {
		g := s.ReverbGain * s.Gain * float32(s.Reverb/ReverbDivider)
		mixInto(b.ReverbLeft, offset, in, g)
		mixInto(b.ReverbRight, offset, in, g)
	}
	if s.Chorus > 0 {
		g := s.ChorusGain * float32(s.Chorus/ChorusDivider)
		mixInto(b.ChorusLeft, offset, in, g*gl)
		mixInto(b.ChorusRight, offset, in, g*gr)
	}
}

func mixInto(dst []float32, offset int, in []float32, g float32) {
	if dst == nil || g == 0 {
		return
	}
	dst = dst[offset : offset+len(in)]
	for i, x := range in {
		dst[i] += x * g
	}
}
