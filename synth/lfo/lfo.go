// Package lfo provides the delayed triangle low-frequency oscillator used
// for SoundFont2 vibrato and modulation LFOs.
package lfo

import (
	"math"

	"github.com/cwbudde/algo-sfsynth/synth/units"
)

// Triangle returns the value in [-1, 1] of a triangle LFO that starts at
// zero, rises first, and begins after delay seconds. t is the time since
// note-on in seconds.
func Triangle(delay, freq, t float64) float64 {
	if t < delay {
		return 0
	}
	x := (t-delay)*freq + 0.25
	return math.Abs(x-math.Floor(x+0.5))*4 - 1
}

// Params holds an LFO's delay and rate derived from generators.
type Params struct {
	Delay float64 // seconds
	Freq  float64 // Hz
}

// ParamsFromGenerators converts delay timecents and frequency absolute
// cents to seconds and Hz.
func ParamsFromGenerators(delayTc, freqCents int16) Params {
	return Params{
		Delay: units.TimecentsToSeconds(float64(delayTc)),
		Freq:  units.AbsCentsToHzFast(float64(freqCents)),
	}
}

// Value evaluates the LFO at t seconds after note-on.
func (p Params) Value(t float64) float64 {
	return Triangle(p.Delay, p.Freq, t)
}
