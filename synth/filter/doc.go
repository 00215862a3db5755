// Package filter implements the voice low-pass filter: an RBJ resonant
// lowpass in Direct Form II Transposed whose cutoff and resonance follow
// the modulated generators block by block.
//
// The base cutoff is smoothed toward its generator value, and when the
// coefficients change they are ramped across the block instead of
// switching at its first sample.
package filter
