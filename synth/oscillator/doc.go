// Package oscillator reads sampled waveforms at a fractional cursor.
//
// A [Sample] holds a reference to shared, read-only audio data plus the
// per-voice playback state: cursor, step, loop bounds and looping mode.
// Three interpolation qualities are available and are chosen per engine.
// When looping, neighbour points that fall past the loop end wrap back to
// the loop start so the loop seam is as smooth as the loop body.
package oscillator
