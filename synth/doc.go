// Package synth is a block-synchronous SoundFont2 voice engine.
//
// A [Synthesizer] owns a set of MIDI channels. Each note-on resolves the
// channel's preset into voice templates (cached per bank, program, key and
// velocity), stamps private [Voice] copies, applies channel state such as
// dynamic modulators, generator overrides and exclusive classes, and adds
// them to the channel. Every render block advances each voice through
// modulation, tuning, oscillator, filter, volume envelope and panning, and
// sums the result into caller-provided dry and effect send buses.
//
// All exported methods are safe for concurrent use. Control changes made
// while a render call is running take effect between render calls, so
// every voice of a channel sees the same controller state for a block.
package synth
