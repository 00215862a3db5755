// Package soundbank is an in-memory SoundFont2-style bank: samples,
// instruments and presets made of key/velocity-scoped zones.
//
// A [Preset] resolves a note into [ZoneSample] entries, each pairing a
// sample with the preset and instrument generators that apply to it and
// the final modulator list. Banks can be assembled in code or loaded from
// a YAML document that references WAV files.
package soundbank
