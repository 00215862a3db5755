//go:build !cgo

package main

// Without cgo there is no MIDI driver; live only reads the prompt.
const midiAvailable = false
