//go:build cgo

package main

// Registers the RtMidi driver used by live -midi-in.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

const midiAvailable = true
