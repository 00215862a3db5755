// Package envelope implements the SoundFont2 volume and modulation
// envelopes as sample-time state machines.
//
// Both envelopes run delay, attack, hold, decay and sustain in order.
// Release is an overlay entered from whichever stage was active: the level
// at that instant is captured and the release segment is scaled by the
// distance left to travel. Durations are recomputed from generators on
// every [Volume.Recalculate] call since generators may be modulated
// continuously.
//
// Nominal SF2 decay and release times describe a full 100 dB sweep. A
// segment that only needs to cover part of that range is shortened in
// proportion.
package envelope
