// Package midimsg routes MIDI 1.0 channel messages to a synthesizer.
//
// A Dispatcher decodes gomidi messages into Channel calls and keeps the
// per-channel RPN and NRPN selection needed to interpret data entry
// controllers: RPN 0 sets the pitch bend range, RPNs 1 and 2 the fine and
// coarse channel tuning, and SoundFont NRPNs (MSB 120) set live generator
// offsets. A Sequencer plays a timed list of messages, for example one
// read from a Standard MIDI File, with sample-accurate timing.
package midimsg
