// Package generator defines the SoundFont2 generator enumeration, the
// per-type {min, max, default} limits and the fixed-size generator table a
// voice carries.
//
// Zone generators are summed raw (instrument value or default, plus preset
// value or zero) and clamped once after all types are accumulated. See
// [Sum] and [Build].
package generator
