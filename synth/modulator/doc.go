// Package modulator implements SoundFont2 modulators: a primary and an
// optional secondary source, each mapped through a curve, scaled by a
// transform amount and added to a destination generator.
//
// Source curves are read from process-wide lookup tables covering the four
// curve types in every polarity and direction over the full 14-bit
// controller domain. The tables are built on first use and shared by all
// voices.
package modulator
