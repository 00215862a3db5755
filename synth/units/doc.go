// Package units converts SoundFont2 logarithmic units into linear values.
//
// Time is expressed in timecents (1200*log2(seconds)), pitch in absolute
// cents (6900 is A4 = 440 Hz) and level in centibels of attenuation. The
// decibel-to-gain conversion used on the per-sample path is a table lookup
// built once at package initialization.
package units
