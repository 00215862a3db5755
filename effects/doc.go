// Package effects turns the synthesizer's reverb and chorus send buses
// into wet stereo returns.
//
// [Reverb] convolves the mono reverb send with a stereo impulse response
// using uniformly partitioned FFT convolution. [Chorus] runs each send
// channel through an LFO-modulated delay line. Both accept arbitrary
// block lengths and stop allocating once their scratch buffers have grown
// to the longest block seen.
package effects
