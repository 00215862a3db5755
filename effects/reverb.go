package effects

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultReverbDecay     = 1.8
	defaultReverbPartition = 512
	defaultReverbWet       = 0.5
	defaultReverbSeed      = 1
)

// ErrEmptyImpulse is returned for impulse responses without samples.
var ErrEmptyImpulse = errors.New("effects: empty impulse response")

// ReverbConfig holds reverb construction settings.
type ReverbConfig struct {
	Decay     float64 // seconds to -60 dB of the synthetic impulse
	Partition int     // block length and latency in samples
	Wet       float64
	Seed      int64

	left, right []float64
}

// ReverbOption mutates a ReverbConfig.
type ReverbOption func(*ReverbConfig)

// WithReverbDecay sets the decay time of the synthetic impulse response.
func WithReverbDecay(seconds float64) ReverbOption {
	return func(cfg *ReverbConfig) {
		if seconds > 0 {
			cfg.Decay = seconds
		}
	}
}

// WithReverbPartition sets the partition length, rounded up to a power
// of two.
func WithReverbPartition(n int) ReverbOption {
	return func(cfg *ReverbConfig) {
		if n > 0 {
			cfg.Partition = nextPowerOf2(n)
		}
	}
}

// WithReverbWet sets the initial wet gain.
func WithReverbWet(g float64) ReverbOption {
	return func(cfg *ReverbConfig) {
		if g >= 0 {
			cfg.Wet = g
		}
	}
}

// WithReverbSeed sets the noise seed of the synthetic impulse response.
func WithReverbSeed(seed int64) ReverbOption {
	return func(cfg *ReverbConfig) { cfg.Seed = seed }
}

// WithImpulseResponse replaces the synthetic impulse response.
func WithImpulseResponse(left, right []float64) ReverbOption {
	return func(cfg *ReverbConfig) {
		cfg.left = left
		cfg.right = right
	}
}

// Reverb is a stereo convolution reverb fed by a mono send.
//
// The impulse response is split into partitions of P samples, each
// transformed once at construction. Every P input samples one forward FFT
// of size 2P is pushed into a frequency-domain delay line, multiplied
// against all partitions and transformed back (uniformly partitioned
// overlap-save). Latency is P samples.
type Reverb struct {
	partition int
	fftSize   int
	plan      *algofft.Plan[complex128]

	kernelL, kernelR [][]complex128
	fdl              [][]complex128
	fdlPos           int

	window  []complex128
	accL    []complex128
	accR    []complex128
	timeL   []complex128
	timeR   []complex128
	prev    []float64
	in      []float64
	outL    []float64
	outR    []float64
	ramp    []float64
	pos     int
	wet     float64
	lastWet float64
	err     error
}

// NewReverb returns a reverb at sampleRate.
func NewReverb(sampleRate float64, opts ...ReverbOption) (*Reverb, error) {
	cfg := ReverbConfig{
		Decay:     defaultReverbDecay,
		Partition: defaultReverbPartition,
		Wet:       defaultReverbWet,
		Seed:      defaultReverbSeed,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	left, right := cfg.left, cfg.right
	if left == nil && right == nil {
		var err error
		left, right, err = SyntheticImpulse(sampleRate, cfg.Decay, cfg.Seed)
		if err != nil {
			return nil, err
		}
	}
	if right == nil {
		right = left
	}
	if left == nil {
		left = right
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, ErrEmptyImpulse
	}

	p := cfg.Partition
	r := &Reverb{
		partition: p,
		fftSize:   2 * p,
		wet:       cfg.Wet,
		lastWet:   cfg.Wet,
	}
	plan, err := algofft.NewPlan64(r.fftSize)
	if err != nil {
		return nil, fmt.Errorf("effects: reverb FFT plan: %w", err)
	}
	r.plan = plan

	if r.kernelL, err = r.partitionKernel(left); err != nil {
		return nil, err
	}
	if r.kernelR, err = r.partitionKernel(right); err != nil {
		return nil, err
	}
	for len(r.kernelL) < len(r.kernelR) {
		r.kernelL = append(r.kernelL, make([]complex128, r.fftSize))
	}
	for len(r.kernelR) < len(r.kernelL) {
		r.kernelR = append(r.kernelR, make([]complex128, r.fftSize))
	}

	r.fdl = make([][]complex128, len(r.kernelL))
	for i := range r.fdl {
		r.fdl[i] = make([]complex128, r.fftSize)
	}
	r.window = make([]complex128, r.fftSize)
	r.accL = make([]complex128, r.fftSize)
	r.accR = make([]complex128, r.fftSize)
	r.timeL = make([]complex128, r.fftSize)
	r.timeR = make([]complex128, r.fftSize)
	r.prev = make([]float64, p)
	r.in = make([]float64, p)
	r.outL = make([]float64, p)
	r.outR = make([]float64, p)
	r.ramp = make([]float64, p)
	return r, nil
}

func (r *Reverb) partitionKernel(h []float64) ([][]complex128, error) {
	p := r.partition
	parts := make([][]complex128, 0, (len(h)+p-1)/p)
	for start := 0; start < len(h); start += p {
		padded := make([]complex128, r.fftSize)
		for i, v := range h[start:min(start+p, len(h))] {
			padded[i] = complex(v, 0)
		}
		spec := make([]complex128, r.fftSize)
		if err := r.plan.Forward(spec, padded); err != nil {
			return nil, fmt.Errorf("effects: reverb kernel FFT: %w", err)
		}
		parts = append(parts, spec)
	}
	return parts, nil
}

// Process convolves the average of inL and inR and writes the wet stereo
// return to outL and outR.
func (r *Reverb) Process(inL, inR, outL, outR []float32) {
	n := min(len(inL), len(inR), len(outL), len(outR))
	for i := range n {
		r.in[r.pos] = 0.5 * float64(inL[i]+inR[i])
		outL[i] = float32(r.outL[r.pos])
		outR[i] = float32(r.outR[r.pos])
		r.pos++
		if r.pos == r.partition {
			r.pos = 0
			if err := r.convolve(); err != nil && r.err == nil {
				r.err = err
			}
		}
	}
}

func (r *Reverb) convolve() error {
	p := r.partition
	for i, v := range r.prev {
		r.window[i] = complex(v, 0)
	}
	for i, v := range r.in {
		r.window[p+i] = complex(v, 0)
	}
	copy(r.prev, r.in)

	r.fdlPos--
	if r.fdlPos < 0 {
		r.fdlPos = len(r.fdl) - 1
	}
	if err := r.plan.Forward(r.fdl[r.fdlPos], r.window); err != nil {
		return fmt.Errorf("effects: reverb forward FFT: %w", err)
	}

	clear(r.accL)
	clear(r.accR)
	for k := range r.fdl {
		x := r.fdl[(r.fdlPos+k)%len(r.fdl)]
		hl, hr := r.kernelL[k], r.kernelR[k]
		for i, xv := range x {
			r.accL[i] += xv * hl[i]
			r.accR[i] += xv * hr[i]
		}
	}
	if err := r.plan.Inverse(r.timeL, r.accL); err != nil {
		return fmt.Errorf("effects: reverb inverse FFT: %w", err)
	}
	if err := r.plan.Inverse(r.timeR, r.accR); err != nil {
		return fmt.Errorf("effects: reverb inverse FFT: %w", err)
	}
	for i := range p {
		r.outL[i] = real(r.timeL[p+i])
		r.outR[i] = real(r.timeR[p+i])
	}

	step := (r.wet - r.lastWet) / float64(p)
	for i := range r.ramp {
		r.ramp[i] = r.lastWet + step*float64(i+1)
	}
	r.lastWet = r.wet
	vecmath.MulBlockInPlace(r.outL, r.ramp)
	vecmath.MulBlockInPlace(r.outR, r.ramp)
	return nil
}

// SetWet sets the wet gain. Changes ramp over the next partition.
func (r *Reverb) SetWet(g float64) error {
	if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return fmt.Errorf("%w: wet %v", ErrInvalidParameter, g)
	}
	r.wet = g
	return nil
}

// Wet returns the wet gain.
func (r *Reverb) Wet() float64 { return r.wet }

// Latency returns the delay of the wet return in samples.
func (r *Reverb) Latency() int { return r.partition }

// Partitions returns the number of impulse response partitions.
func (r *Reverb) Partitions() int { return len(r.kernelL) }

// Err returns the first FFT failure seen while processing, if any.
func (r *Reverb) Err() error { return r.err }

// Reset clears all convolution state.
func (r *Reverb) Reset() {
	for _, x := range r.fdl {
		clear(x)
	}
	clear(r.prev)
	clear(r.in)
	clear(r.outL)
	clear(r.outR)
	r.pos = 0
	r.lastWet = r.wet
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
