package effects

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"
)

// ErrInvalidParameter is returned for out-of-range effect settings.
var ErrInvalidParameter = errors.New("effects: invalid parameter")

// SyntheticImpulse returns a stereo impulse response of exponentially
// decaying, decorrelated noise reaching -60 dB after decay seconds.
// The result is normalized to unit energy per channel.
func SyntheticImpulse(sampleRate, decay float64, seed int64) (left, right []float64, err error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, nil, fmt.Errorf("%w: sample rate %v", ErrInvalidParameter, sampleRate)
	}
	if decay <= 0 || decay > 10 || math.IsNaN(decay) {
		return nil, nil, fmt.Errorf("%w: decay %v", ErrInvalidParameter, decay)
	}

	n := max(1, int(decay*sampleRate))
	env := make([]float64, n)
	for i := range env {
		// 6.9078 = ln(1000), i.e. -60 dB at t = decay.
		env[i] = math.Exp(-6.907755278982137 * float64(i) / float64(n))
	}

	rng := rand.New(rand.NewSource(seed))
	noise := func() []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = 2*rng.Float64() - 1
		}
		vecmath.MulBlockInPlace(out, env)
		normalize(out)
		return out
	}
	return noise(), noise(), nil
}

func normalize(x []float64) {
	var energy float64
	for _, v := range x {
		energy += v * v
	}
	if energy == 0 {
		return
	}
	g := 1 / math.Sqrt(energy)
	for i := range x {
		x[i] *= g
	}
}
