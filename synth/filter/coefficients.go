package filter

import "math"

// maxCutoffRatio caps the cutoff below Nyquist.
const maxCutoffRatio = 0.45

// Coefficients of a second-order section with a0 normalized to 1.
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// LowpassCoefficients designs the resonant lowpass for a cutoff in Hz and a SoundFont
// resonance in centibels. A resonance of 0 gives a Butterworth response;
// the passband is attenuated by half the resonance peak so raising Q does
// not raise the overall level as much.
func LowpassCoefficients(cutoffHz, resonanceCb, sampleRate float64) Coefficients {
	if sampleRate <= 0 {
		return Coefficients{B0: 1}
	}
	cutoffHz = math.Max(1, math.Min(cutoffHz, maxCutoffRatio*sampleRate))
	qDB := math.Max(0, resonanceCb) / 10
	q := math.Pow(10, (qDB-3.01)/20)
	gain := 1 / math.Sqrt(math.Pow(10, qDB/20))

	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := (1 - cw) * gain
	b0 := b1 / 2
	a0 := 1 + alpha

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b0 / a0,
		A1: -2 * cw / a0,
		A2: (1 - alpha) / a0,
	}
}

func (c Coefficients) lerp(to Coefficients, t float64) Coefficients {
	return Coefficients{
		B0: c.B0 + (to.B0-c.B0)*t,
		B1: c.B1 + (to.B1-c.B1)*t,
		B2: c.B2 + (to.B2-c.B2)*t,
		A1: c.A1 + (to.A1-c.A1)*t,
		A2: c.A2 + (to.A2-c.A2)*t,
	}
}

// MagnitudeAt returns |H(e^jw)| at freq Hz.
func (c Coefficients) MagnitudeAt(freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return cmplxAbs(num / den)
}

func cmplxAbs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}
