package oscillator

import "fmt"

// Interpolation selects how samples between data points are produced.
type Interpolation uint8

const (
	Linear Interpolation = iota
	Nearest
	Hermite
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	case Hermite:
		return "hermite"
	default:
		return fmt.Sprintf("interpolation(%d)", uint8(i))
	}
}

// ParseInterpolation resolves "linear", "nearest" or "hermite".
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "linear", "":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	case "hermite", "cubic":
		return Hermite, nil
	default:
		return Linear, fmt.Errorf("oscillator: unknown interpolation %q", s)
	}
}

// LoopMode is the SF2 sampleModes value.
type LoopMode uint8

const (
	NoLoop LoopMode = iota
	Loop
	StartOnRelease
	LoopUntilRelease
)

// Sample is a voice's playback state over shared audio data.
type Sample struct {
	// Data is shared between voices and never written.
	Data []float32

	// PlaybackStep is the cursor increment at the root key.
	PlaybackStep float64
	Cursor       float64
	RootKey      int

	LoopStart int
	LoopEnd   int
	End       int
	Mode      LoopMode
	IsLooping bool
}

// NewSample returns playback state for data. sampleRate is the rate the
// data was recorded at, outputRate the engine rate and pitchCorrection a
// fine tuning in cents.
func NewSample(data []float32, sampleRate, outputRate, pitchCorrection float64, rootKey, loopStart, loopEnd int, mode LoopMode) Sample {
	return Sample{
		Data:         data,
		PlaybackStep: PlaybackStep(sampleRate, outputRate, pitchCorrection),
		RootKey:      rootKey,
		LoopStart:    loopStart,
		LoopEnd:      loopEnd,
		End:          len(data),
		Mode:         mode,
		IsLooping:    mode == Loop || mode == LoopUntilRelease,
	}
}

// Render fills out starting at the cursor, advancing it by
// PlaybackStep*ratio per sample. It returns true once a non-looping sample
// has run past its end; the rest of out is then zeroed.
func (s *Sample) Render(out []float32, ratio float64, interp Interpolation) bool {
	if s.End <= 0 || len(s.Data) == 0 {
		clear(out)
		return true
	}
	step := s.PlaybackStep * ratio
	looping := s.IsLooping && s.LoopEnd > s.LoopStart
	if looping {
		return s.renderLoop(out, step, interp)
	}
	return s.renderOneShot(out, step, interp)
}

func (s *Sample) renderLoop(out []float32, step float64, interp Interpolation) bool {
	data := s.Data
	loopStart, loopEnd := s.LoopStart, s.LoopEnd
	loopLen := loopEnd - loopStart
	fLoopEnd, fLoopLen := float64(loopEnd), float64(loopLen)
	cur := s.Cursor

	wrap := func(i int) int {
		if i >= loopEnd {
			i -= loopLen
		}
		return i
	}

	for i := range out {
		for cur >= fLoopEnd {
			cur -= fLoopLen
		}
		floor := int(cur)
		frac := cur - float64(floor)

		switch interp {
		case Nearest:
			out[i] = data[wrap(floor+1)]
		case Hermite:
			xm1 := floor - 1
			if floor >= loopStart && xm1 < loopStart {
				xm1 += loopLen
			}
			xm1 = max(xm1, 0)
			out[i] = hermite(frac, data[xm1], data[floor], data[wrap(floor+1)], data[wrap(wrap(floor+1)+1)])
		default:
			x0 := data[floor]
			out[i] = x0 + (data[wrap(floor+1)]-x0)*float32(frac)
		}
		cur += step
	}
	s.Cursor = cur
	return false
}

func (s *Sample) renderOneShot(out []float32, step float64, interp Interpolation) bool {
	data := s.Data
	end := min(s.End, len(data))
	window := 1
	if interp == Hermite {
		window = 2
	}
	cur := s.Cursor

	for i := range out {
		floor := int(cur)
		if floor+window >= end {
			clear(out[i:])
			s.Cursor = cur
			return true
		}
		frac := cur - float64(floor)

		switch interp {
		case Nearest:
			out[i] = data[floor+1]
		case Hermite:
			out[i] = hermite(frac, data[max(floor-1, 0)], data[floor], data[floor+1], data[floor+2])
		default:
			x0 := data[floor]
			out[i] = x0 + (data[floor+1]-x0)*float32(frac)
		}
		cur += step
	}
	s.Cursor = cur
	return false
}

// hermite is the four-point, third-order Hermite interpolator over
// xm1, x0, x1, x2 evaluated at frac in [0, 1).
func hermite(frac float64, xm1, x0, x1, x2 float32) float32 {
	c0 := float64(x0)
	c1 := 0.5 * float64(x1-xm1)
	c2 := float64(xm1) - 2.5*float64(x0) + 2*float64(x1) - 0.5*float64(x2)
	c3 := 0.5*float64(x2-xm1) + 1.5*float64(x0-x1)
	return float32(((c3*frac+c2)*frac+c1)*frac + c0)
}
