package soundbank

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptySample is returned for samples without audio data.
	ErrEmptySample = errors.New("soundbank: sample has no audio data")
	// ErrInvalidSample is returned for samples whose rate or tuning
	// cannot be played back.
	ErrInvalidSample = errors.New("soundbank: invalid sample")
	// ErrInvalidDocument is returned for malformed bank documents.
	ErrInvalidDocument = errors.New("soundbank: invalid bank document")
)

// Sample is decoded mono audio shared by every voice that plays it.
type Sample struct {
	Name            string
	Data            []float32
	SampleRate      float64
	PitchCorrection float64 // cents
	OriginalKey     int
	LoopStart       int
	LoopEnd         int
}

// AudioData returns the sample frames.
func (s *Sample) AudioData() ([]float32, error) {
	if s == nil || len(s.Data) == 0 {
		return nil, ErrEmptySample
	}
	return s.Data, nil
}

// Validate checks the sample for values a voice cannot use. NaN and
// infinite frames are replaced with silence and loop points are clamped
// into the data.
func (s *Sample) Validate() error {
	if len(s.Data) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptySample, s.Name)
	}
	if !(s.SampleRate > 0) || math.IsInf(s.SampleRate, 0) {
		return fmt.Errorf("%w: %q has sample rate %v", ErrInvalidSample, s.Name, s.SampleRate)
	}
	if math.IsNaN(s.PitchCorrection) || math.IsInf(s.PitchCorrection, 0) {
		return fmt.Errorf("%w: %q has pitch correction %v", ErrInvalidSample, s.Name, s.PitchCorrection)
	}
	for i, v := range s.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			s.Data[i] = 0
		}
	}
	s.LoopStart = max(0, min(s.LoopStart, len(s.Data)))
	s.LoopEnd = max(0, min(s.LoopEnd, len(s.Data)))
	s.OriginalKey = max(0, min(s.OriginalKey, 127))
	return nil
}

// DefaultCycleLength is the single-cycle length used by Generate when no
// length is given.
const DefaultCycleLength = 256

// Generate synthesizes one looped cycle of a basic waveform ("sine",
// "saw", "square" or "triangle"). The original key and pitch correction
// are set so the sample plays in tune.
func Generate(name, waveform string, length int, sampleRate float64) (*Sample, error) {
	if length <= 0 {
		length = DefaultCycleLength
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	data := make([]float32, length)
	n := float64(length)
	for i := range data {
		phase := float64(i) / n
		var v float64
		switch waveform {
		case "sine":
			v = math.Sin(2 * math.Pi * phase)
		case "saw":
			v = 2*phase - 1
		case "square":
			v = 1
			if phase >= 0.5 {
				v = -1
			}
		case "triangle":
			v = 1 - 4*math.Abs(phase-0.5)
		default:
			return nil, fmt.Errorf("%w: unknown waveform %q", ErrInvalidDocument, waveform)
		}
		data[i] = float32(v)
	}

	key := 69 + 12*math.Log2(sampleRate/n/440)
	root := math.Round(key)
	return &Sample{
		Name:            name,
		Data:            data,
		SampleRate:      sampleRate,
		OriginalKey:     int(root),
		PitchCorrection: (root - key) * 100,
		LoopStart:       0,
		LoopEnd:         length,
	}, nil
}
