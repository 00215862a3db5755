package soundbank

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-sfsynth/synth/units"
)

func TestGenerateWaveforms(t *testing.T) {
	for _, w := range []string{"sine", "saw", "square", "triangle"} {
		t.Run(w, func(t *testing.T) {
			s, err := Generate(w, w, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(s.Data) != DefaultCycleLength || s.LoopStart != 0 || s.LoopEnd != DefaultCycleLength {
				t.Fatalf("cycle %d, loop %d..%d", len(s.Data), s.LoopStart, s.LoopEnd)
			}
			for i, v := range s.Data {
				if v < -1 || v > 1 {
					t.Fatalf("sample %d = %v out of range", i, v)
				}
			}
			if err := s.Validate(); err != nil {
				t.Fatal(err)
			}
		})
	}
	if _, err := Generate("x", "noise", 0, 0); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("unknown waveform error = %v", err)
	}
}

func TestGeneratePlaysInTune(t *testing.T) {
	s, err := Generate("sine", "sine", 256, 44100)
	if err != nil {
		t.Fatal(err)
	}
	// One cycle of 256 frames at 44.1 kHz is 172.27 Hz.
	cycleHz := 44100.0 / 256
	keyHz := 440 * math.Pow(2, float64(s.OriginalKey-69)/12)
	played := cycleHz * units.CentsToRatio(s.PitchCorrection)
	if math.Abs(played-keyHz) > 1e-6*keyHz {
		t.Fatalf("root key %d plays %v Hz, want %v Hz", s.OriginalKey, played, keyHz)
	}
	if math.Abs(s.PitchCorrection) > 50 {
		t.Fatalf("pitch correction %v exceeds half a semitone", s.PitchCorrection)
	}
}

func TestValidateSanitizes(t *testing.T) {
	s := &Sample{
		Name:        "bad",
		Data:        []float32{float32(math.NaN()), 0.5, float32(math.Inf(1))},
		SampleRate:  22050,
		OriginalKey: 200,
		LoopStart:   -4,
		LoopEnd:     10,
	}
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if s.Data[0] != 0 || s.Data[1] != 0.5 || s.Data[2] != 0 {
		t.Fatalf("data not sanitized: %v", s.Data)
	}
	if s.LoopStart != 0 || s.LoopEnd != 3 || s.OriginalKey != 127 {
		t.Fatalf("loop %d..%d key %d", s.LoopStart, s.LoopEnd, s.OriginalKey)
	}

	if err := (&Sample{Name: "empty", SampleRate: 44100}).Validate(); !errors.Is(err, ErrEmptySample) {
		t.Fatalf("empty sample error = %v", err)
	}
	if err := (&Sample{Name: "rate", Data: []float32{1}}).Validate(); !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("zero sample rate: err = %v, want ErrInvalidSample", err)
	}
	var missing *Sample
	if _, err := missing.AudioData(); !errors.Is(err, ErrEmptySample) {
		t.Fatalf("nil sample AudioData error = %v", err)
	}
}
