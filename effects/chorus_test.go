package effects

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-sfsynth/internal/testutil"
)

func TestChorusDelaysInput(t *testing.T) {
	const sr = 48000
	c, err := NewChorus(sr, WithChorusDepth(0), WithChorusDelay(0.001), WithChorusLevel(1))
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	in := testutil.Impulse(200, 0)
	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	c.Process(in, in, outL, outR)

	// With no swing the wet path is a plain 48-sample delay.
	if outL[48] < 0.99 || outR[48] < 0.99 {
		t.Fatalf("delayed impulse = %v / %v, want 1", outL[48], outR[48])
	}
	testutil.RequireSilent(t, outL[:47])
}

func TestChorusStaysBoundedAndDecorrelated(t *testing.T) {
	c, err := NewChorus(44100, WithChorusRate(2), WithChorusDepth(0.004))
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	in := testutil.DeterministicSine(440, 44100, 0.5, 44100/4)
	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	c.Process(in, in, outL, outR)

	testutil.RequireFinite(t, outL)
	if p := testutil.Peak(outL); p > 0.5*c.Config().Level*1.1 {
		t.Fatalf("peak = %v exceeds input level", p)
	}
	if d, _ := testutil.MaxAbsDiff(outL, outR); d == 0 {
		t.Fatal("left and right should differ")
	}
}

func TestChorusValidation(t *testing.T) {
	if _, err := NewChorus(0); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("zero rate error = %v", err)
	}
	if _, err := NewChorus(44100, WithChorusDelay(0.002), WithChorusDepth(0.003)); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("depth above delay error = %v", err)
	}
	c, err := NewChorus(44100)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	if err := c.SetLevel(-0.5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("SetLevel error = %v", err)
	}
}

func TestChorusResetClearsState(t *testing.T) {
	c, err := NewChorus(44100)
	if err != nil {
		t.Fatalf("NewChorus: %v", err)
	}
	in := testutil.DC(1, 2048)
	out := make([]float32, len(in))
	c.Process(in, in, out, make([]float32, len(in)))
	c.Reset()

	silence := make([]float32, 256)
	c.Process(silence, silence, out[:256], make([]float32, 256))
	testutil.RequireSilent(t, out[:256])
}
