package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	c := DeterministicNoise(43, 1.0, 64)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestImpulseAndDC(t *testing.T) {
	imp := Impulse(8, 3)
	for i, v := range imp {
		if (i == 3) != (v == 1) {
			t.Fatalf("imp[%d] = %v", i, v)
		}
	}
	if out := Impulse(4, 10); Peak(out) != 0 {
		t.Fatal("out-of-bounds impulse should be all zeros")
	}
	for i, v := range DC(0.5, 4) {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestSineCycleIsSeamless(t *testing.T) {
	c := SineCycle(64)
	// Wrapping from the last sample to the first is no larger than any
	// interior step.
	wrap := math.Abs(float64(c[0] - c[len(c)-1]))
	if wrap > MaxStep(c)+1e-6 {
		t.Fatalf("wrap step %v exceeds interior max %v", wrap, MaxStep(c))
	}
}
