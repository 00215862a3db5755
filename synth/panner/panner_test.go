package panner

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sfsynth/internal/testutil"
)

func newBuses(n int) *Buses {
	return &Buses{
		Left: make([]float32, n), Right: make([]float32, n),
		ReverbLeft: make([]float32, n), ReverbRight: make([]float32, n),
		ChorusLeft: make([]float32, n), ChorusRight: make([]float32, n),
	}
}

func TestGainsEndpoints(t *testing.T) {
	l, r := Gains(-MaxPan)
	if l != 1 || r != 0 {
		t.Fatalf("hard left gains = %v, %v; want 1, 0", l, r)
	}
	l, r = Gains(MaxPan)
	if l != 0 || r != 1 {
		t.Fatalf("hard right gains = %v, %v; want 0, 1", l, r)
	}
	l, r = Gains(0)
	if math.Abs(float64(l-r)) > 1e-6 || math.Abs(float64(l)-math.Sqrt2/2) > 1e-5 {
		t.Fatalf("centre gains = %v, %v; want equal power", l, r)
	}
	if l, r = Gains(-9999); l != 1 || r != 0 {
		t.Fatal("out of range pan not clamped")
	}
}

func TestEqualPower(t *testing.T) {
	for pan := -MaxPan; pan <= MaxPan; pan += 25 {
		l, r := Gains(float64(pan))
		if p := float64(l*l + r*r); math.Abs(p-1) > 1e-5 {
			t.Fatalf("power at pan %d = %v, want 1", pan, p)
		}
	}
}

func TestHardPannedVoicesReproduceInput(t *testing.T) {
	in := testutil.DeterministicNoise(3, 0.8, 64)
	b := newBuses(64)

	var left, right Panner
	left.Reset(-MaxPan)
	right.Reset(MaxPan)
	left.Mix(in, b, 0, Send{Pan: -MaxPan, Gain: 1})
	right.Mix(in, b, 0, Send{Pan: MaxPan, Gain: 1})

	testutil.RequireSliceNearlyEqual(t, b.Left, in, 0)
	testutil.RequireSliceNearlyEqual(t, b.Right, in, 0)
}

func TestMixAtOffsetIsAdditive(t *testing.T) {
	b := newBuses(16)
	b.Left[4] = 1
	var p Panner
	p.Reset(-MaxPan)
	p.Mix(testutil.DC(0.5, 4), b, 4, Send{Pan: -MaxPan, Gain: 1})
	if b.Left[3] != 0 || b.Left[4] != 1.5 || b.Left[7] != 0.5 || b.Left[8] != 0 {
		t.Fatalf("offset mix wrong: %v", b.Left)
	}
}

func TestSends(t *testing.T) {
	in := testutil.DC(1, 8)
	b := newBuses(8)
	var p Panner
	p.Mix(in, b, 0, Send{Gain: 1, Reverb: ReverbDivider / 2, Chorus: ChorusDivider, ReverbGain: 1, ChorusGain: 1, Effects: true})

	if math.Abs(float64(b.ReverbLeft[0])-0.5) > 1e-6 || b.ReverbLeft[0] != b.ReverbRight[0] {
		t.Fatalf("reverb send = %v/%v, want mono 0.5", b.ReverbLeft[0], b.ReverbRight[0])
	}
	if b.ChorusLeft[0] != b.Left[0] || b.ChorusRight[0] != b.Right[0] {
		t.Fatalf("chorus at full send should equal dry: %v vs %v", b.ChorusLeft[0], b.Left[0])
	}

	b = newBuses(8)
	p.Mix(in, b, 0, Send{Gain: 1, Reverb: 1000, Chorus: 1000, ReverbGain: 1, ChorusGain: 1})
	testutil.RequireSilent(t, b.ReverbLeft)
	testutil.RequireSilent(t, b.ChorusRight)
}

func TestPanIsSmoothed(t *testing.T) {
	var p Panner
	p.Reset(0)
	b := newBuses(4)
	p.Mix(testutil.DC(1, 4), b, 0, Send{Pan: MaxPan, Gain: 1})
	if p.Current() <= 0 || p.Current() >= MaxPan {
		t.Fatalf("pan after one block = %v, want between 0 and %d", p.Current(), MaxPan)
	}
}

func TestMixSkipsNilBuses(t *testing.T) {
	in := testutil.DC(1, 8)
	tests := []struct {
		name string
		b    Buses
	}{
		{"reverb left only", Buses{Left: make([]float32, 8), Right: make([]float32, 8), ReverbLeft: make([]float32, 8)}},
		{"chorus right only", Buses{Left: make([]float32, 8), Right: make([]float32, 8), ChorusRight: make([]float32, 8)}},
		{"dry left only", Buses{Left: make([]float32, 8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Panner
			p.Mix(in, &tt.b, 0, Send{Gain: 1, Reverb: ReverbDivider, Chorus: ChorusDivider, ReverbGain: 1, ChorusGain: 1, Effects: true})
			if tt.b.Left[0] == 0 {
				t.Fatal("dry left bus not written")
			}
			if tt.b.ReverbLeft != nil && tt.b.ReverbLeft[0] == 0 {
				t.Fatal("reverb left bus not written")
			}
			if tt.b.ChorusRight != nil && tt.b.ChorusRight[0] == 0 {
				t.Fatal("chorus right bus not written")
			}
		})
	}
}
