package modulator

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-sfsynth/synth/generator"
)

func newContext() *Context {
	ctrl := make([]int16, ControllerCount)
	ctrl[7] = 100 << 7
	ctrl[11] = 127 << 7
	ctrl[NonCCOffset+int(PitchWheel)] = 8192
	ctrl[NonCCOffset+int(PitchWheelRange)] = 2 << 7
	return &Context{Controllers: ctrl, Key: 60, Velocity: 100}
}

func TestBipolarLinearPointSymmetry(t *testing.T) {
	s := Source{Bipolar: true, CC: true, Index: 1}
	for i := 1; i < resolution; i++ {
		a := s.Transform(i)
		b := s.Transform(resolution - i)
		if a != -b {
			t.Fatalf("curve(%d) = %v, curve(%d) = %v; want point symmetry", i, a, resolution-i, b)
		}
	}
	if got := s.Transform(resolution / 2); got != 0 {
		t.Fatalf("curve(0.5) = %v, want 0", got)
	}
}

func TestCurveShapes(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		raw  int
		want float64
	}{
		{"linear min", Source{}, 0, 0},
		{"linear half", Source{CC: true}, 8192, 0.5},
		{"negative linear", Source{CC: true, Negative: true}, 0, 1},
		{"bipolar min", Source{CC: true, Bipolar: true}, 0, -1},
		{"switch low", Source{CC: true, Curve: CurveSwitch}, 8000, 0},
		{"switch high", Source{CC: true, Curve: CurveSwitch}, 9000, 1},
		{"bipolar switch low", Source{CC: true, Curve: CurveSwitch, Bipolar: true}, 100, -1},
		{"concave start", Source{CC: true, Curve: CurveConcave}, 0, 0},
		{"convex start", Source{CC: true, Curve: CurveConvex}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.Transform(tt.raw); math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("Transform(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestConcaveIsMonotonic(t *testing.T) {
	for _, c := range []Curve{CurveConcave, CurveConvex} {
		s := Source{CC: true, Curve: c}
		prev := -1.0
		for i := 0; i < resolution; i += 7 {
			v := s.Transform(i)
			if v < prev {
				t.Fatalf("curve %d decreases at %d", c, i)
			}
			if v < 0 || v > 1 {
				t.Fatalf("curve %d out of range at %d: %v", c, i, v)
			}
			prev = v
		}
	}
}

func TestSourceRaw(t *testing.T) {
	ctx := newContext()
	ctx.Pressure = 3
	tests := []struct {
		src  Source
		want int
	}{
		{Source{}, MaxValue},
		{Source{Index: NoteOnKeyNum}, 60 << 7},
		{Source{Index: NoteOnVelocity}, 100 << 7},
		{Source{Index: PolyPressure}, 3 << 7},
		{Source{Index: PitchWheel}, 8192},
		{Source{Index: PitchWheelRange}, 2 << 7},
		{CC(7), 100 << 7},
		{Source{Index: Link}, 0},
	}
	for _, tt := range tests {
		if got := tt.src.Raw(ctx); got != tt.want {
			t.Fatalf("Raw(%+v) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestSourceEnumRoundTrip(t *testing.T) {
	s := Source{Index: 74, CC: true, Curve: CurveConvex, Bipolar: true, Negative: true}
	if got := SourceFromEnum(s.Enum()); got != s {
		t.Fatalf("SourceFromEnum(Enum()) = %+v, want %+v", got, s)
	}
	// SF2 default velocity to attenuation source.
	if got := (Source{Index: NoteOnVelocity, Curve: CurveConcave, Negative: true}).Enum(); got != 0x0502 {
		t.Fatalf("Enum = %#04x, want 0x0502", got)
	}
}

func TestZeroAmountContributesNothing(t *testing.T) {
	ctx := newContext()
	for raw := 0; raw <= MaxValue; raw += 1000 {
		ctx.Controllers[1] = int16(raw)
		ctx.Velocity = raw >> 7
		m := New(CC(1), Source{Index: NoteOnVelocity}, generator.Pan, 0, TransformAbsolute)
		m.Value = 123
		if got := m.Compute(ctx); got != 0 || m.Value != 0 {
			t.Fatalf("zero-amount modulator returned %v (stored %v)", got, m.Value)
		}
	}
}

func TestEffectModulatorCorrection(t *testing.T) {
	ctx := newContext()
	ctx.Controllers[91] = MaxValue
	tests := []struct {
		amount int16
		want   float64
	}{
		{200, 1000},
		{100, 500},
		{400, 1000},
		{1200, 1200},
	}
	for _, tt := range tests {
		m := New(CC(91), Source{}, generator.ReverbEffectsSend, tt.amount, TransformLinear)
		if !m.IsEffect {
			t.Fatal("CC91 to reverb send not flagged as effect modulator")
		}
		got := m.Compute(ctx)
		full := float64(MaxValue) / resolution
		want := tt.want * full * full
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("amount %d: got %v, want %v", tt.amount, got, want)
		}
	}

	plain := New(CC(91), Source{}, generator.Pan, 200, TransformLinear)
	if plain.IsEffect {
		t.Fatal("CC91 to pan must not be an effect modulator")
	}
}

func TestAbsoluteTransform(t *testing.T) {
	ctx := newContext()
	ctx.Controllers[1] = 0
	m := New(Source{Index: 1, CC: true, Bipolar: true}, Source{}, generator.FineTune, 100, TransformAbsolute)
	want := 100 * float64(MaxValue) / resolution
	if got := m.Compute(ctx); math.Abs(got-want) > 1e-4 {
		t.Fatalf("absolute transform = %v, want %v", got, want)
	}
}

func TestNoControllerUsesCurveTable(t *testing.T) {
	ctx := newContext()
	full := float64(MaxValue) / resolution
	tests := []struct {
		name string
		src  Source
		want float64
	}{
		{"linear", Source{}, full},
		{"negative", Source{Negative: true}, 1 - full},
		{"bipolar", Source{Bipolar: true}, 2*full - 1},
		{"negative bipolar", Source{Bipolar: true, Negative: true}, 1 - 2*full},
		{"switch negative", Source{Curve: CurveSwitch, Negative: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.src.IsNone() {
				t.Fatalf("%+v is not the no-controller source", tt.src)
			}
			if got := tt.src.Value(ctx); math.Abs(got-tt.want) > 1e-6 {
				t.Fatalf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultResonantOffset(t *testing.T) {
	ctx := newContext()
	mods := Defaults()
	var res *Modulator
	for i := range mods {
		if mods[i].IsDefaultResonant {
			res = &mods[i]
		}
	}
	if res == nil {
		t.Fatal("no default resonant modulator in defaults")
	}

	ctx.Controllers[DefaultResonantCC] = MaxValue
	v := res.Compute(ctx)
	if v <= 0 {
		t.Fatalf("resonant modulator value = %v, want > 0", v)
	}
	if got := res.ResonanceOffset(); got != v/2 {
		t.Fatalf("ResonanceOffset = %v, want %v", got, v/2)
	}

	ctx.Controllers[DefaultResonantCC] = 0
	res.Compute(ctx)
	if got := res.ResonanceOffset(); got != 0 {
		t.Fatalf("ResonanceOffset below centre = %v, want 0", got)
	}
}

func TestIdentical(t *testing.T) {
	a := New(CC(1), Source{}, generator.VibLfoToPitch, 50, TransformLinear)
	b := New(CC(1), Source{}, generator.VibLfoToPitch, 80, TransformLinear)
	if !a.Identical(&b, false) {
		t.Fatal("modulators differing only by amount should be identical")
	}
	if a.Identical(&b, true) {
		t.Fatal("amount must be compared when requested")
	}
	c := New(CC(2), Source{}, generator.VibLfoToPitch, 50, TransformLinear)
	if a.Identical(&c, false) {
		t.Fatal("different sources reported identical")
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	a := Defaults()
	b := Defaults()
	a[0].Value = 42
	if b[0].Value == 42 {
		t.Fatal("Defaults shares storage between calls")
	}
}

func TestPitchWheelDefaultModulator(t *testing.T) {
	ctx := newContext()
	var bend Modulator
	for _, m := range Defaults() {
		if m.Destination == generator.FineTune {
			bend = m
		}
	}
	if got := bend.Compute(ctx); got != 0 {
		t.Fatalf("centred wheel gives %v cents, want 0", got)
	}
	ctx.Controllers[NonCCOffset+int(PitchWheel)] = 0
	got := bend.Compute(ctx)
	want := -12700.0 * float64(2<<7) / resolution
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("full down wheel = %v cents, want %v", got, want)
	}
}

func BenchmarkCompute(b *testing.B) {
	ctx := newContext()
	mods := Defaults()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := range mods {
			mods[j].Compute(ctx)
		}
	}
}
