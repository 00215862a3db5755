package modulator

import "github.com/cwbudde/algo-sfsynth/synth/units"

// Curve is a SoundFont2 source curve type.
type Curve uint8

const (
	CurveLinear Curve = iota
	CurveConcave
	CurveConvex
	CurveSwitch

	curveCount = 4
)

// Non-CC source indices.
const (
	NoController    uint8 = 0
	NoteOnVelocity  uint8 = 2
	NoteOnKeyNum    uint8 = 3
	PolyPressure    uint8 = 10
	ChannelPressure uint8 = 13
	PitchWheel      uint8 = 14
	PitchWheelRange uint8 = 16
	Link            uint8 = 127
)

const (
	// NonCCOffset is where non-CC sources live in a controller table.
	NonCCOffset = 128
	// ControllerCount is the length of a controller table.
	ControllerCount = NonCCOffset + 19
	// MaxValue is the largest 14-bit controller value.
	MaxValue = 16383

	resolution = MaxValue + 1
)

// Source describes where a modulator reads its input and how the raw
// value is shaped.
type Source struct {
	Index    uint8
	CC       bool
	Curve    Curve
	Bipolar  bool
	Negative bool
}

// CC returns a unipolar positive linear source reading controller cc.
func CC(cc uint8) Source { return Source{Index: cc, CC: true} }

// Enum packs s into the 16-bit SF2 source enumeration.
func (s Source) Enum() uint16 {
	e := uint16(s.Index&0x7f) | uint16(s.Curve)<<10
	if s.CC {
		e |= 1 << 7
	}
	if s.Negative {
		e |= 1 << 8
	}
	if s.Bipolar {
		e |= 1 << 9
	}
	return e
}

// SourceFromEnum unpacks a 16-bit SF2 source enumeration. Curve types
// outside the four defined ones fall back to linear.
func SourceFromEnum(e uint16) Source {
	c := Curve(e >> 10)
	if c >= curveCount {
		c = CurveLinear
	}
	return Source{
		Index:    uint8(e & 0x7f),
		CC:       e&(1<<7) != 0,
		Negative: e&(1<<8) != 0,
		Bipolar:  e&(1<<9) != 0,
		Curve:    c,
	}
}

// IsNone reports whether s is the "no controller" source that always
// reads as full scale.
func (s Source) IsNone() bool { return !s.CC && s.Index == NoController }

// Context is the live input a voice's modulators read from.
type Context struct {
	// Controllers holds ControllerCount 14-bit values.
	Controllers []int16
	Key         int
	Velocity    int
	Pressure    int
}

// Raw returns the 14-bit input of s before curve shaping.
func (s Source) Raw(ctx *Context) int {
	var v int
	switch {
	case s.CC:
		v = controller(ctx.Controllers, int(s.Index))
	case s.Index == NoController:
		return MaxValue
	case s.Index == NoteOnKeyNum:
		v = ctx.Key << 7
	case s.Index == NoteOnVelocity:
		v = ctx.Velocity << 7
	case s.Index == PolyPressure:
		v = ctx.Pressure << 7
	case s.Index == Link:
		return 0
	default:
		v = controller(ctx.Controllers, int(s.Index)+NonCCOffset)
	}
	return max(0, min(v, MaxValue))
}

func controller(table []int16, i int) int {
	if i >= len(table) {
		return 0
	}
	return int(table[i])
}

// Transform maps a raw 14-bit input through the curve of s.
func (s Source) Transform(raw int) float64 {
	raw = max(0, min(raw, MaxValue))
	return float64(curves()[s.Curve][boolIndex(s.Bipolar)][boolIndex(s.Negative)][raw])
}

// Value resolves s against ctx and applies its curve. The no-controller
// source reads MaxValue and is shaped like any other input.
func (s Source) Value(ctx *Context) float64 {
	return s.Transform(s.Raw(ctx))
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// curveValue evaluates a curve for a normalized input in [0, 1] that has
// already been inverted for negative sources.
func curveValue(c Curve, bipolar bool, v float64) float64 {
	switch c {
	case CurveSwitch:
		if v > 0.5 {
			v = 1
		} else {
			v = 0
		}
		if bipolar {
			return 2*v - 1
		}
		return v
	case CurveConcave, CurveConvex:
		shape := units.Concave
		if c == CurveConvex {
			shape = units.Convex
		}
		if !bipolar {
			return shape(v)
		}
		v = 2*v - 1
		if v < 0 {
			return -shape(-v)
		}
		return shape(v)
	default:
		if bipolar {
			return 2*v - 1
		}
		return v
	}
}
