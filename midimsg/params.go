package midimsg

import (
	"github.com/cwbudde/algo-sfsynth/synth"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
)

// Controllers that select and set registered and non-registered
// parameters.
const (
	ccDataEntryMSB = 6
	ccDataEntryLSB = 38
	ccNRPNLSB      = 98
	ccNRPNMSB      = 99
	ccRPNLSB       = 100
	ccRPNMSB       = 101
)

// Registered parameter numbers (LSB, with MSB 0).
const (
	rpnPitchBendRange = 0
	rpnFineTuning     = 1
	rpnCoarseTuning   = 2
	rpnNull           = 127
)

// nrpnSoundFont is the NRPN MSB that addresses SoundFont generators.
const nrpnSoundFont = 120

type paramKind uint8

const (
	paramNone paramKind = iota
	paramRPN
	paramNRPN
)

// params is the parameter selection state of one channel.
type params struct {
	kind paramKind

	rpnMSB, rpnLSB int
	nrpnMSB        int

	// generatorBase accumulates the SoundFont select LSBs 100-102 until
	// an index below 100 completes the generator number.
	generatorBase int
	generator     int

	dataMSB, dataLSB int

	fineCents, coarseCents float64
}

func (p *params) reset() {
	*p = params{rpnMSB: rpnNull, rpnLSB: rpnNull, generator: -1}
}

// controlChange consumes the parameter controllers. It reports false for
// every other controller.
func (p *params) controlChange(c *synth.Channel, cc, value int) bool {
	switch cc {
	case ccRPNMSB:
		p.kind = paramRPN
		p.rpnMSB = value
	case ccRPNLSB:
		p.kind = paramRPN
		p.rpnLSB = value
	case ccNRPNMSB:
		p.kind = paramNRPN
		p.nrpnMSB = value
		p.generatorBase = 0
		p.generator = -1
	case ccNRPNLSB:
		p.kind = paramNRPN
		p.selectGenerator(value)
	case ccDataEntryMSB:
		p.dataMSB = value
		p.dataLSB = 0
		p.apply(c)
	case ccDataEntryLSB:
		p.dataLSB = value
		p.apply(c)
	default:
		return false
	}
	if p.kind == paramRPN && p.rpnMSB == rpnNull && p.rpnLSB == rpnNull {
		p.kind = paramNone
	}
	return true
}

func (p *params) selectGenerator(lsb int) {
	if p.nrpnMSB != nrpnSoundFont {
		return
	}
	switch lsb {
	case 100:
		p.generatorBase += 100
	case 101:
		p.generatorBase += 1000
	case 102:
		p.generatorBase += 10000
	default:
		p.generator = p.generatorBase + lsb
		p.generatorBase = 0
	}
}

func (p *params) value14() int { return p.dataMSB<<7 | p.dataLSB }

func (p *params) apply(c *synth.Channel) {
	switch p.kind {
	case paramRPN:
		if p.rpnMSB != 0 {
			return
		}
		switch p.rpnLSB {
		case rpnPitchBendRange:
			c.SetPitchWheelRange(p.dataMSB, p.dataLSB)
		case rpnFineTuning:
			p.fineCents = float64(p.value14()-8192) / 8192 * 100
			c.SetTuning(p.coarseCents + p.fineCents)
		case rpnCoarseTuning:
			p.coarseCents = float64(p.dataMSB-64) * 100
			c.SetTuning(p.coarseCents + p.fineCents)
		}
	case paramNRPN:
		if p.nrpnMSB != nrpnSoundFont || p.generator < 0 || p.generator >= generator.Count {
			return
		}
		c.SetGeneratorOffset(generator.Type(p.generator), int16(p.value14()-8192))
	}
}
