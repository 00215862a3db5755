package midimsg

import (
	"bytes"
	"log/slog"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-sfsynth/synth"
)

// Synth is the part of a synthesizer a Dispatcher drives.
type Synth interface {
	Channel(i int) *synth.Channel
	Channels() int
}

// System exclusive resets, without the F0 and F7 framing. The device ID
// byte is masked out before comparison.
var (
	gmSystemOn = []byte{0x7e, 0x00, 0x09, 0x01}
	gsReset    = []byte{0x41, 0x00, 0x42, 0x12, 0x40, 0x00, 0x7f, 0x00, 0x41}
)

// Dispatcher applies MIDI messages to a synthesizer. Its methods must not
// be called concurrently; the synthesizer itself is safe to render while
// messages are dispatched.
type Dispatcher struct {
	synth  Synth
	log    *slog.Logger
	params []params
}

// New returns a dispatcher for s. A nil logger uses slog.Default.
func New(s Synth, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{synth: s, log: log, params: make([]params, s.Channels())}
	for i := range d.params {
		d.params[i].reset()
	}
	return d
}

// Listen has the signature of a gomidi listener callback.
func (d *Dispatcher) Listen(msg midi.Message, _ int32) {
	d.Dispatch(msg)
}

// Dispatch applies msg. It reports false for messages that were ignored,
// such as system messages or channels the synthesizer does not have.
func (d *Dispatcher) Dispatch(msg midi.Message) bool {
	var (
		ch, key, vel, cc, val uint8
		rel                   int16
		abs                   uint16
		data                  []byte
	)
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if c := d.channel(ch); c != nil {
			c.NoteOn(int(key), int(vel))
			return true
		}
	case msg.GetNoteEnd(&ch, &key):
		if c := d.channel(ch); c != nil {
			c.NoteOff(int(key))
			return true
		}
	case msg.GetControlChange(&ch, &cc, &val):
		if c := d.channel(ch); c != nil {
			d.controlChange(int(ch), c, int(cc), int(val))
			return true
		}
	case msg.GetPitchBend(&ch, &rel, &abs):
		if c := d.channel(ch); c != nil {
			c.PitchWheel(int(abs))
			return true
		}
	case msg.GetAfterTouch(&ch, &val):
		if c := d.channel(ch); c != nil {
			c.ChannelPressure(int(val))
			return true
		}
	case msg.GetPolyAfterTouch(&ch, &key, &val):
		if c := d.channel(ch); c != nil {
			c.PolyPressure(int(key), int(val))
			return true
		}
	case msg.GetProgramChange(&ch, &val):
		if c := d.channel(ch); c != nil {
			c.ProgramChange(int(val))
			return true
		}
	case msg.GetSysEx(&data):
		return d.sysEx(data)
	}
	return false
}

func (d *Dispatcher) channel(ch uint8) *synth.Channel {
	if int(ch) >= len(d.params) {
		return nil
	}
	return d.synth.Channel(int(ch))
}

func (d *Dispatcher) controlChange(ch int, c *synth.Channel, cc, value int) {
	p := &d.params[ch]
	if p.controlChange(c, cc, value) {
		return
	}
	if cc == synth.CCResetControllers {
		p.kind = paramNone
		p.rpnMSB, p.rpnLSB = rpnNull, rpnNull
	}
	c.ControllerChange(cc, value)
}

func (d *Dispatcher) sysEx(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte{0xf0})
	data = bytes.TrimSuffix(data, []byte{0xf7})
	if len(data) < 2 {
		return false
	}
	masked := bytes.Clone(data)
	masked[1] = 0
	if bytes.Equal(masked, gmSystemOn) || bytes.Equal(masked, gsReset) {
		d.log.Debug("system reset", "message", data)
		d.Reset()
		return true
	}
	return false
}

// Reset returns every channel to its power-on state: controllers, program,
// tuning, generator offsets and dynamic modulators. Channel 10 plays
// drums again.
func (d *Dispatcher) Reset() {
	for i := range d.params {
		c := d.synth.Channel(i)
		if c == nil {
			continue
		}
		d.params[i].reset()
		c.ResetControllers()
		c.ControllerChange(synth.CCBankSelect, 0)
		c.SetDrums(i == synth.DrumChannel)
		c.ProgramChange(0)
		c.SetTuning(0)
		c.ClearGeneratorOffsets()
		c.ClearDynamicModulators()
	}
}
