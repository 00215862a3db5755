package synth

import (
	"math"
	"slices"

	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth/envelope"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

// DrumChannel is the channel that plays from the drum bank by default.
const DrumChannel = 9

// MIDI controller numbers with channel-level behavior.
const (
	CCBankSelect        = 0
	CCModulation        = 1
	CCPortamentoTime    = 5
	CCVolume            = 7
	CCPan               = 10
	CCExpression        = 11
	CCBankSelectLSB     = 32
	CCSustainPedal      = 64
	CCPortamentoOnOff   = 65
	CCBrightness        = 74
	CCPortamentoControl = 84
	CCReverbDepth       = 91
	CCChorusDepth       = 93
	CCAllSoundOff       = 120
	CCResetControllers  = 121
	CCAllNotesOff       = 123
)

// KeyModifier changes how one key of a channel plays.
type KeyModifier struct {
	// Velocity replaces the note-on velocity when it is 0..127.
	Velocity int
	// Gain scales the voices of the key linearly.
	Gain float32
}

var noKeyModifier = KeyModifier{Velocity: -1, Gain: 1}

// Channel holds the controller state and voices of one MIDI channel.
type Channel struct {
	synth  *Synthesizer
	number int

	controllers [modulator.ControllerCount]int16

	bankMSB int
	program int
	drums   bool

	// preset was resolved from presetBank and presetProgram. A CC0 bank
	// select only takes effect at the next program change.
	preset        soundbank.Resolver
	presetBank    int
	presetProgram int

	voices    []*Voice
	sustained []*Voice
	holdPedal bool

	overrides    [generator.Count]int16
	hasOverride  [generator.Count]bool
	anyOverrides bool

	offsets        [generator.Count]int16
	offsetsEnabled bool

	dynamic dynamicModulators

	keyModifiers [128]KeyModifier
	polyPressure [128]int

	tuningCents float64

	lastNote      int
	portamentoKey int
}

func newChannel(s *Synthesizer, number int) *Channel {
	c := &Channel{
		synth:  s,
		number: number,
		drums:  number == DrumChannel,
	}
	for i := range c.keyModifiers {
		c.keyModifiers[i] = noKeyModifier
	}
	c.resetControllers()
	c.resolvePreset()
	return c
}

// Number returns the channel index.
func (c *Channel) Number() int { return c.number }

func (c *Channel) bank() int {
	if c.drums {
		return soundbank.DrumBank
	}
	return c.bankMSB
}

func (c *Channel) resolvePreset() {
	s := c.synth
	r, ok := s.bank.Resolve(c.bank(), c.program)
	if !ok || r == nil {
		s.log.Warn("no preset, using placeholder", "channel", c.number, "bank", c.bank(), "program", c.program)
		r = soundbank.Placeholder
	}
	c.preset = r
	c.presetBank = c.bank()
	c.presetProgram = c.program
}

func (c *Channel) lock() func() {
	c.synth.mu.Lock()
	return c.synth.mu.Unlock
}

// NoteOn starts voices for note. A velocity of 0 is a note-off.
func (c *Channel) NoteOn(note, velocity int) {
	defer c.lock()()
	c.noteOn(note, velocity)
}

func (c *Channel) noteOn(note, velocity int) {
	if note < 0 || note > 127 {
		return
	}
	if velocity <= 0 {
		c.noteOff(note)
		return
	}
	velocity = min(velocity, 127)
	mod := c.keyModifiers[note]
	if mod.Velocity >= 0 {
		velocity = mod.Velocity
	}

	s := c.synth
	now := s.time
	voices := s.voicesFor(c, note, velocity)
	if len(voices) == 0 {
		return
	}

	glideFrom, glideTime := c.portamento(note)
	for _, v := range voices {
		v.gain = mod.Gain
		v.pressure = c.polyPressure[note]
		if glideTime > 0 {
			v.portamentoFrom = glideFrom
			v.portamentoDuration = glideTime
		}
		c.dynamic.mergeInto(v)
		if c.anyOverrides {
			for t, ok := range c.hasOverride {
				if ok {
					v.generators[t] = c.overrides[t]
				}
			}
		}
		v.exclusiveClass = int(v.generators[generator.ExclusiveClass])
		v.volEnv = envelope.NewVolume(s.cfg.SampleRate, &v.generators)
	}

	for _, v := range voices {
		if v.exclusiveClass == 0 {
			continue
		}
		for _, other := range c.voices {
			if other.exclusiveClass == v.exclusiveClass && !other.finished {
				other.forceRelease(now, exclusiveReleaseTc)
			}
		}
	}

	for _, v := range voices {
		v.computeAll(c)
		v.applySampleOffsets()
		v.volEnv.SnapAttenuation()
		v.pan.Reset(v.panTarget(s))
	}

	s.stealVoices(len(voices))
	c.voices = append(c.voices, voices...)
	c.lastNote = note
	c.portamentoKey = -1
}

// portamento returns the key to glide from and the glide time in seconds,
// or a zero time when no glide applies.
func (c *Channel) portamento(note int) (int, float64) {
	from := c.portamentoKey
	if from < 0 {
		if c.controllers[CCPortamentoOnOff] < 64<<7 {
			return -1, 0
		}
		from = c.lastNote
	}
	if from < 0 || from == note {
		return -1, 0
	}
	cc5 := float64(c.controllers[CCPortamentoTime] >> 7)
	return from, 0.0025 * math.Pow(2, cc5/12)
}

// NoteOff releases every voice of note, or defers the release while the
// sustain pedal is down.
func (c *Channel) NoteOff(note int) {
	defer c.lock()()
	c.noteOff(note)
}

func (c *Channel) noteOff(note int) {
	s := c.synth
	for _, v := range c.voices {
		if v.midiNote != note || v.releaseStartTime != noRelease {
			continue
		}
		if c.holdPedal {
			if !slices.Contains(c.sustained, v) {
				c.sustained = append(c.sustained, v)
			}
			continue
		}
		v.scheduleRelease(s.time, s.minNoteLength)
	}
}

// KillNote releases the voices of note immediately with the given
// release time in timecents. A negative note kills every voice.
func (c *Channel) KillNote(note int, releaseTc int16) {
	defer c.lock()()
	c.killNote(note, releaseTc)
}

func (c *Channel) killNote(note int, releaseTc int16) {
	now := c.synth.time
	for _, v := range c.voices {
		if note < 0 || v.midiNote == note {
			v.forceRelease(now, releaseTc)
		}
	}
	c.sustained = c.sustained[:0]
}

// StopAll releases every voice normally.
func (c *Channel) StopAll() {
	defer c.lock()()
	c.allNotesOff()
}

func (c *Channel) allNotesOff() {
	s := c.synth
	for _, v := range c.voices {
		v.scheduleRelease(s.time, s.minNoteLength)
	}
	c.sustained = c.sustained[:0]
}

// ControllerChange sets a 7-bit controller. Controllers 0-31 set the most
// significant bits of a 14-bit value and 32-63 the least significant
// bits of the matching controller.
func (c *Channel) ControllerChange(cc, value int) {
	defer c.lock()()
	c.controllerChange(cc, value)
}

func (c *Channel) controllerChange(cc, value int) {
	if cc < 0 || cc > 127 {
		return
	}
	value = max(0, min(value, 127))

	switch cc {
	case CCBankSelect:
		c.bankMSB = value
	case CCBankSelectLSB:
		return
	case CCAllSoundOff:
		c.killNote(-1, killReleaseTc)
		return
	case CCResetControllers:
		c.resetAll()
		return
	case CCAllNotesOff:
		c.allNotesOff()
		return
	case CCPortamentoControl:
		c.portamentoKey = value
	}

	target := cc
	switch {
	case cc < 32:
		c.controllers[cc] = int16(value<<7) | c.controllers[cc]&0x7f
	case cc < 64:
		target = cc - 32
		c.controllers[target] = c.controllers[target]&^0x7f | int16(value)
	default:
		c.controllers[cc] = int16(value << 7)
	}

	if cc == CCSustainPedal {
		c.setHoldPedal(value >= 64)
	}
	c.updateVoices(true, uint8(target))
}

func (c *Channel) setHoldPedal(down bool) {
	c.holdPedal = down
	if down {
		return
	}
	s := c.synth
	for _, v := range c.sustained {
		v.scheduleRelease(s.time, s.minNoteLength)
	}
	c.sustained = c.sustained[:0]
}

func (c *Channel) updateVoices(cc bool, index uint8) {
	for _, v := range c.voices {
		v.update(c, cc, index)
	}
}

func (c *Channel) recomputeVoices() {
	for _, v := range c.voices {
		v.computeAll(c)
	}
}

// PitchWheel sets the 14-bit pitch wheel position; 8192 is centered.
func (c *Channel) PitchWheel(value int) {
	defer c.lock()()
	c.setSource(modulator.PitchWheel, value)
}

// ChannelPressure sets the 7-bit channel aftertouch.
func (c *Channel) ChannelPressure(value int) {
	defer c.lock()()
	c.setSource(modulator.ChannelPressure, max(0, min(value, 127))<<7)
}

// PolyPressure sets the 7-bit aftertouch of one key.
func (c *Channel) PolyPressure(note, value int) {
	defer c.lock()()
	if note < 0 || note > 127 {
		return
	}
	value = max(0, min(value, 127))
	c.polyPressure[note] = value
	for _, v := range c.voices {
		if v.midiNote == note {
			v.pressure = value
			v.update(c, false, modulator.PolyPressure)
		}
	}
}

// SetPitchWheelRange sets the bend range in semitones and cents.
func (c *Channel) SetPitchWheelRange(semitones, cents int) {
	defer c.lock()()
	c.setSource(modulator.PitchWheelRange, max(0, min(semitones, 127))<<7|max(0, min(cents, 127)))
}

func (c *Channel) setSource(index uint8, value int) {
	c.controllers[modulator.NonCCOffset+int(index)] = int16(max(0, min(value, modulator.MaxValue)))
	c.updateVoices(false, index)
}

// ProgramChange selects a preset from the current bank.
func (c *Channel) ProgramChange(program int) {
	defer c.lock()()
	c.program = max(0, min(program, 127))
	c.resolvePreset()
}

// SetDrums switches the channel between the drum bank and the melodic
// bank selected by CC0.
func (c *Channel) SetDrums(drums bool) {
	defer c.lock()()
	c.drums = drums
	c.resolvePreset()
}

// Program returns the bank and program currently selected.
func (c *Channel) Program() (bank, program int) {
	defer c.lock()()
	return c.bank(), c.program
}

// SetTuning sets the channel tuning in cents.
func (c *Channel) SetTuning(cents float64) {
	defer c.lock()()
	c.tuningCents = cents
}

// Tuning returns the channel tuning in cents.
func (c *Channel) Tuning() float64 {
	defer c.lock()()
	return c.tuningCents
}

// Drums reports whether the channel plays from the drum bank.
func (c *Channel) Drums() bool {
	defer c.lock()()
	return c.drums
}

// Controller returns the 14-bit value of controller cc.
func (c *Channel) Controller(cc int) int {
	defer c.lock()()
	if cc < 0 || cc >= len(c.controllers) {
		return 0
	}
	return int(c.controllers[cc])
}

// ResetControllers restores every controller to its power-on value.
func (c *Channel) ResetControllers() {
	defer c.lock()()
	c.resetAll()
}

func (c *Channel) resetAll() {
	c.resetControllers()
	c.recomputeVoices()
}

func (c *Channel) resetControllers() {
	clear(c.controllers[:])
	c.controllers[CCVolume] = 100 << 7
	c.controllers[CCExpression] = 127 << 7
	c.controllers[CCPan] = 64 << 7
	for cc := 70; cc <= 79; cc++ {
		c.controllers[cc] = 64 << 7
	}
	c.controllers[CCReverbDepth] = 40 << 7
	c.controllers[modulator.NonCCOffset+int(modulator.PitchWheel)] = 8192
	c.controllers[modulator.NonCCOffset+int(modulator.PitchWheelRange)] = 2 << 7
	clear(c.polyPressure[:])
	c.portamentoKey = -1
	c.lastNote = -1
	c.setHoldPedal(false)
}

// SetGeneratorOverride replaces generator t of every future voice on the
// channel.
func (c *Channel) SetGeneratorOverride(t generator.Type, value int16) {
	defer c.lock()()
	if !t.Valid() {
		return
	}
	c.overrides[t] = generator.Clamp(t, int32(value))
	c.hasOverride[t] = true
	c.anyOverrides = true
}

// ClearGeneratorOverrides removes every generator override.
func (c *Channel) ClearGeneratorOverrides() {
	defer c.lock()()
	clear(c.hasOverride[:])
	c.anyOverrides = false
}

// SetGeneratorOffset adds value to generator t of every voice, sounding
// or future, before clamping.
func (c *Channel) SetGeneratorOffset(t generator.Type, value int16) {
	defer c.lock()()
	if !t.Valid() {
		return
	}
	c.offsets[t] = value
	c.offsetsEnabled = true
	c.recomputeVoices()
}

// GeneratorOffset returns the live offset of generator t.
func (c *Channel) GeneratorOffset(t generator.Type) int16 {
	defer c.lock()()
	if !t.Valid() {
		return 0
	}
	return c.offsets[t]
}

// ClearGeneratorOffsets removes every generator offset.
func (c *Channel) ClearGeneratorOffsets() {
	defer c.lock()()
	clear(c.offsets[:])
	c.offsetsEnabled = false
	c.recomputeVoices()
}

// SetKeyModifier changes how note plays on this channel.
func (c *Channel) SetKeyModifier(note int, m KeyModifier) {
	defer c.lock()()
	if note < 0 || note > 127 {
		return
	}
	if m.Velocity > 127 {
		m.Velocity = 127
	}
	if m.Gain < 0 {
		m.Gain = 0
	}
	c.keyModifiers[note] = m
}

// ClearKeyModifiers restores every key to its unmodified behavior.
func (c *Channel) ClearKeyModifiers() {
	defer c.lock()()
	for i := range c.keyModifiers {
		c.keyModifiers[i] = noKeyModifier
	}
}

// SetDynamicModulator adds or updates a channel-wide modulator reading
// src into dest. Repeated calls with the same source, destination and
// polarity update it in place; an amount of 0 removes it. Sounding voices
// pick up the change immediately.
func (c *Channel) SetDynamicModulator(src modulator.Source, dest generator.Type, amount int16) {
	defer c.lock()()
	if !dest.Valid() {
		return
	}
	m := c.dynamic.set(src, dest, amount)
	for _, v := range c.voices {
		mergeModulator(v, m)
		v.computeAll(c)
	}
}

// ClearDynamicModulators removes every dynamic modulator.
func (c *Channel) ClearDynamicModulators() {
	defer c.lock()()
	for _, m := range c.dynamic.clear() {
		for _, v := range c.voices {
			mergeModulator(v, m)
		}
	}
	c.recomputeVoices()
}

// VoiceCount returns the number of voices on the channel.
func (c *Channel) VoiceCount() int {
	defer c.lock()()
	return len(c.voices)
}

func (c *Channel) render(b *Buses, offset int, buf []float32) {
	if len(c.voices) == 0 {
		return
	}
	now := c.synth.time
	for _, v := range c.voices {
		v.render(c, now, b, offset, buf)
	}
	finished := func(v *Voice) bool { return v.finished }
	c.voices = slices.DeleteFunc(c.voices, finished)
	c.sustained = slices.DeleteFunc(c.sustained, finished)
}
