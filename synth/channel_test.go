package synth

import (
	"testing"

	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

func TestControllerResetValues(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)

	tests := []struct {
		name string
		cc   int
		want int
	}{
		{"volume", CCVolume, 100 << 7},
		{"expression", CCExpression, 127 << 7},
		{"pan", CCPan, 64 << 7},
		{"sound controller", 71, 64 << 7},
		{"brightness", CCBrightness, 64 << 7},
		{"reverb depth", CCReverbDepth, 40 << 7},
		{"modulation", CCModulation, 0},
		{"pitch wheel", modulator.NonCCOffset + int(modulator.PitchWheel), 8192},
		{"pitch wheel range", modulator.NonCCOffset + int(modulator.PitchWheelRange), 2 << 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Controller(tt.cc); got != tt.want {
				t.Fatalf("Controller(%d) = %d, want %d", tt.cc, got, tt.want)
			}
		})
	}
}

func TestFourteenBitControllers(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)

	c.ControllerChange(CCVolume, 100)
	c.ControllerChange(CCVolume+32, 5)
	if got := c.Controller(CCVolume); got != 100<<7|5 {
		t.Fatalf("after LSB: %d, want %d", got, 100<<7|5)
	}
	c.ControllerChange(CCVolume, 90)
	if got := c.Controller(CCVolume); got != 90<<7|5 {
		t.Fatalf("MSB dropped the LSB: %d", got)
	}
	c.ControllerChange(CCSustainPedal, 127)
	if got := c.Controller(CCSustainPedal); got != 127<<7 {
		t.Fatalf("7-bit controller stored as %d", got)
	}
	c.ControllerChange(CCVolume, 300)
	if got := c.Controller(CCVolume) >> 7; got != 127 {
		t.Fatalf("out of range value stored as %d", got)
	}
}

func TestResetControllersMessage(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.NoteOn(60, 100)
	before := c.voices[0].modulated

	c.ControllerChange(CCVolume, 10)
	c.ControllerChange(CCPan, 0)
	c.PitchWheel(0)
	if c.voices[0].modulated == before {
		t.Fatal("controllers did not modulate the voice")
	}
	c.ControllerChange(CCResetControllers, 0)
	if c.Controller(CCVolume) != 100<<7 {
		t.Fatal("volume not reset")
	}
	if c.voices[0].modulated != before {
		t.Fatal("voice not recomputed after reset")
	}
}

func TestDrumChannelSelectsDrumBank(t *testing.T) {
	melodic := testPreset(sampleZone(loopedSample(100)))
	drums := testPreset(sampleZone(oneShotSample(100)))
	drums.Bank = soundbank.DrumBank
	s := newTestSynth(t, soundbank.NewBank("kit", []*soundbank.Preset{melodic, drums}))

	c := s.Channel(DrumChannel)
	if bank, program := c.Program(); bank != soundbank.DrumBank || program != 0 {
		t.Fatalf("drum channel selects %d:%d", bank, program)
	}
	if c.preset != drums {
		t.Fatal("drum channel not on the drum preset")
	}
	c.SetDrums(false)
	if c.preset != melodic {
		t.Fatal("SetDrums(false) kept the drum preset")
	}

	m := s.Channel(0)
	m.ControllerChange(CCBankSelect, 3)
	m.ProgramChange(7)
	if bank, program := m.Program(); bank != 3 || program != 7 {
		t.Fatalf("Program() = %d:%d, want 3:7", bank, program)
	}
	if m.preset != melodic {
		t.Fatal("missing preset did not fall back")
	}
}

func TestNoteOnZeroVelocityReleases(t *testing.T) {
	s := newTestSynth(t, loopedBank(), WithMinNoteLength(0))
	c := s.Channel(0)
	c.NoteOn(60, 100)
	c.NoteOn(60, 0)
	renderBlocks(s, 1)
	if !c.voices[0].Released() {
		t.Fatal("note-on with velocity 0 did not release")
	}
}

func TestAllSoundOffKillsImmediately(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.NoteOn(60, 100)
	c.NoteOn(64, 100)
	renderBlocks(s, 4)
	c.ControllerChange(CCAllSoundOff, 0)
	renderBlocks(s, 1)
	if c.VoiceCount() != 0 {
		t.Fatalf("voices after all sound off = %d", c.VoiceCount())
	}
}

func TestAllNotesOffReleasesNormally(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.ControllerChange(CCSustainPedal, 127)
	c.NoteOn(60, 100)
	c.NoteOff(60)
	renderBlocks(s, 12)
	c.ControllerChange(CCAllNotesOff, 0)
	renderBlocks(s, 1)
	if !c.voices[0].Released() {
		t.Fatal("all notes off ignored a sustained voice")
	}
	if c.voices[0].hasReleaseOverride {
		t.Fatal("all notes off overrode the release time")
	}
}

func TestKeyModifiers(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.SetKeyModifier(60, KeyModifier{Velocity: 10, Gain: 0.5})
	c.NoteOn(60, 100)
	c.NoteOn(61, 100)
	if v := c.voices[0]; v.Velocity() != 10 || v.gain != 0.5 {
		t.Fatalf("modified key: velocity %d gain %v", v.Velocity(), v.gain)
	}
	if v := c.voices[1]; v.Velocity() != 100 || v.gain != 1 {
		t.Fatalf("other key: velocity %d gain %v", v.Velocity(), v.gain)
	}

	c.ClearKeyModifiers()
	c.NoteOn(60, 100)
	if v := c.voices[2]; v.Velocity() != 100 || v.gain != 1 {
		t.Fatal("key modifier survived ClearKeyModifiers")
	}
}

func TestGeneratorOverridesAffectNewVoices(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.NoteOn(60, 100)
	c.SetGeneratorOverride(generator.CoarseTune, 12)
	c.NoteOn(62, 100)
	c.SetGeneratorOverride(generator.CoarseTune, 500)
	c.NoteOn(64, 100)
	c.ClearGeneratorOverrides()
	c.NoteOn(65, 100)

	want := []int16{0, 12, 120, 0}
	for i, v := range c.voices {
		if got := v.Generator(generator.CoarseTune); got != want[i] {
			t.Fatalf("voice %d coarse tune = %d, want %d", i, got, want[i])
		}
	}
}

func TestDynamicModulatorUpdatesInPlace(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	src := modulator.CC(20)
	count := func(v *Voice) int {
		n := 0
		for _, m := range v.modulators {
			if m.Primary == src && m.Destination == generator.Pan {
				n++
			}
		}
		return n
	}

	c.ControllerChange(20, 127)
	c.NoteOn(60, 100)
	c.SetDynamicModulator(src, generator.Pan, 250)
	v := c.voices[0]
	if got := v.Generator(generator.Pan); got <= 0 {
		t.Fatalf("pan = %d, want positive", got)
	}
	c.SetDynamicModulator(src, generator.Pan, -250)
	if got := v.Generator(generator.Pan); got >= 0 {
		t.Fatalf("pan = %d, want negative", got)
	}
	if n := count(v); n != 1 {
		t.Fatalf("sounding voice holds %d copies of the modulator", n)
	}

	c.NoteOn(62, 100)
	if n := count(c.voices[1]); n != 1 {
		t.Fatalf("new voice holds %d copies of the modulator", n)
	}

	c.SetDynamicModulator(src, generator.Pan, 0)
	if got := v.Generator(generator.Pan); got != 0 {
		t.Fatalf("pan after removal = %d", got)
	}
	c.NoteOn(64, 100)
	if n := count(c.voices[2]); n != 0 {
		t.Fatal("removed modulator applied to a new voice")
	}
}

func TestPolyPressureTargetsOneKey(t *testing.T) {
	z := sampleZone(loopedSample(100), gen(generator.SampleModes, 1))
	z.Modulators = []modulator.Modulator{
		modulator.New(modulator.Source{Index: modulator.PolyPressure}, modulator.Source{},
			generator.Pan, 500, modulator.TransformLinear),
	}
	s := newTestSynth(t, testBank(z))
	c := s.Channel(0)
	c.NoteOn(60, 100)
	c.NoteOn(62, 100)
	c.PolyPressure(60, 127)

	if got := c.voices[0].Generator(generator.Pan); got <= 400 {
		t.Fatalf("pressed key pan = %d", got)
	}
	if got := c.voices[1].Generator(generator.Pan); got != 0 {
		t.Fatalf("other key pan = %d", got)
	}
}

func TestPitchWheelRange(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.NoteOn(60, 100)

	c.PitchWheel(0)
	if got := c.voices[0].Generator(generator.FineTune); got < -199 || got > -197 {
		t.Fatalf("full bend down over 2 semitones = %d cents", got)
	}
	c.SetPitchWheelRange(12, 0)
	if got := c.voices[0].Generator(generator.FineTune); got < -1191 || got > -1189 {
		t.Fatalf("full bend down over 12 semitones = %d cents", got)
	}
}

func TestPortamento(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)

	c.NoteOn(60, 100)
	c.NoteOn(72, 100)
	if c.voices[1].portamentoDuration != 0 {
		t.Fatal("glide without portamento switch")
	}

	c.ControllerChange(CCPortamentoOnOff, 127)
	c.NoteOn(67, 100)
	if v := c.voices[2]; v.portamentoFrom != 72 || v.portamentoDuration != 0.0025 {
		t.Fatalf("glide from %d over %v s", v.portamentoFrom, v.portamentoDuration)
	}

	c.ControllerChange(CCPortamentoOnOff, 0)
	c.ControllerChange(CCPortamentoControl, 48)
	c.NoteOn(50, 100)
	c.NoteOn(52, 100)
	if v := c.voices[3]; v.portamentoFrom != 48 {
		t.Fatalf("portamento control glide from %d, want 48", v.portamentoFrom)
	}
	if c.voices[4].portamentoDuration != 0 {
		t.Fatal("portamento control applied to a second note")
	}
}

func TestChannelTuning(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.SetTuning(50.7)
	c.NoteOn(60, 100)
	renderBlocks(s, 1)
	if got := c.voices[0].tuningCents; got != 50 {
		t.Fatalf("tuning cents = %d, want 50", got)
	}
}

func TestBankSelectAppliesAtProgramChange(t *testing.T) {
	melodic := testPreset(sampleZone(loopedSample(100), gen(generator.SampleModes, 1)))
	other := testPreset(sampleZone(oneShotSample(500)))
	other.Bank = 1
	s := newTestSynth(t, soundbank.NewBank("banks", []*soundbank.Preset{melodic, other}))
	c := s.Channel(0)

	c.ControllerChange(CCBankSelect, 1)
	c.NoteOn(60, 100)
	c.ProgramChange(0)
	c.NoteOn(60, 100)

	want := []string{"cycle", "hit"}
	if len(c.voices) != len(want) {
		t.Fatalf("voices = %d, want %d", len(c.voices), len(want))
	}
	for i, v := range c.voices {
		if v.sampleName != want[i] {
			t.Fatalf("voice %d plays %q, want %q", i, v.sampleName, want[i])
		}
	}
}

func TestExclusiveClassOverride(t *testing.T) {
	s := newTestSynth(t, loopedBank())
	c := s.Channel(0)
	c.SetGeneratorOverride(generator.ExclusiveClass, 3)
	c.NoteOn(60, 100)
	renderBlocks(s, 1)
	c.NoteOn(62, 100)
	renderBlocks(s, 1)

	if got := c.voices[1].ExclusiveClass(); got != 3 {
		t.Fatalf("exclusive class = %d, want 3", got)
	}
	if !c.voices[0].Released() {
		t.Fatal("first voice of the overridden class not released")
	}
	if c.voices[1].Released() {
		t.Fatal("new voice released")
	}
}
