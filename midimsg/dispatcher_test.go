package midimsg

import (
	"io"
	"log/slog"
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSynth(t *testing.T) *synth.Synthesizer {
	t.Helper()
	sample, err := soundbank.Generate("sine", "sine", 100, 44100)
	if err != nil {
		t.Fatal(err)
	}
	zone := soundbank.NewZone()
	zone.Sample = sample
	zone.Generators = []generator.Generator{{Type: generator.SampleModes, Value: 1}}
	pz := soundbank.NewZone()
	pz.Instrument = &soundbank.Instrument{Name: "sine", Zones: []soundbank.Zone{zone}}
	melodic := &soundbank.Preset{Name: "sine", Zones: []soundbank.Zone{pz}}
	other := &soundbank.Preset{Name: "other", Program: 5, Zones: []soundbank.Zone{pz}}

	s, err := synth.New(soundbank.NewBank("test", []*soundbank.Preset{melodic, other}),
		synth.WithEffects(false), synth.WithLogger(quietLogger()), synth.WithMinNoteLength(0))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func send(t *testing.T, d *Dispatcher, msgs ...midi.Message) {
	t.Helper()
	for _, m := range msgs {
		if !d.Dispatch(m) {
			t.Fatalf("message %v ignored", m)
		}
	}
}

func TestNotes(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	send(t, d, midi.NoteOn(2, 60, 100), midi.NoteOn(2, 64, 100))
	if got := s.Channel(2).VoiceCount(); got != 2 {
		t.Fatalf("voices = %d, want 2", got)
	}

	send(t, d, midi.NoteOff(2, 60), midi.NoteOn(2, 64, 0))
	left := make([]float32, 4096)
	right := make([]float32, 4096)
	for range 20 {
		s.RenderStereo(left, right)
	}
	if got := s.VoiceCount(); got != 0 {
		t.Fatalf("voices after note-off = %d", got)
	}
}

func TestChannelMessages(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	c := s.Channel(0)

	send(t, d,
		midi.ControlChange(0, synth.CCVolume, 42),
		midi.Pitchbend(0, 8191),
		midi.ProgramChange(0, 5),
		midi.AfterTouch(0, 90),
		midi.PolyAfterTouch(0, 60, 30),
	)
	if got := c.Controller(synth.CCVolume); got != 42<<7 {
		t.Fatalf("volume = %d", got)
	}
	if got := c.Controller(modulator.NonCCOffset + int(modulator.PitchWheel)); got != 16383 {
		t.Fatalf("pitch wheel = %d, want 16383", got)
	}
	if got := c.Controller(modulator.NonCCOffset + int(modulator.ChannelPressure)); got != 90<<7 {
		t.Fatalf("channel pressure = %d", got)
	}
	if _, program := c.Program(); program != 5 {
		t.Fatalf("program = %d, want 5", program)
	}
}

func TestIgnoredMessages(t *testing.T) {
	s, err := synth.New(soundbank.NewBank("empty", nil), synth.WithChannels(4),
		synth.WithEffects(false), synth.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	d := New(s, quietLogger())
	if d.Dispatch(midi.NoteOn(10, 60, 100)) {
		t.Fatal("message for a missing channel applied")
	}
	if d.Dispatch(midi.Message{0xfe}) {
		t.Fatal("system realtime message applied")
	}
	if d.Dispatch(midi.SysEx([]byte{0x7d, 0x01, 0x02})) {
		t.Fatal("unknown system exclusive message applied")
	}
}

func TestPitchBendRangeRPN(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	c := s.Channel(1)
	rangeIndex := modulator.NonCCOffset + int(modulator.PitchWheelRange)

	send(t, d,
		midi.ControlChange(1, ccRPNMSB, 0),
		midi.ControlChange(1, ccRPNLSB, rpnPitchBendRange),
		midi.ControlChange(1, ccDataEntryMSB, 12),
		midi.ControlChange(1, ccDataEntryLSB, 50),
	)
	if got := c.Controller(rangeIndex); got != 12<<7|50 {
		t.Fatalf("bend range = %d, want %d", got, 12<<7|50)
	}

	send(t, d,
		midi.ControlChange(1, ccRPNMSB, rpnNull),
		midi.ControlChange(1, ccRPNLSB, rpnNull),
		midi.ControlChange(1, ccDataEntryMSB, 2),
	)
	if got := c.Controller(rangeIndex); got != 12<<7|50 {
		t.Fatal("data entry applied after RPN null")
	}
	if got := c.Controller(ccDataEntryMSB); got != 0 {
		t.Fatalf("data entry stored as a controller: %d", got)
	}
}

func TestTuningRPNs(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	c := s.Channel(0)

	send(t, d,
		midi.ControlChange(0, ccRPNMSB, 0),
		midi.ControlChange(0, ccRPNLSB, rpnCoarseTuning),
		midi.ControlChange(0, ccDataEntryMSB, 66),
		midi.ControlChange(0, ccRPNLSB, rpnFineTuning),
		midi.ControlChange(0, ccDataEntryMSB, 96),
	)
	// Coarse +2 semitones, fine (96<<7 - 8192) / 8192 * 100 = +50 cents.
	if got := c.Tuning(); got != 250 {
		t.Fatalf("tuning = %v cents, want 250", got)
	}
}

func TestSoundFontNRPNSetsGeneratorOffset(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	c := s.Channel(0)

	// 8492 = 66<<7 | 44 is an offset of +300.
	send(t, d,
		midi.ControlChange(0, ccNRPNMSB, nrpnSoundFont),
		midi.ControlChange(0, ccNRPNLSB, uint8(generator.Pan)),
		midi.ControlChange(0, ccDataEntryMSB, 66),
		midi.ControlChange(0, ccDataEntryLSB, 44),
	)
	if got := c.GeneratorOffset(generator.Pan); got != 300 {
		t.Fatalf("pan offset = %d, want 300", got)
	}

	// 100 + 1 selects generator 101, which does not exist.
	send(t, d,
		midi.ControlChange(0, ccNRPNMSB, nrpnSoundFont),
		midi.ControlChange(0, ccNRPNLSB, 100),
		midi.ControlChange(0, ccNRPNLSB, 1),
		midi.ControlChange(0, ccDataEntryMSB, 80),
	)
	if got := c.GeneratorOffset(generator.Type(1)); got != 0 {
		t.Fatalf("generator 1 offset = %d, want 0", got)
	}

	send(t, d,
		midi.ControlChange(0, ccNRPNMSB, 1),
		midi.ControlChange(0, ccNRPNLSB, uint8(generator.Pan)),
		midi.ControlChange(0, ccDataEntryMSB, 0),
	)
	if got := c.GeneratorOffset(generator.Pan); got != 300 {
		t.Fatal("non-SoundFont NRPN changed a generator")
	}
}

func TestSystemReset(t *testing.T) {
	s := newTestSynth(t)
	d := New(s, quietLogger())
	c := s.Channel(3)
	send(t, d,
		midi.ControlChange(3, synth.CCVolume, 1),
		midi.ProgramChange(3, 5),
		midi.ControlChange(3, ccNRPNMSB, nrpnSoundFont),
		midi.ControlChange(3, ccNRPNLSB, uint8(generator.Pan)),
		midi.ControlChange(3, ccDataEntryMSB, 70),
	)
	s.Channel(synth.DrumChannel).SetDrums(false)

	send(t, d, midi.SysEx([]byte{0x7e, 0x10, 0x09, 0x01}))
	if c.Controller(synth.CCVolume) != 100<<7 {
		t.Fatal("controllers not reset")
	}
	if _, program := c.Program(); program != 0 {
		t.Fatal("program not reset")
	}
	if c.GeneratorOffset(generator.Pan) != 0 {
		t.Fatal("generator offsets not cleared")
	}
	if !s.Channel(synth.DrumChannel).Drums() {
		t.Fatal("drum channel not restored")
	}
}
