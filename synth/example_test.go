package synth_test

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth"
	"github.com/cwbudde/algo-sfsynth/synth/generator"
)

func sineBank() *soundbank.Bank {
	sample, err := soundbank.Generate("sine", "sine", 0, 0)
	if err != nil {
		panic(err)
	}
	zone := soundbank.NewZone()
	zone.Sample = sample
	zone.Generators = []generator.Generator{{Type: generator.SampleModes, Value: 1}}

	preset := soundbank.NewZone()
	preset.Instrument = &soundbank.Instrument{Name: "sine", Zones: []soundbank.Zone{zone}}
	return soundbank.NewBank("example", []*soundbank.Preset{
		{Name: "sine", Zones: []soundbank.Zone{preset}},
	})
}

func ExampleSynthesizer_RenderStereo() {
	s, err := synth.New(sineBank(),
		synth.WithEffects(false),
		synth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		fmt.Println(err)
		return
	}
	ch := s.Channel(0)
	ch.NoteOn(69, 100)

	left := make([]float32, 512)
	right := make([]float32, 512)
	s.RenderStereo(left, right)
	fmt.Printf("voices=%d sounding=%t\n", s.VoiceCount(), s.Peak() > 0)

	ch.KillNote(69, -12000)
	s.RenderStereo(left, right)
	fmt.Printf("voices=%d\n", s.VoiceCount())

	// Output:
	// voices=1 sounding=true
	// voices=0
}

func ExampleChannel_ControllerChange() {
	s, err := synth.New(sineBank(),
		synth.WithEffects(false),
		synth.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		fmt.Println(err)
		return
	}
	ch := s.Channel(0)
	ch.ControllerChange(synth.CCVolume, 64)
	ch.ControllerChange(synth.CCVolume+32, 1)
	fmt.Println(ch.Controller(synth.CCVolume))

	// Output:
	// 8193
}
