package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/youpy/go-wav"
	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-sfsynth/midimsg"
	"github.com/cwbudde/algo-sfsynth/synth"
)

const renderBlock = 1024

func runRender(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	common.register(fs)
	out := fs.String("o", "out.wav", "output WAV file")
	midiFile := fs.String("midi", "", "Standard MIDI File to render instead of a single note")
	note := fs.Int("note", 60, "MIDI key of the single note")
	velocity := fs.Int("velocity", 100, "velocity of the single note")
	program := fs.Int("program", 0, "program of the single note")
	duration := fs.Duration("duration", time.Second, "how long the single note is held")
	tail := fs.Duration("tail", 2*time.Second, "maximum time rendered after the last event")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sfsynth render [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := common.logger()
	s, err := common.newSynth(log)
	if err != nil {
		return err
	}
	d := midimsg.New(s, log)

	var events []midimsg.Event
	if *midiFile != "" {
		events, err = midimsg.ReadSMF(*midiFile)
		if err != nil {
			return err
		}
	} else {
		if *note < 0 || *note > 127 || *velocity < 1 || *velocity > 127 || *program < 0 || *program > 127 {
			return fmt.Errorf("note, velocity and program must be MIDI data bytes")
		}
		events = []midimsg.Event{
			{Message: midi.ProgramChange(0, uint8(*program))},
			{Message: midi.NoteOn(0, uint8(*note), uint8(*velocity))},
			{Time: *duration, Message: midi.NoteOff(0, uint8(*note))},
		}
	}

	seq := midimsg.NewSequencer(s, d, events)
	left, right := renderAll(s, seq, *tail)
	if err := writeWAV(*out, left, right, s.SampleRate()); err != nil {
		return err
	}
	log.Info("rendered", "file", *out, "frames", len(left),
		"seconds", float64(len(left))/s.SampleRate())
	return nil
}

// renderAll plays the sequence to its end, then keeps rendering until
// every voice has finished or tail has passed.
func renderAll(s *synth.Synthesizer, seq *midimsg.Sequencer, tail time.Duration) (left, right []float32) {
	bufL := make([]float32, renderBlock)
	bufR := make([]float32, renderBlock)
	rate := s.SampleRate()
	maxFrames := int(math.Ceil((seq.Duration() + tail).Seconds() * rate))

	for len(left) < maxFrames {
		n := min(renderBlock, maxFrames-len(left))
		seq.Render(bufL[:n], bufR[:n])
		left = append(left, bufL[:n]...)
		right = append(right, bufR[:n]...)
		if seq.Done() && s.VoiceCount() == 0 && s.Peak() < 1e-5 {
			break
		}
	}
	return left, right
}

// writeWAV stores the stereo buffers as 16-bit PCM, clipping at full
// scale.
func writeWAV(path string, left, right []float32, sampleRate float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	w := wav.NewWriter(bw, uint32(len(left)), 2, uint32(sampleRate), 16)
	samples := make([]wav.Sample, len(left))
	for i := range samples {
		samples[i].Values[0] = toPCM16(left[i])
		samples[i].Values[1] = toPCM16(right[i])
	}
	if err := w.WriteSamples(samples); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return bw.Flush()
}

func toPCM16(x float32) int {
	x = max(-1, min(1, x))
	return int(math.Round(float64(x) * math.MaxInt16))
}
