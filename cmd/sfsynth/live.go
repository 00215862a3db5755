package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-sfsynth/midimsg"
	"github.com/cwbudde/algo-sfsynth/synth"
)

func runLive(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	common.register(fs)
	midiIn := fs.Int("midi-in", -1, "MIDI input port number (-1 disables MIDI input)")
	listPorts := fs.Bool("list-ports", false, "list MIDI input ports and exit")
	buffer := fs.Duration("buffer", 50*time.Millisecond, "audio device buffer length")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sfsynth live [flags]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if (*listPorts || *midiIn >= 0) && !midiAvailable {
		return errors.New("MIDI input needs a cgo build")
	}
	if *listPorts {
		for _, p := range midi.GetInPorts() {
			fmt.Printf("%d\t%s\n", p.Number(), p.String())
		}
		return nil
	}

	log := common.logger()
	s, err := common.newSynth(log)
	if err != nil {
		return err
	}
	l := &live{synth: s, d: midimsg.New(s, log), log: log}

	out, err := openOutput(s, *buffer)
	if err != nil {
		return err
	}
	defer out.Close()

	if *midiIn >= 0 {
		stop, err := l.listen(*midiIn)
		if err != nil {
			return err
		}
		defer stop()
	}
	defer midi.CloseDriver()

	return l.repl()
}

// live serializes messages from the prompt and the MIDI input.
type live struct {
	mu    sync.Mutex
	synth *synth.Synthesizer
	d     *midimsg.Dispatcher
	log   *slog.Logger
}

func (l *live) dispatch(msg midi.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.d.Dispatch(msg)
}

func (l *live) listen(port int) (func(), error) {
	in, err := midi.InPort(port)
	if err != nil {
		return nil, fmt.Errorf("midi input %d: %w", port, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if !l.dispatch(msg) {
			l.log.Debug("midi message ignored", "msg", msg.String())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midi input %d: %w", port, err)
	}
	l.log.Info("listening", "port", in.String())
	return stop, nil
}

func (l *live) repl() error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := l.eval(fields); err != nil {
			fmt.Println(err)
		}
	}
}

type command struct {
	name  string
	help  string
	arity int // -n means at least n arguments
	run   func(l *live, ch uint8, args []int) error
}

var commands []command

func init() {
	commands = []command{
		{"on", "on <key> [velocity]", -1, noteOnCommand},
		{"off", "off <key>", 1, noteOffCommand},
		{"cc", "cc <controller> <value>", 2, ccCommand},
		{"prog", "prog <program>", 1, programCommand},
		{"bend", "bend <-8192..8191>", 1, bendCommand},
		{"ch", "ch <channel> <command> ...", -2, nil},
		{"panic", "panic", 0, panicCommand},
		{"status", "status", 0, statusCommand},
		{"help", "help", 0, helpCommand},
	}
}

// eval runs one command line. "ch <n>" in front of a command addresses
// another channel than the first.
func (l *live) eval(fields []string) error {
	var ch uint8
	if fields[0] == "ch" {
		if len(fields) < 3 {
			return errors.New("usage: ch <channel> <command> ...")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 || n >= l.synth.Channels() {
			return fmt.Errorf("invalid channel %q", fields[1])
		}
		ch = uint8(n)
		fields = fields[2:]
	}

	for _, cmd := range commands {
		if cmd.name != fields[0] || cmd.run == nil {
			continue
		}
		args := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", cmd.name, f)
			}
			args = append(args, v)
		}
		if cmd.arity < 0 && len(args) < -cmd.arity || cmd.arity >= 0 && len(args) != cmd.arity {
			return fmt.Errorf("usage: %s", cmd.help)
		}
		return cmd.run(l, ch, args)
	}
	return fmt.Errorf("unknown command: %s", fields[0])
}

func dataByte(name string, v int) (uint8, error) {
	if v < 0 || v > 127 {
		return 0, fmt.Errorf("%s %d out of range 0..127", name, v)
	}
	return uint8(v), nil
}

func noteOnCommand(l *live, ch uint8, args []int) error {
	key, err := dataByte("key", args[0])
	if err != nil {
		return err
	}
	vel := uint8(100)
	if len(args) > 1 {
		if vel, err = dataByte("velocity", args[1]); err != nil {
			return err
		}
	}
	l.dispatch(midi.NoteOn(ch, key, vel))
	return nil
}

func noteOffCommand(l *live, ch uint8, args []int) error {
	key, err := dataByte("key", args[0])
	if err != nil {
		return err
	}
	l.dispatch(midi.NoteOff(ch, key))
	return nil
}

func ccCommand(l *live, ch uint8, args []int) error {
	cc, err := dataByte("controller", args[0])
	if err != nil {
		return err
	}
	v, err := dataByte("value", args[1])
	if err != nil {
		return err
	}
	l.dispatch(midi.ControlChange(ch, cc, v))
	return nil
}

func programCommand(l *live, ch uint8, args []int) error {
	p, err := dataByte("program", args[0])
	if err != nil {
		return err
	}
	l.dispatch(midi.ProgramChange(ch, p))
	return nil
}

func bendCommand(l *live, ch uint8, args []int) error {
	if args[0] < -8192 || args[0] > 8191 {
		return fmt.Errorf("bend %d out of range -8192..8191", args[0])
	}
	l.dispatch(midi.Pitchbend(ch, int16(args[0])))
	return nil
}

func panicCommand(l *live, _ uint8, _ []int) error {
	l.synth.StopAll()
	return nil
}

func statusCommand(l *live, ch uint8, _ []int) error {
	c := l.synth.Channel(int(ch))
	bank, program := c.Program()
	fmt.Printf("channel %d: bank %d program %d voices %d (total %d/%d) peak %.3f\n",
		ch, bank, program, c.VoiceCount(), l.synth.VoiceCount(), l.synth.VoiceCap(), l.synth.Peak())
	return nil
}

func helpCommand(*live, uint8, []int) error {
	for _, cmd := range commands {
		fmt.Println(" ", cmd.help)
	}
	fmt.Println("  quit")
	return nil
}

// output streams the synthesizer to the default audio device.
type output struct {
	ctx    *oto.Context
	player *oto.Player
}

func openOutput(s *synth.Synthesizer, buffer time.Duration) (*output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(s.SampleRate()),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(&stream{synth: s})
	player.Play()
	return &output{ctx: ctx, player: player}, nil
}

func (o *output) Close() error {
	return o.player.Close()
}

// stream is the io.Reader oto pulls interleaved float32 frames from.
type stream struct {
	synth       *synth.Synthesizer
	left, right []float32
}

func (st *stream) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if len(st.left) < frames {
		st.left = make([]float32, frames)
		st.right = make([]float32, frames)
	}
	left, right := st.left[:frames], st.right[:frames]
	st.synth.RenderStereo(left, right)
	for i := range frames {
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(left[i]))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(right[i]))
	}
	return frames * 8, nil
}
