// Command sfsynth renders and plays wavetable sound banks.
//
// Usage:
//
//	sfsynth render [flags]
//	sfsynth live [flags]
//
// render writes a note or a Standard MIDI File to a 16-bit stereo WAV
// file. live plays through the default audio device and reads note
// commands from a prompt and, optionally, a MIDI input port.
//
// Without -bank a built-in bank with one generated waveform per program
// is used (0 sine, 1 saw, 2 square, 3 triangle).
//
// Examples:
//
//	sfsynth render -o a4.wav -note 69 -duration 2s
//	sfsynth render -bank piano.yaml -midi song.mid -o song.wav
//	sfsynth render -config engine.yaml -interp cubic -program 1 -o saw.wav
//	sfsynth live -bank piano.yaml
//	sfsynth live -midi-in 0
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "render":
		err = runRender(args)
	case "live":
		err = runLive(args)
	case "-h", "-help", "--help", "help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "sfsynth: unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sfsynth: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: sfsynth <command> [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  render   render a note or MIDI file to WAV\n")
	fmt.Fprintf(w, "  live     play through the audio device\n\n")
	fmt.Fprintf(w, "Run 'sfsynth <command> -h' for the flags of a command.\n")
}

// commonFlags are shared by every command.
type commonFlags struct {
	bank    string
	config  string
	rate    float64
	interp  string
	effects bool
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.bank, "bank", "", "YAML sound bank (default: built-in waveforms)")
	fs.StringVar(&c.config, "config", "", "YAML engine config")
	fs.Float64Var(&c.rate, "rate", 0, "output sample rate in Hz (overrides config)")
	fs.StringVar(&c.interp, "interp", "", "interpolation: nearest, linear or cubic (overrides config)")
	fs.BoolVar(&c.effects, "effects", true, "enable reverb and chorus")
	fs.BoolVar(&c.verbose, "v", false, "log debug messages")
}

func (c *commonFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
