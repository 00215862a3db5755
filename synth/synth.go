package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/viterin/vek/vek32"

	"github.com/cwbudde/algo-sfsynth/effects"
	"github.com/cwbudde/algo-sfsynth/soundbank"
	"github.com/cwbudde/algo-sfsynth/synth/oscillator"
	"github.com/cwbudde/algo-sfsynth/synth/panner"
)

var (
	// ErrNoSoundBank is returned when New is called without a bank.
	ErrNoSoundBank = errors.New("synth: no sound bank")
	// ErrInvalidSampleRate is returned for unusable sample rates.
	ErrInvalidSampleRate = errors.New("synth: invalid sample rate")
)

// Buses are the caller-owned dry and effect send buffers Render mixes
// into.
type Buses = panner.Buses

// StereoProcessor turns a pair of send buffers into a wet stereo return.
// outL and outR are overwritten.
type StereoProcessor interface {
	Process(inL, inR, outL, outR []float32)
}

// Synthesizer renders the voices of all its channels.
type Synthesizer struct {
	mu sync.Mutex

	cfg  Config
	bank soundbank.Provider
	log  *slog.Logger

	channels []*Channel
	cache    map[cacheKey][]voiceTemplate
	samples  map[*soundbank.Sample][]float32

	// time is the number of frames rendered so far.
	time          int64
	minNoteLength int64

	interpolation oscillator.Interpolation
	voiceCap      int
	masterGain    float32
	masterPan     float64
	effects       bool

	scratch []float32

	reverb, chorus StereoProcessor
	sends          Buses
	wetL, wetR     []float32
	peak           float32
}

// New returns a synthesizer playing presets from bank.
func New(bank soundbank.Provider, opts ...Option) (*Synthesizer, error) {
	if bank == nil {
		return nil, ErrNoSoundBank
	}
	cfg := ApplyOptions(opts...)
	if cfg.SampleRate < 1000 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, cfg.SampleRate)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Synthesizer{
		cfg:           cfg,
		bank:          bank,
		log:           log,
		cache:         make(map[cacheKey][]voiceTemplate),
		samples:       make(map[*soundbank.Sample][]float32),
		minNoteLength: int64(cfg.MinNoteLength.Seconds() * cfg.SampleRate),
		interpolation: cfg.Interpolation,
		voiceCap:      cfg.VoiceCap,
		masterGain:    cfg.MasterGain,
		effects:       cfg.Effects,
		scratch:       make([]float32, cfg.BlockSize),
		reverb:        cfg.reverb,
		chorus:        cfg.chorus,
	}

	if s.reverb == nil {
		r, err := effects.NewReverb(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("synth: reverb: %w", err)
		}
		s.reverb = r
	}
	if s.chorus == nil {
		c, err := effects.NewChorus(cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("synth: chorus: %w", err)
		}
		s.chorus = c
	}

	s.channels = make([]*Channel, cfg.Channels)
	for i := range s.channels {
		s.channels[i] = newChannel(s, i)
	}
	return s, nil
}

// Render advances every voice by frames samples and adds the output into
// b starting at offset. Every bus that is not nil must hold at least
// offset+frames samples. Modulation is updated every BlockSize frames.
func (s *Synthesizer) Render(b *Buses, offset, frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render(b, offset, frames)
}

func (s *Synthesizer) render(b *Buses, offset, frames int) {
	for done := 0; done < frames; {
		n := min(s.cfg.BlockSize, frames-done)
		for _, c := range s.channels {
			c.render(b, offset+done, s.scratch[:n])
		}
		s.time += int64(n)
		done += n
	}
}

// RenderStereo overwrites left and right with the dry mix plus the reverb
// and chorus returns.
func (s *Synthesizer) RenderStereo(left, right []float32) {
	n := min(len(left), len(right))
	left, right = left[:n], right[:n]

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureSendBuffers(n)
	clear(left)
	clear(right)
	sends := &s.sends
	b := Buses{
		Left:        left,
		Right:       right,
		ReverbLeft:  sends.ReverbLeft[:n],
		ReverbRight: sends.ReverbRight[:n],
		ChorusLeft:  sends.ChorusLeft[:n],
		ChorusRight: sends.ChorusRight[:n],
	}
	clear(b.ReverbLeft)
	clear(b.ReverbRight)
	clear(b.ChorusLeft)
	clear(b.ChorusRight)

	s.render(&b, 0, n)

	if s.effects {
		wetL, wetR := s.wetL[:n], s.wetR[:n]
		s.reverb.Process(b.ReverbLeft, b.ReverbRight, wetL, wetR)
		vek32.Add_Inplace(left, wetL)
		vek32.Add_Inplace(right, wetR)
		s.chorus.Process(b.ChorusLeft, b.ChorusRight, wetL, wetR)
		vek32.Add_Inplace(left, wetL)
		vek32.Add_Inplace(right, wetR)
	}

	if n > 0 {
		s.peak = max(vek32.Max(left), -vek32.Min(left), vek32.Max(right), -vek32.Min(right))
	}
}

func (s *Synthesizer) ensureSendBuffers(n int) {
	if len(s.wetL) >= n {
		return
	}
	s.sends = Buses{
		ReverbLeft:  make([]float32, n),
		ReverbRight: make([]float32, n),
		ChorusLeft:  make([]float32, n),
		ChorusRight: make([]float32, n),
	}
	s.wetL = make([]float32, n)
	s.wetR = make([]float32, n)
}

// Peak returns the absolute peak of the last RenderStereo call.
func (s *Synthesizer) Peak() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// Channel returns channel i, or nil if it does not exist.
func (s *Synthesizer) Channel(i int) *Channel {
	if i < 0 || i >= len(s.channels) {
		return nil
	}
	return s.channels[i]
}

// Channels returns the number of channels.
func (s *Synthesizer) Channels() int { return len(s.channels) }

// SampleRate returns the output sample rate.
func (s *Synthesizer) SampleRate() float64 { return s.cfg.SampleRate }

// CurrentTime returns how much audio has been rendered.
func (s *Synthesizer) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(float64(s.time) / s.cfg.SampleRate * float64(time.Second))
}

// SetBank swaps the sound bank, drops the voice cache and re-resolves
// every channel's preset. Sounding voices keep playing.
func (s *Synthesizer) SetBank(bank soundbank.Provider) error {
	if bank == nil {
		return ErrNoSoundBank
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bank = bank
	clear(s.cache)
	clear(s.samples)
	for _, c := range s.channels {
		c.resolvePreset()
	}
	return nil
}

// ClearCache drops every cached voice template.
func (s *Synthesizer) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
	clear(s.samples)
}

// VoiceCount returns the number of voices on all channels.
func (s *Synthesizer) VoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.channels {
		n += len(c.voices)
	}
	return n
}

// VoiceCap returns the maximum number of voices.
func (s *Synthesizer) VoiceCap() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceCap
}

// SetVoiceCap changes the maximum number of voices. Voices above a
// lowered cap are stolen on the next note-on.
func (s *Synthesizer) SetVoiceCap(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceCap = n
}

// SetInterpolation selects the oscillator interpolation for all voices.
func (s *Synthesizer) SetInterpolation(i oscillator.Interpolation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interpolation = i
}

// SetMasterGain sets the linear output gain.
func (s *Synthesizer) SetMasterGain(g float32) {
	if g < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterGain = g
}

// SetMasterPan shifts every voice's pan; -1 is hard left, 1 hard right.
func (s *Synthesizer) SetMasterPan(pan float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterPan = max(-1, min(pan, 1)) * panner.MaxPan
}

// SetEffectsEnabled switches the reverb and chorus sends.
func (s *Synthesizer) SetEffectsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects = enabled
}

// StopAll kills every voice on every channel.
func (s *Synthesizer) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.channels {
		c.killNote(-1, killReleaseTc)
	}
}
