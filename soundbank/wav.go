package soundbank

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youpy/go-wav"
)

type readerAt interface {
	io.Reader
	io.ReaderAt
}

// DecodeWAV reads the first channel of a WAV stream into a sample.
func DecodeWAV(name string, r readerAt) (*Sample, error) {
	wr := wav.NewReader(r)
	format, err := wr.Format()
	if err != nil {
		return nil, fmt.Errorf("soundbank: sample %q: %w", name, err)
	}

	s := &Sample{Name: name, SampleRate: float64(format.SampleRate), OriginalKey: 60}
	for {
		frames, err := wr.ReadSamples()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("soundbank: sample %q: %w", name, err)
		}
		for _, f := range frames {
			s.Data = append(s.Data, float32(wr.FloatValue(f, 0)))
		}
	}
	if len(s.Data) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySample, name)
	}
	s.LoopEnd = len(s.Data)
	return s, nil
}

// LoadWAV reads a WAV file into a sample named after the file.
func LoadWAV(name, path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(name, f)
}
