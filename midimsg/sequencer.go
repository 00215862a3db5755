package midimsg

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Event is a message scheduled at a time from the start of playback.
type Event struct {
	Time    time.Duration
	Message midi.Message
}

// ReadSMF reads every track of a Standard MIDI File into one event list
// ordered by time.
func ReadSMF(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSMFFrom(f)
}

// ReadSMFFrom is ReadSMF for an open stream.
func ReadSMFFrom(r io.Reader) ([]Event, error) {
	var events []Event
	tr := smf.ReadTracksFrom(r).Do(func(ev smf.TrackEvent) {
		events = append(events, Event{
			Time:    time.Duration(ev.AbsMicroSeconds) * time.Microsecond,
			Message: midi.Message(ev.Message),
		})
	})
	if err := tr.Error(); err != nil {
		return nil, fmt.Errorf("midimsg: read SMF: %w", err)
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return events, nil
}

// Renderer is the stereo output of a synthesizer.
type Renderer interface {
	RenderStereo(left, right []float32)
	SampleRate() float64
}

// Sequencer dispatches timed events while rendering, splitting blocks so
// every event lands on its exact frame.
type Sequencer struct {
	out    Renderer
	d      *Dispatcher
	events []Event
	next   int
	frame  int64
}

// NewSequencer plays events, which must be ordered by time, through d
// and renders with out.
func NewSequencer(out Renderer, d *Dispatcher, events []Event) *Sequencer {
	return &Sequencer{out: out, d: d, events: events}
}

// Render fills left and right, dispatching every event due inside them.
func (q *Sequencer) Render(left, right []float32) {
	n := min(len(left), len(right))
	sr := q.out.SampleRate()
	done := 0
	for done < n {
		end := n
		for q.next < len(q.events) {
			at := int64(math.Round(q.events[q.next].Time.Seconds() * sr))
			if at > q.frame+int64(done) {
				end = min(end, int(at-q.frame))
				break
			}
			q.d.Dispatch(q.events[q.next].Message)
			q.next++
		}
		q.out.RenderStereo(left[done:end], right[done:end])
		done = end
	}
	q.frame += int64(n)
}

// Done reports whether every event has been dispatched.
func (q *Sequencer) Done() bool { return q.next >= len(q.events) }

// Duration returns the time of the last event.
func (q *Sequencer) Duration() time.Duration {
	if len(q.events) == 0 {
		return 0
	}
	return q.events[len(q.events)-1].Time
}
