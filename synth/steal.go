package synth

import (
	"cmp"
	"slices"
)

// stealVoices kills the least important voices so that incoming more
// voices fit under the voice cap. Killed voices no longer count.
func (s *Synthesizer) stealVoices(incoming int) {
	counts := func(v *Voice) bool { return !v.killed && !v.finished }

	active := 0
	for _, c := range s.channels {
		for _, v := range c.voices {
			if counts(v) {
				active++
			}
		}
	}
	excess := min(active+incoming-s.voiceCap, active)
	if excess <= 0 {
		return
	}

	candidates := make([]*Voice, 0, active)
	for _, c := range s.channels {
		for _, v := range c.voices {
			if counts(v) {
				candidates = append(candidates, v)
			}
		}
	}
	slices.SortStableFunc(candidates, func(a, b *Voice) int {
		return cmp.Compare(a.priority(), b.priority())
	})
	for _, v := range candidates[:excess] {
		v.kill(s.time)
	}
	s.log.Warn("voice cap reached, stealing voices", "killed", excess, "cap", s.voiceCap)
}
