package synth

import (
	"github.com/cwbudde/algo-sfsynth/synth/generator"
	"github.com/cwbudde/algo-sfsynth/synth/modulator"
)

// dynamicKey identifies a dynamic modulator. Repeated messages with the
// same key update the modulator instead of adding another.
type dynamicKey struct {
	index       uint8
	cc          bool
	destination generator.Type
	bipolar     bool
	negative    bool
}

func keyOf(src modulator.Source, dest generator.Type) dynamicKey {
	return dynamicKey{
		index:       src.Index,
		cc:          src.CC,
		destination: dest,
		bipolar:     src.Bipolar,
		negative:    src.Negative,
	}
}

type dynamicEntry struct {
	key dynamicKey
	mod modulator.Modulator
}

// dynamicModulators are the channel-wide modulators created from
// system exclusive messages. Channels hold only a handful, so lookups
// scan linearly.
type dynamicModulators struct {
	entries []dynamicEntry
}

// set adds, updates or (for a zero amount) removes the modulator for src
// and dest. It returns the modulator voices should merge; a removed
// modulator is returned with a zero amount so it no longer contributes.
func (d *dynamicModulators) set(src modulator.Source, dest generator.Type, amount int16) modulator.Modulator {
	key := keyOf(src, dest)
	m := modulator.New(src, modulator.Source{}, dest, amount, modulator.TransformLinear)
	for i := range d.entries {
		if d.entries[i].key != key {
			continue
		}
		if amount == 0 {
			old := d.entries[i].mod
			old.Amount = 0
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return old
		}
		d.entries[i].mod = m
		return m
	}
	if amount != 0 {
		d.entries = append(d.entries, dynamicEntry{key: key, mod: m})
	}
	return m
}

// clear removes every modulator and returns them with zero amounts.
func (d *dynamicModulators) clear() []modulator.Modulator {
	out := make([]modulator.Modulator, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.mod
		out[i].Amount = 0
	}
	d.entries = d.entries[:0]
	return out
}

// mergeInto applies every dynamic modulator to a new voice.
func (d *dynamicModulators) mergeInto(v *Voice) {
	for i := range d.entries {
		mergeModulator(v, d.entries[i].mod)
	}
}

// mergeModulator replaces the voice modulator identical to m, or appends
// m when there is none.
func mergeModulator(v *Voice, m modulator.Modulator) {
	for i := range v.modulators {
		if v.modulators[i].Identical(&m, false) {
			v.modulators[i] = m
			return
		}
	}
	v.modulators = append(v.modulators, m)
}
