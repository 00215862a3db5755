package generator

// Generator is a single (type, amount) pair from a zone.
type Generator struct {
	Type  Type
	Value int16
}

// Table holds one value per generator type.
type Table [Count]int16

// Defaults returns a table filled with every type's default value.
func Defaults() Table {
	var t Table
	for i := range t {
		t[i] = limits[i].Default
	}
	return t
}

// ClampAll clamps every slot of t to its type's limits.
func (t *Table) ClampAll() {
	for i, v := range t {
		t[i] = Clamp(Type(i), int32(v))
	}
}

// Find returns the last value of typ in list.
func Find(list []Generator, typ Type) (int16, bool) {
	v, ok := int16(0), false
	for _, g := range list {
		if g.Type == typ {
			v, ok = g.Value, true
		}
	}
	return v, ok
}

// Sum returns the unclamped sum of the instrument value (or the default)
// and the preset value (or zero) for typ.
func Sum(typ Type, preset, instrument []Generator) int32 {
	base := int32(typ.Default())
	if v, ok := Find(instrument, typ); ok {
		base = int32(v)
	}
	if v, ok := Find(preset, typ); ok {
		base += int32(v)
	}
	return base
}

// Build sums every type from the preset and instrument lists and clamps
// the result once all types are accumulated.
func Build(preset, instrument []Generator) Table {
	var (
		raw       [Count]int32
		presetSum [Count]int32
	)
	for i := range raw {
		raw[i] = int32(limits[i].Default)
	}
	for _, g := range instrument {
		if g.Type.Valid() {
			raw[g.Type] = int32(g.Value)
		}
	}
	for _, g := range preset {
		if g.Type.Valid() {
			presetSum[g.Type] = int32(g.Value)
		}
	}
	var t Table
	for i, v := range raw {
		t[i] = Clamp(Type(i), v+presetSum[i])
	}
	return t
}
