package generator

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownType is returned when a generator name cannot be resolved.
var ErrUnknownType = errors.New("generator: unknown generator type")

// Type enumerates SoundFont2 generator operators.
type Type uint8

// SF2 generator operators 0..60, followed by synthesis-only extensions.
const (
	StartAddrsOffset Type = iota
	EndAddrOffset
	StartloopAddrsOffset
	EndloopAddrsOffset
	StartAddrsCoarseOffset
	ModLfoToPitch
	VibLfoToPitch
	ModEnvToPitch
	InitialFilterFc
	InitialFilterQ
	ModLfoToFilterFc
	ModEnvToFilterFc
	EndAddrsCoarseOffset
	ModLfoToVolume
	Unused1
	ChorusEffectsSend
	ReverbEffectsSend
	Pan
	Unused2
	Unused3
	Unused4
	DelayModLFO
	FreqModLFO
	DelayVibLFO
	FreqVibLFO
	DelayModEnv
	AttackModEnv
	HoldModEnv
	DecayModEnv
	SustainModEnv
	ReleaseModEnv
	KeyNumToModEnvHold
	KeyNumToModEnvDecay
	DelayVolEnv
	AttackVolEnv
	HoldVolEnv
	DecayVolEnv
	SustainVolEnv
	ReleaseVolEnv
	KeyNumToVolEnvHold
	KeyNumToVolEnvDecay
	Instrument
	Reserved1
	KeyRange
	VelRange
	StartloopAddrsCoarseOffset
	KeyNum
	Velocity
	InitialAttenuation
	Reserved2
	EndloopAddrsCoarseOffset
	CoarseTune
	FineTune
	SampleID
	SampleModes
	Reserved3
	ScaleTuning
	ExclusiveClass
	OverridingRootKey
	Unused5
	EndOper

	// VibLfoToVolume and VibLfoToFilterFc are never stored in files.
	VibLfoToVolume
	VibLfoToFilterFc

	// Count is the number of slots in a Table.
	Count int = iota
)

// Invalid marks an unset destination.
const Invalid Type = 255

// Limit is the valid range and default of a generator type.
type Limit struct {
	Min, Max, Default int16
}

var fullRange = Limit{Min: math.MinInt16, Max: math.MaxInt16}

var limits = [Count]Limit{
	StartAddrsOffset:           {0, 32767, 0},
	EndAddrOffset:              {-32767, 32767, 0},
	StartloopAddrsOffset:       {-32767, 32767, 0},
	EndloopAddrsOffset:         {-32767, 32767, 0},
	StartAddrsCoarseOffset:     {0, 32767, 0},
	ModLfoToPitch:              {-12000, 12000, 0},
	VibLfoToPitch:              {-12000, 12000, 0},
	ModEnvToPitch:              {-12000, 12000, 0},
	InitialFilterFc:            {1500, 13500, 13500},
	InitialFilterQ:             {0, 960, 0},
	ModLfoToFilterFc:           {-12000, 12000, 0},
	ModEnvToFilterFc:           {-12000, 12000, 0},
	EndAddrsCoarseOffset:       {-32767, 32767, 0},
	ModLfoToVolume:             {-960, 960, 0},
	Unused1:                    fullRange,
	ChorusEffectsSend:          {0, 1000, 0},
	ReverbEffectsSend:          {0, 1000, 0},
	Pan:                        {-500, 500, 0},
	Unused2:                    fullRange,
	Unused3:                    fullRange,
	Unused4:                    fullRange,
	DelayModLFO:                {-12000, 5000, -12000},
	FreqModLFO:                 {-16000, 4500, 0},
	DelayVibLFO:                {-12000, 5000, -12000},
	FreqVibLFO:                 {-16000, 4500, 0},
	DelayModEnv:                {-32767, 5000, -32767},
	AttackModEnv:               {-32767, 8000, -32767},
	HoldModEnv:                 {-12000, 5000, -12000},
	DecayModEnv:                {-12000, 8000, -12000},
	SustainModEnv:              {0, 1000, 0},
	ReleaseModEnv:              {-12000, 8000, -12000},
	KeyNumToModEnvHold:         {-1200, 1200, 0},
	KeyNumToModEnvDecay:        {-1200, 1200, 0},
	DelayVolEnv:                {-12000, 5000, -12000},
	AttackVolEnv:               {-12000, 8000, -12000},
	HoldVolEnv:                 {-12000, 5000, -12000},
	DecayVolEnv:                {-12000, 8000, -12000},
	SustainVolEnv:              {0, 1440, 0},
	ReleaseVolEnv:              {-7200, 8000, -12000},
	KeyNumToVolEnvHold:         {-1200, 1200, 0},
	KeyNumToVolEnvDecay:        {-1200, 1200, 0},
	Instrument:                 fullRange,
	Reserved1:                  fullRange,
	KeyRange:                   fullRange,
	VelRange:                   fullRange,
	StartloopAddrsCoarseOffset: {-32767, 32767, 0},
	KeyNum:                     {-1, 127, -1},
	Velocity:                   {-1, 127, -1},
	InitialAttenuation:         {0, 1440, 0},
	Reserved2:                  fullRange,
	EndloopAddrsCoarseOffset:   {-32767, 32767, 0},
	CoarseTune:                 {-120, 120, 0},
	FineTune:                   {-12700, 12700, 0},
	SampleID:                   fullRange,
	SampleModes:                {0, 3, 0},
	Reserved3:                  fullRange,
	ScaleTuning:                {0, 1200, 100},
	ExclusiveClass:             {0, 32767, 0},
	OverridingRootKey:          {-1, 127, -1},
	Unused5:                    fullRange,
	EndOper:                    fullRange,
	VibLfoToVolume:             {-960, 960, 0},
	VibLfoToFilterFc:           {-12000, 12000, 0},
}

var names = [Count]string{
	"startAddrsOffset", "endAddrOffset", "startloopAddrsOffset",
	"endloopAddrsOffset", "startAddrsCoarseOffset", "modLfoToPitch",
	"vibLfoToPitch", "modEnvToPitch", "initialFilterFc", "initialFilterQ",
	"modLfoToFilterFc", "modEnvToFilterFc", "endAddrsCoarseOffset",
	"modLfoToVolume", "unused1", "chorusEffectsSend", "reverbEffectsSend",
	"pan", "unused2", "unused3", "unused4", "delayModLFO", "freqModLFO",
	"delayVibLFO", "freqVibLFO", "delayModEnv", "attackModEnv",
	"holdModEnv", "decayModEnv", "sustainModEnv", "releaseModEnv",
	"keyNumToModEnvHold", "keyNumToModEnvDecay", "delayVolEnv",
	"attackVolEnv", "holdVolEnv", "decayVolEnv", "sustainVolEnv",
	"releaseVolEnv", "keyNumToVolEnvHold", "keyNumToVolEnvDecay",
	"instrument", "reserved1", "keyRange", "velRange",
	"startloopAddrsCoarseOffset", "keyNum", "velocity",
	"initialAttenuation", "reserved2", "endloopAddrsCoarseOffset",
	"coarseTune", "fineTune", "sampleID", "sampleModes", "reserved3",
	"scaleTuning", "exclusiveClass", "overridingRootKey", "unused5",
	"endOper", "vibLfoToVolume", "vibLfoToFilterFc",
}

// Valid reports whether t indexes a Table slot.
func (t Type) Valid() bool { return int(t) < Count }

// Limits returns the {min, max, default} triple of t.
func (t Type) Limits() Limit {
	if !t.Valid() {
		return fullRange
	}
	return limits[t]
}

// Default returns the default value of t.
func (t Type) Default() int16 { return t.Limits().Default }

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("generator(%d)", uint8(t))
	}
	return names[t]
}

// Parse resolves a generator by its SF2 name (e.g. "initialFilterFc").
func Parse(name string) (Type, error) {
	for i, n := range names {
		if n == name {
			return Type(i), nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Clamp limits v to the valid range of t.
func Clamp(t Type, v int32) int16 {
	l := t.Limits()
	if v < int32(l.Min) {
		return l.Min
	}
	if v > int32(l.Max) {
		return l.Max
	}
	return int16(v)
}

// IsVolumeEnvelope reports whether a change to t requires recalculating
// the volume envelope.
func (t Type) IsVolumeEnvelope() bool {
	switch t {
	case InitialAttenuation, DelayVolEnv, AttackVolEnv, HoldVolEnv,
		DecayVolEnv, SustainVolEnv, ReleaseVolEnv, KeyNumToVolEnvHold,
		KeyNumToVolEnvDecay:
		return true
	default:
		return false
	}
}
