package modulator

import "github.com/cwbudde/algo-sfsynth/synth/generator"

var defaultModulators = []Modulator{
	New(Source{Index: NoteOnVelocity, Curve: CurveConcave, Negative: true}, noneSource,
		generator.InitialAttenuation, 960, TransformLinear),
	New(Source{Index: NoteOnVelocity, Negative: true}, noneSource,
		generator.InitialFilterFc, -2400, TransformLinear),
	New(Source{Index: ChannelPressure}, noneSource,
		generator.VibLfoToPitch, 50, TransformLinear),
	New(CC(1), noneSource, generator.VibLfoToPitch, 50, TransformLinear),
	New(Source{Index: 7, CC: true, Curve: CurveConcave, Negative: true}, noneSource,
		generator.InitialAttenuation, 960, TransformLinear),
	New(Source{Index: 10, CC: true, Bipolar: true}, noneSource,
		generator.Pan, 500, TransformLinear),
	New(Source{Index: 11, CC: true, Curve: CurveConcave, Negative: true}, noneSource,
		generator.InitialAttenuation, 960, TransformLinear),
	New(reverbSource, noneSource, generator.ReverbEffectsSend, 200, TransformLinear),
	New(chorusSource, noneSource, generator.ChorusEffectsSend, 200, TransformLinear),
	New(Source{Index: PitchWheel, Bipolar: true}, Source{Index: PitchWheelRange},
		generator.FineTune, 12700, TransformLinear),
	New(Source{Index: 73, CC: true, Bipolar: true}, noneSource,
		generator.AttackVolEnv, 6000, TransformLinear),
	New(Source{Index: 72, CC: true, Bipolar: true}, noneSource,
		generator.ReleaseVolEnv, 3600, TransformLinear),
	New(Source{Index: 74, CC: true, Bipolar: true}, noneSource,
		generator.InitialFilterFc, 6000, TransformLinear),
	New(resonantSource, noneSource, generator.InitialFilterQ, 250, TransformLinear),
}

// Defaults returns a fresh copy of the SF2 default modulator set.
func Defaults() []Modulator {
	return append([]Modulator(nil), defaultModulators...)
}
