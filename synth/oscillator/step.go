package oscillator

import "math"

// PlaybackStep returns the cursor increment that plays data recorded at
// sampleRate at its original pitch on an engine running at outputRate,
// corrected by pitchCorrection cents.
func PlaybackStep(sampleRate, outputRate, pitchCorrection float64) float64 {
	if outputRate <= 0 || sampleRate <= 0 {
		return 0
	}
	return sampleRate / outputRate * math.Pow(2, pitchCorrection/1200)
}
