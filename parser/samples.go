package parser

import "strings"

// Rough per-family lengths of the built-in sample set, in seconds.
// Derived from the engine's sample generator specs; only used to size
// clips visually, never for playback.
var sampleFamilySeconds = []struct {
	prefix  string
	seconds float64
}{
	{"bd_", 0.5},
	{"sn_", 0.3},
	{"hat_", 0.15},
	{"elec_", 0.4},
	{"perc_", 0.3},
	{"tabla_", 0.5},
	{"drum_", 1.0},
	{"bass_", 1.0},
	{"guit_", 2.0},
	{"amb_", 4.0},
	{"ambi_", 4.0},
	{"loop_", 4.0},
}

const defaultSampleSeconds = 2.0

func sampleSeconds(name string) float64 {
	for _, fam := range sampleFamilySeconds {
		if strings.HasPrefix(name, fam.prefix) {
			return fam.seconds
		}
	}
	return defaultSampleSeconds
}

// secondsToBeats converts wall-clock seconds to beats at a tempo.
func secondsToBeats(seconds float64, bpm int) float64 {
	return seconds * float64(bpm) / 60.0
}
