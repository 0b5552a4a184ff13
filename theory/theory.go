// Package theory provides the small music-theory vocabulary the
// language subset leans on: note names, scale and chord interval
// tables, and euclidean rhythm generation for spread().
package theory

import (
	"strconv"
	"strings"
)

var noteSemitones = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// NoteToMIDI converts a note symbol like "c4", ":e3", "fs2" or "bb3"
// to its MIDI number. The octave defaults to 4 when omitted.
func NoteToMIDI(name string) (int, bool) {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ":"))
	if s == "" {
		return 0, false
	}
	semi, ok := noteSemitones[s[0]]
	if !ok {
		return 0, false
	}
	rest := s[1:]
	for len(rest) > 0 {
		switch rest[0] {
		case 's', '#':
			semi++
		case 'b', 'f':
			semi--
		default:
			goto octave
		}
		rest = rest[1:]
	}
octave:
	octv := 4
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return 0, false
		}
		octv = n
	}
	midi := (octv+1)*12 + semi
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return midi, true
}

var scaleTable = map[string][]int{
	"major":            {0, 2, 4, 5, 7, 9, 11},
	"ionian":           {0, 2, 4, 5, 7, 9, 11},
	"minor":            {0, 2, 3, 5, 7, 8, 10},
	"aeolian":          {0, 2, 3, 5, 7, 8, 10},
	"harmonic_minor":   {0, 2, 3, 5, 7, 8, 11},
	"melodic_minor":    {0, 2, 3, 5, 7, 9, 11},
	"dorian":           {0, 2, 3, 5, 7, 9, 10},
	"phrygian":         {0, 1, 3, 5, 7, 8, 10},
	"lydian":           {0, 2, 4, 6, 7, 9, 11},
	"mixolydian":       {0, 2, 4, 5, 7, 9, 10},
	"locrian":          {0, 1, 3, 5, 6, 8, 10},
	"minor_pentatonic": {0, 3, 5, 7, 10},
	"major_pentatonic": {0, 2, 4, 7, 9},
	"pentatonic":       {0, 2, 4, 7, 9},
	"blues":            {0, 3, 5, 6, 7, 10},
	"whole_tone":       {0, 2, 4, 6, 8, 10},
	"chromatic":        {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"hirajoshi":        {0, 2, 3, 7, 8},
	"egyptian":         {0, 2, 5, 7, 10},
}

// ScaleIntervals returns the semitone offsets for a scale type,
// defaulting to major for unknown names.
func ScaleIntervals(scaleType string) []int {
	if iv, ok := scaleTable[strings.TrimPrefix(scaleType, ":")]; ok {
		return iv
	}
	return scaleTable["major"]
}

var chordTable = map[string][]int{
	"major":  {0, 4, 7},
	"maj":    {0, 4, 7},
	"minor":  {0, 3, 7},
	"min":    {0, 3, 7},
	"m":      {0, 3, 7},
	"major7": {0, 4, 7, 11},
	"maj7":   {0, 4, 7, 11},
	"minor7": {0, 3, 7, 10},
	"min7":   {0, 3, 7, 10},
	"m7":     {0, 3, 7, 10},
	"7":      {0, 4, 7, 10},
	"dom7":   {0, 4, 7, 10},
	"dim":    {0, 3, 6},
	"dim7":   {0, 3, 6, 9},
	"aug":    {0, 4, 8},
	"sus2":   {0, 2, 7},
	"sus4":   {0, 5, 7},
	"add9":   {0, 4, 7, 14},
	"m7b5":   {0, 3, 6, 10},
}

// ChordIntervals returns the semitone offsets for a chord type,
// defaulting to a major triad for unknown names.
func ChordIntervals(chordType string) []int {
	if iv, ok := chordTable[strings.TrimPrefix(chordType, ":")]; ok {
		return iv
	}
	return chordTable["major"]
}

// ChordNotes resolves chord(:root, :type) arguments to MIDI numbers.
func ChordNotes(root, chordType string) ([]int, bool) {
	base, ok := NoteToMIDI(root)
	if !ok {
		return nil, false
	}
	iv := ChordIntervals(chordType)
	notes := make([]int, 0, len(iv))
	for _, off := range iv {
		notes = append(notes, base+off)
	}
	return notes, true
}

// ScaleNotes resolves scale(:root, :type) arguments to MIDI numbers
// over the given number of octaves (minimum 1), plus the top note.
func ScaleNotes(root, scaleType string, octaves int) ([]int, bool) {
	base, ok := NoteToMIDI(root)
	if !ok {
		return nil, false
	}
	if octaves < 1 {
		octaves = 1
	}
	iv := ScaleIntervals(scaleType)
	var notes []int
	for o := 0; o < octaves; o++ {
		for _, off := range iv {
			m := base + off + o*12
			if m >= 0 && m <= 127 {
				notes = append(notes, m)
			}
		}
	}
	if top := base + octaves*12; top >= 0 && top <= 127 {
		notes = append(notes, top)
	}
	return notes, true
}

// Euclidean distributes pulses across steps, the spread() rhythm.
// Bresenham-style bucket accumulation.
func Euclidean(pulses, steps int) []bool {
	if steps <= 0 {
		return nil
	}
	pattern := make([]bool, steps)
	if pulses <= 0 {
		return pattern
	}
	if pulses >= steps {
		for i := range pattern {
			pattern[i] = true
		}
		return pattern
	}
	bucket := 0
	for i := 0; i < steps; i++ {
		bucket += pulses
		if bucket >= steps {
			bucket -= steps
			pattern[i] = true
		}
	}
	return pattern
}
