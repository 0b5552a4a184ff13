package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteToMIDI(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		expected int
		ok       bool
	}{
		{"middle c", "c4", 60, true},
		{"symbol prefix", ":e3", 52, true},
		{"sharp s form", "fs2", 42, true},
		{"sharp hash form", "f#2", 42, true},
		{"flat b form", "bb3", 58, true},
		{"octave defaults to 4", "a", 69, true},
		{"uppercase ok", "C4", 60, true},
		{"not a note", "x4", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			midi, ok := NoteToMIDI(tt.note)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, midi)
			}
		})
	}
}

func TestChordNotes(t *testing.T) {
	notes, ok := ChordNotes(":e3", ":minor")
	require.True(t, ok)
	assert.Equal(t, []int{52, 55, 59}, notes)

	notes, ok = ChordNotes("c4", "maj7")
	require.True(t, ok)
	assert.Equal(t, []int{60, 64, 67, 71}, notes)

	// unknown chord type falls back to a major triad
	notes, ok = ChordNotes("c4", "mystery")
	require.True(t, ok)
	assert.Equal(t, []int{60, 64, 67}, notes)
}

func TestScaleNotes(t *testing.T) {
	notes, ok := ScaleNotes(":c4", ":major", 1)
	require.True(t, ok)
	assert.Equal(t, []int{60, 62, 64, 65, 67, 69, 71, 72}, notes)

	notes, ok = ScaleNotes(":a3", ":minor_pentatonic", 2)
	require.True(t, ok)
	assert.Len(t, notes, 11)
	assert.Equal(t, 57, notes[0])
	assert.Equal(t, 57+24, notes[len(notes)-1])
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name   string
		pulses int
		steps  int
		hits   int
	}{
		{"three over eight", 3, 8, 3},
		{"four on floor", 4, 4, 4},
		{"zero pulses", 0, 8, 0},
		{"pulses exceed steps", 9, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := Euclidean(tt.pulses, tt.steps)
			require.Len(t, pattern, tt.steps)
			hits := 0
			for _, h := range pattern {
				if h {
					hits++
				}
			}
			assert.Equal(t, tt.hits, hits)
		})
	}
}

func TestResolveList(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected []string
	}{
		{"inline array", "[0.5, 0.5, 1]", []string{"0.5", "0.5", "1"}},
		{"paren ring", "(ring :a, :b, :c)", []string{":a", ":b", ":c"}},
		{"ring call", "ring(1, 2)", []string{"1", "2"}},
		{"knit repeats", "knit(:e3, 2, :c3, 1)", []string{":e3", ":e3", ":c3"}},
		{"range half open", "range(0, 4)", []string{"0", "1", "2", "3"}},
		{"range with step", "range(0, 2, 0.5)", []string{"0", "0.5", "1", "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, ok := ResolveList(tt.expr)
			require.True(t, ok)
			assert.Equal(t, tt.expected, items)
		})
	}

	t.Run("spread to booleans", func(t *testing.T) {
		items, ok := ResolveList("spread(3, 8)")
		require.True(t, ok)
		require.Len(t, items, 8)
		hits := 0
		for _, it := range items {
			if it == "true" {
				hits++
			}
		}
		assert.Equal(t, 3, hits)
	})

	t.Run("scale to midi strings", func(t *testing.T) {
		items, ok := ResolveList("scale(:c4, :major_pentatonic)")
		require.True(t, ok)
		assert.Equal(t, []string{"60", "62", "64", "67", "69", "72"}, items)
	})

	t.Run("plain identifier is not a list", func(t *testing.T) {
		_, ok := ResolveList("some_var")
		assert.False(t, ok)
	})
}

func TestResolveNumbers(t *testing.T) {
	nums, ok := ResolveNumbers("[0.25, 0.25, 0.5]")
	require.True(t, ok)
	assert.Equal(t, []float64{0.25, 0.25, 0.5}, nums)

	// symbols are dropped, numbers kept
	nums, ok = ResolveNumbers("[:e3, 1, 2]")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, nums)
}
