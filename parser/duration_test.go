package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSleep(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected float64
		ok       bool
	}{
		{"integer", "sleep 2", 2, true},
		{"fraction", "sleep 0.25", 0.25, true},
		{"inline comment", "sleep 1 # one beat", 1, true},
		{"negative rejected", "sleep -1", 0, false},
		{"expression rejected", "sleep t", 0, false},
		{"not a sleep", "sample :bd_haus", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := parseSleep(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestPatternDuration(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected float64
	}{
		{"literal list", "play_pattern_timed [:e3, :g3, :b3], [0.5, 0.5, 1]", 2},
		{"single time list", "play_pattern_timed [:e3, :g3], [0.25]", 0.25},
		{"ring call times", "play_pattern_timed [:e3, :g3, :b3], ring(0.5, 0.5, 1)", 2},
		{"paren ring times", "play_pattern_timed [:e3, :g3, :b3], (ring 0.5, 0.5, 1)", 2},
		{"knit times", "play_pattern_timed [:e3], knit(0.5, 2, 1, 1)", 2},
		{"trailing params skipped", "play_pattern_timed [:e3, :g3], [0.5, 0.5], amp: 0.7", 1},
		{"notes list never used as times", "play_pattern_timed [:e3, :g3], foo", 0},
		{"no list at all", "play_pattern_timed chord(:e3, :minor), 0.5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := patternDuration(tt.line)
			require.True(t, ok)
			assert.InDelta(t, tt.expected, v, 1e-9)
		})
	}
}

func TestFlatDuration_SkipsNestedBlocks(t *testing.T) {
	body := SplitLines(`sleep 1
4.times do
  sleep 0.5
end
sleep 0.5`)
	assert.InDelta(t, 1.5, flatDuration(body), 1e-9)
}

func TestTimesAwareDuration(t *testing.T) {
	t.Run("multiplies times blocks", func(t *testing.T) {
		body := SplitLines(`4.times do
  sample :bd_haus
  sleep 0.5
end`)
		assert.InDelta(t, 2.0, timesAwareDuration(body), 1e-9)
	})

	t.Run("sums multiple times blocks", func(t *testing.T) {
		body := SplitLines(`2.times do
  sleep 0.5
end
3.times do
  sleep 1
end`)
		assert.InDelta(t, 4.0, timesAwareDuration(body), 1e-9)
	})

	t.Run("falls back to flat duration", func(t *testing.T) {
		body := SplitLines(`sample :bd_haus
sleep 0.5
sleep 0.5`)
		assert.InDelta(t, 1.0, timesAwareDuration(body), 1e-9)
	})
}
