package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSymbol(t *testing.T) {
	sym, ok := extractSymbol("live_loop :drums do")
	require.True(t, ok)
	assert.Equal(t, "drums", sym)

	_, ok = extractSymbol("sleep 1")
	assert.False(t, ok)
}

func TestExtractAmp(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected float64
		ok       bool
	}{
		{"plain", "sample :bd_haus, amp: 0.7", 0.7, true},
		{"integer", "play :e3, amp: 2", 2, true},
		{"absent", "sample :bd_haus", 0, false},
		{"preamp not matched", "sample :x, preamp: 3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := extractAmp(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestExtractEnvelope(t *testing.T) {
	assert.InDelta(t, 1.75, extractEnvelope("play :e3, attack: 0.25, sustain: 0.5, release: 1"), 1e-9)
	assert.InDelta(t, 0.5, extractEnvelope("play :e3, release: 0.5"), 1e-9)
	assert.Zero(t, extractEnvelope("play :e3"))
}

func TestExtractTimesCount(t *testing.T) {
	n, ok := extractTimesCount("4.times do")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = extractTimesCount("x.times do")
	assert.False(t, ok)
}

func TestExtractParams(t *testing.T) {
	params := extractParams("with_fx :reverb, room: 0.8, mix: 0.5 do")
	assert.Equal(t, map[string]float64{"room": 0.8, "mix": 0.5}, params)
}

func TestSampleDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
		ok       bool
	}{
		{"symbol", "sample :bd_haus", "bd_haus", true},
		{"quoted path basename", `sample "/srv/loops/amen_break.wav"`, "amen_break", true},
		{"nothing usable", "sample one_two", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := sampleDisplayName(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPlayArgument(t *testing.T) {
	assert.Equal(t, ":e3", playArgument("play :e3, release: 0.5"))
	assert.Equal(t, "chord(:e3, :minor)", playArgument("play chord(:e3, :minor), amp: 0.5"))
	assert.Equal(t, ":e3", playArgument("play :e3"))
}
