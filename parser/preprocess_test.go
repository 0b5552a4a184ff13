package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLines_Continuations(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:     "plain lines untouched",
			source:   "sample :bd_haus\nsleep 1",
			expected: []string{"sample :bd_haus", "sleep 1"},
		},
		{
			name:     "trailing comma joins",
			source:   "play :e3,\n  amp: 0.5",
			expected: []string{"play :e3, amp: 0.5"},
		},
		{
			name:     "trailing backslash joins and is stripped",
			source:   "play :e3 \\\n  :minor",
			expected: []string{"play :e3 :minor"},
		},
		{
			name:     "chained continuations collapse to one line",
			source:   "play_pattern_timed [:e3, :g3],\n  [0.5, 0.5],\n  amp: 0.8",
			expected: []string{"play_pattern_timed [:e3, :g3], [0.5, 0.5], amp: 0.8"},
		},
		{
			name:     "dangling comma at end of input stays",
			source:   "play :e3,",
			expected: []string{"play :e3,"},
		},
		{
			name:     "trailing whitespace after comma still joins",
			source:   "play :e3, \n  amp: 1",
			expected: []string{"play :e3, amp: 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitLines(tt.source))
		})
	}
}

func TestStripInlineComment(t *testing.T) {
	assert.Equal(t, "sleep 1", stripInlineComment("sleep 1  # half bar"))
	assert.Equal(t, "# pure comment", stripInlineComment("# pure comment"))
	assert.Equal(t, "play :e3", stripInlineComment("  play :e3"))
}
