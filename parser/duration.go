package parser

import (
	"strconv"
	"strings"

	"github.com/codaloop/timeline-go/theory"
)

// parseSleep reads a bare `sleep X` statement.
func parseSleep(line string) (float64, bool) {
	t := stripInlineComment(line)
	fields := strings.Fields(t)
	if len(fields) < 2 || fields[0] != "sleep" {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// patternDuration sums the timing list of a play_pattern_timed line.
// The times argument is the last list-yielding argument after the
// notes; inline arrays and ring/knit/range/line forms all resolve
// through the theory package. Trailing named params are skipped.
func patternDuration(line string) (float64, bool) {
	t := stripInlineComment(line)
	if !strings.HasPrefix(t, "play_pattern_timed") {
		return 0, false
	}
	args := splitTopLevelArgs(strings.TrimSpace(strings.TrimPrefix(t, "play_pattern_timed")))
	for i := len(args) - 1; i >= 1; i-- {
		times, ok := theory.ResolveNumbers(args[i])
		if !ok {
			continue
		}
		total := 0.0
		for _, v := range times {
			total += v
		}
		return total, true
	}
	return 0, true
}

// splitTopLevelArgs splits an argument list on commas outside any
// parentheses or brackets.
func splitTopLevelArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

// flatDuration sums the beats consumed by the top-level lines of a
// block body: every `sleep X` and the timing list of every
// `play_pattern_timed`. Nested blocks are deliberately skipped; the
// timeline trades execution fidelity for a readable lane layout.
func flatDuration(body []string) float64 {
	total := 0.0
	for i := 0; i < len(body); i++ {
		if IsBlockOpener(body[i]) {
			i = scanBlock(body, i).end
			continue
		}
		t := strings.TrimSpace(body[i])
		if v, ok := parseSleep(t); ok {
			total += v
			continue
		}
		if v, ok := patternDuration(t); ok {
			total += v
		}
	}
	return total
}

// timesAwareDuration sums (single-iteration duration x N) across the
// top-level N.times sub-blocks of a body, falling back to the flat
// duration when the body has none.
func timesAwareDuration(body []string) float64 {
	total := 0.0
	found := false
	for i := 0; i < len(body); i++ {
		if !IsBlockOpener(body[i]) {
			continue
		}
		nested := scanBlock(body, i)
		if n, ok := extractTimesCount(body[i]); ok {
			total += flatDuration(nested.body) * float64(n)
			found = true
		}
		i = nested.end
	}
	if !found {
		return flatDuration(body)
	}
	return total
}
