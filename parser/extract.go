package parser

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Small pure readers for the fields a single logical line can carry.

var (
	symbolRe  = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)
	ampRe     = regexp.MustCompile(`\bamp:\s*(-?[0-9]*\.?[0-9]+)`)
	rateRe    = regexp.MustCompile(`\brate:\s*(-?[0-9]*\.?[0-9]+)`)
	attackRe  = regexp.MustCompile(`\battack:\s*(-?[0-9]*\.?[0-9]+)`)
	sustainRe = regexp.MustCompile(`\bsustain:\s*(-?[0-9]*\.?[0-9]+)`)
	releaseRe = regexp.MustCompile(`\brelease:\s*(-?[0-9]*\.?[0-9]+)`)
	paramRe   = regexp.MustCompile(`([a-z_][a-z0-9_]*):\s*(-?[0-9]*\.?[0-9]+)`)
	timesRe   = regexp.MustCompile(`^(\d+)\.times\b`)
	quotedRe  = regexp.MustCompile(`"([^"]+)"`)
)

func extractSymbol(line string) (string, bool) {
	m := symbolRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func matchFloat(re *regexp.Regexp, line string) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractAmp(line string) (float64, bool)  { return matchFloat(ampRe, line) }
func extractRate(line string) (float64, bool) { return matchFloat(rateRe, line) }

// extractEnvelope sums attack + sustain + release, each 0 if absent.
func extractEnvelope(line string) float64 {
	total := 0.0
	for _, re := range []*regexp.Regexp{attackRe, sustainRe, releaseRe} {
		if v, ok := matchFloat(re, line); ok {
			total += v
		}
	}
	return total
}

// extractTimesCount reads the N of a `N.times do` header.
func extractTimesCount(line string) (int, bool) {
	m := timesRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// extractParams collects the numeric `name: value` pairs on a line.
func extractParams(line string) map[string]float64 {
	params := make(map[string]float64)
	for _, m := range paramRe.FindAllStringSubmatch(line, -1) {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			params[m[1]] = v
		}
	}
	return params
}

// sampleDisplayName derives the display name of a sample line: the
// first symbol, or the basename of a quoted file path.
func sampleDisplayName(line string) (string, bool) {
	if sym, ok := extractSymbol(line); ok {
		return sym, true
	}
	if m := quotedRe.FindStringSubmatch(line); m != nil {
		base := path.Base(m[1])
		return strings.TrimSuffix(base, path.Ext(base)), true
	}
	return "", false
}

// playArgument returns the first argument of a play line, e.g. ":e3"
// or "chord(:e3, :minor)", for use as a clip name.
func playArgument(line string) string {
	t := strings.TrimSpace(strings.TrimPrefix(stripInlineComment(line), "play"))
	depth := 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(t[:i])
			}
		}
	}
	return t
}
