// Package synthesis writes semantic edits back into source text. Each
// function takes the full current source, a clip or track carrying
// provenance from the most recent parse, and a delta, and returns new
// source text. Edits are confined to the provenance line range (or an
// immediately adjacent line for timing edits) and never reformat
// anything outside it.
//
// Provenance is only valid until the next edit: callers must re-parse
// before issuing another synthesis call. Edits that find nothing to
// change return the input unchanged rather than failing.
package synthesis

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/codaloop/timeline-go/parser"
	"github.com/codaloop/timeline-go/timeline"
)

// MutePrefix marks a muted line. Muting is the only edit that is
// exactly self-inverting by construction.
const MutePrefix = "# MUTED "

var (
	ampTokenRe   = regexp.MustCompile(`\bamp:\s*-?[0-9]*\.?[0-9]+`)
	sleepLineRe  = regexp.MustCompile(`^(\s*)sleep\s+([0-9]*\.?[0-9]+)\s*$`)
	timesLineRe  = regexp.MustCompile(`^(\s*)(\d+)(\.times\b.*)$`)
	withFxLineRe = regexp.MustCompile(`^\s*with_fx\s+:([A-Za-z_][A-Za-z0-9_]*)`)
)

func formatBeats(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// clampRange validates clip provenance against the current line array.
func clampRange(lines []string, c *timeline.Clip) (int, int, bool) {
	s, e := c.SrcLineStart, c.SrcLineEnd
	if s < 0 || e < s || s >= len(lines) {
		return 0, 0, false
	}
	if e >= len(lines) {
		e = len(lines) - 1
	}
	return s, e, true
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func isPlayableLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "sample ") || strings.HasPrefix(t, "play ") ||
		strings.HasPrefix(t, "play_pattern_timed ")
}

// applyAmpToLines replaces every amp: token in lines[s..e]; when none
// exists the amp is appended to the playable lines instead, so bare
// sample/play hits still round-trip.
func applyAmpToLines(lines []string, s, e int, amp float64) {
	token := "amp: " + formatBeats(amp)
	replaced := false
	for i := s; i <= e; i++ {
		if ampTokenRe.MatchString(lines[i]) {
			lines[i] = ampTokenRe.ReplaceAllString(lines[i], token)
			replaced = true
		}
	}
	if replaced {
		return
	}
	for i := s; i <= e; i++ {
		if isPlayableLine(lines[i]) {
			lines[i] = strings.TrimRight(lines[i], " \t") + ", " + token
		}
	}
}

// ApplyClipAmpChange rewrites the clip's amp in source.
func ApplyClipAmpChange(source string, clip *timeline.Clip, amp float64) string {
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	applyAmpToLines(lines, s, e, amp)
	return parser.JoinLines(lines)
}

// ApplyTrackAmpChange re-dispatches a track-level amp per clip as
// clip.amp x trackAmp. Amp edits never shift line indices, so the
// clip provenances stay valid across the loop.
func ApplyTrackAmpChange(source string, track *timeline.Track, trackAmp float64) string {
	for _, clip := range track.Clips {
		source = ApplyClipAmpChange(source, clip, clip.Amp*trackAmp)
	}
	return source
}

func fxHeader(indent string, effect timeline.ClipEffect) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString("with_fx :")
	b.WriteString(effect.Type)
	keys := make([]string, 0, len(effect.Params))
	for k := range effect.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(", ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(formatBeats(effect.Params[k]))
	}
	b.WriteString(" do")
	return b.String()
}

// AddClipEffect wraps the clip's lines in a with_fx block, indented to
// match the clip's first line.
func AddClipEffect(source string, clip *timeline.Clip, effect timeline.ClipEffect) string {
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	indent := indentOf(lines[s])
	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:s]...)
	out = append(out, fxHeader(indent, effect))
	out = append(out, lines[s:e+1]...)
	out = append(out, indent+"end")
	out = append(out, lines[e+1:]...)
	return parser.JoinLines(out)
}

// findFxLine locates the first with_fx of the given type in [s..e].
func findFxLine(lines []string, s, e int, fxType string) int {
	for i := s; i <= e && i < len(lines); i++ {
		if m := withFxLineRe.FindStringSubmatch(lines[i]); m != nil && m[1] == fxType {
			return i
		}
	}
	return -1
}

// RemoveClipEffect deletes the with_fx line of the given type and its
// matching end, leaving the wrapped body in place. Removing an effect
// that is not textually present is a no-op.
func RemoveClipEffect(source string, clip *timeline.Clip, fxType string) string {
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	open := findFxLine(lines, s, e, fxType)
	if open < 0 {
		return source
	}
	closing := parser.MatchingEnd(lines, open)
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == open || i == closing {
			continue
		}
		out = append(out, line)
	}
	return parser.JoinLines(out)
}

// UpdateClipEffect rewrites the with_fx line of the given type in
// place with new parameters.
func UpdateClipEffect(source string, clip *timeline.Clip, effect timeline.ClipEffect) string {
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	idx := findFxLine(lines, s, e, effect.Type)
	if idx < 0 {
		return source
	}
	lines[idx] = fxHeader(indentOf(lines[idx]), effect)
	return parser.JoinLines(lines)
}

// ApplyClipStartChange shifts a clip by adjusting the bare sleep on
// the line immediately preceding it, inserting one when the clip moves
// later and no sleep exists. The edit is delta-based: repeated calls
// without an intervening re-parse compound error.
func ApplyClipStartChange(source string, clip *timeline.Clip, newStart float64) string {
	delta := newStart - clip.StartBeat
	if math.Abs(delta) < 1e-9 {
		return source
	}
	lines := parser.SplitLines(source)
	s, _, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	if prev := s - 1; prev >= 0 {
		if m := sleepLineRe.FindStringSubmatch(lines[prev]); m != nil {
			v, err := strconv.ParseFloat(m[2], 64)
			if err == nil {
				nv := math.Max(0, v+delta)
				lines[prev] = m[1] + "sleep " + formatBeats(nv)
				return parser.JoinLines(lines)
			}
		}
	}
	if delta <= 0 {
		return source
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:s]...)
	out = append(out, indentOf(lines[s])+"sleep "+formatBeats(delta))
	out = append(out, lines[s:]...)
	return parser.JoinLines(out)
}

// ApplyClipDurationChange resizes a clip: an N.times block inside the
// range is rescaled proportionally (rounded, floored at 1); otherwise
// the last sleep inside the block absorbs the delta.
func ApplyClipDurationChange(source string, clip *timeline.Clip, newDur float64) string {
	if newDur <= 0 || clip.DurationBeats <= 0 {
		return source
	}
	delta := newDur - clip.DurationBeats
	if math.Abs(delta) < 1e-9 {
		return source
	}
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	for i := s; i <= e; i++ {
		m := timesLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n <= 0 {
			continue
		}
		scaled := int(math.Round(float64(n) * newDur / clip.DurationBeats))
		if scaled < 1 {
			scaled = 1
		}
		lines[i] = m[1] + strconv.Itoa(scaled) + m[3]
		return parser.JoinLines(lines)
	}
	for i := e; i >= s; i-- {
		m := sleepLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		lines[i] = m[1] + "sleep " + formatBeats(math.Max(0, v+delta))
		return parser.JoinLines(lines)
	}
	return source
}

// ApplyClipMute toggles the mute prefix on every line in the clip's
// range. Muted lines are comments to the parser and to the engine.
func ApplyClipMute(source string, clip *timeline.Clip, muted bool) string {
	lines := parser.SplitLines(source)
	s, e, ok := clampRange(lines, clip)
	if !ok {
		return source
	}
	for i := s; i <= e; i++ {
		if muted {
			if !strings.HasPrefix(lines[i], MutePrefix) {
				lines[i] = MutePrefix + lines[i]
			}
		} else {
			lines[i] = strings.TrimPrefix(lines[i], MutePrefix)
		}
	}
	return parser.JoinLines(lines)
}
