package parser

import "strings"

// block is one extracted do/then...end span.
type block struct {
	header    string
	body      []string // logical lines between header and closing end
	bodyStart int      // index of the first body line
	end       int      // index of the closing end, or the last consumed line when truncated
}

// IsBlockOpener reports whether a logical line opens a do/then block:
// a trailing `do`, a `do |args|` form, a trailing `then`, or a bare
// `do`. elsif and else never open a level of their own; they are
// carve-outs of the enclosing if.
func IsBlockOpener(line string) bool {
	t := stripInlineComment(line)
	if t == "" || strings.HasPrefix(t, "#") {
		return false
	}
	if strings.HasPrefix(t, "elsif") || t == "else" {
		return false
	}
	if t == "do" || t == "then" {
		return true
	}
	if strings.HasSuffix(t, " do") || strings.HasSuffix(t, " then") {
		return true
	}
	// do |x| ... |args| form
	if strings.HasSuffix(t, "|") {
		if idx := strings.LastIndex(t, " do |"); idx >= 0 {
			return true
		}
	}
	return false
}

// scanBlock extracts the block opened at lines[start], tracking depth
// across nested openers. A line equal to exactly `end` closes one
// level. Malformed input with no matching end consumes to the end of
// input and returns whatever accumulated; scanning never fails, since
// it runs on every keystroke against incomplete code.
func scanBlock(lines []string, start int) block {
	b := block{header: lines[start], bodyStart: start + 1, end: len(lines) - 1}
	depth := 1
	for j := start + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "end" {
			depth--
			if depth == 0 {
				b.end = j
				return b
			}
			b.body = append(b.body, lines[j])
			continue
		}
		if IsBlockOpener(lines[j]) {
			depth++
		}
		b.body = append(b.body, lines[j])
	}
	return b
}

// MatchingEnd returns the index of the `end` closing the block opened
// at lines[open], or the last line index when the block is truncated.
func MatchingEnd(lines []string, open int) int {
	return scanBlock(lines, open).end
}

// trueBranch returns the body lines of the first branch of an
// if/unless body, cutting at the first depth-0 elsif or else.
func trueBranch(body []string) []string {
	depth := 0
	for j := 0; j < len(body); j++ {
		t := strings.TrimSpace(body[j])
		if depth == 0 && (t == "else" || strings.HasPrefix(t, "elsif")) {
			return body[:j]
		}
		if t == "end" {
			if depth > 0 {
				depth--
			}
			continue
		}
		if IsBlockOpener(body[j]) {
			depth++
		}
	}
	return body
}
