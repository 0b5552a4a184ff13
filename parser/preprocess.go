package parser

import "strings"

// SplitLines preprocesses source text into the logical line array
// every other component works on: physical lines ending with a
// trailing comma or backslash are joined into the next line with a
// single space, repeated until no continuation remains. A dangling
// continuation at end of input is left as-is.
//
// Parsing and synthesis must both derive their line arrays through
// this function so clip provenance stays consistent.
func SplitLines(source string) []string {
	raw := strings.Split(source, "\n")
	out := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		cur := raw[i]
		for i+1 < len(raw) {
			trimmed := strings.TrimRight(cur, " \t")
			if strings.HasSuffix(trimmed, "\\") {
				cur = strings.TrimRight(strings.TrimSuffix(trimmed, "\\"), " \t") + " " + strings.TrimSpace(raw[i+1])
				i++
			} else if strings.HasSuffix(trimmed, ",") {
				cur = trimmed + " " + strings.TrimSpace(raw[i+1])
				i++
			} else {
				break
			}
		}
		out = append(out, cur)
	}
	return out
}

// JoinLines is the inverse of SplitLines at the logical-line level.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// stripInlineComment removes a trailing # comment from a logical line.
// Lines that are comments from the first column are left alone.
func stripInlineComment(line string) string {
	t := strings.TrimSpace(line)
	if strings.HasPrefix(t, "#") {
		return t
	}
	if idx := strings.Index(t, " #"); idx >= 0 {
		return strings.TrimSpace(t[:idx])
	}
	return t
}
