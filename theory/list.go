package theory

import (
	"strconv"
	"strings"
)

// FuncArgs extracts the argument text of the first `name(...)` call in
// expr, honoring nested parentheses.
func FuncArgs(expr, name string) (string, bool) {
	pattern := name + "("
	start := strings.Index(expr, pattern)
	if start < 0 {
		return "", false
	}
	inner := start + len(pattern)
	depth := 1
	for i := inner; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return expr[inner:i], true
			}
		}
	}
	return "", false
}

func splitItems(inner string) []string {
	var items []string
	for _, part := range strings.Split(inner, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ResolveList resolves a list-yielding expression to its elements.
// Supported forms mirror the language subset: inline arrays,
// (ring ...), ring(...), knit(...), range(...), line(...),
// spread(...), scale(...) and chord(...).
func ResolveList(expr string) ([]string, bool) {
	t := strings.TrimSpace(expr)

	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return splitItems(t[1 : len(t)-1]), true
	}

	if strings.HasPrefix(t, "(ring") || strings.HasPrefix(t, "( ring") {
		inner := strings.TrimSpace(strings.Trim(t, "()"))
		inner = strings.TrimSpace(strings.TrimPrefix(inner, "ring"))
		return splitItems(inner), true
	}

	if inner, ok := FuncArgs(t, "ring"); ok {
		return splitItems(inner), true
	}

	if inner, ok := FuncArgs(t, "knit"); ok {
		return evalKnit(inner), true
	}

	if inner, ok := FuncArgs(t, "range"); ok {
		return evalRange(inner), true
	}

	if inner, ok := FuncArgs(t, "line"); ok {
		return evalLine(inner), true
	}

	if inner, ok := FuncArgs(t, "spread"); ok {
		args := splitItems(inner)
		if len(args) >= 2 {
			pulses, _ := strconv.Atoi(args[0])
			steps, _ := strconv.Atoi(args[1])
			out := make([]string, 0, steps)
			for _, hit := range Euclidean(pulses, steps) {
				out = append(out, strconv.FormatBool(hit))
			}
			return out, true
		}
		return nil, false
	}

	if inner, ok := FuncArgs(t, "scale"); ok {
		args := splitItems(inner)
		if len(args) >= 2 {
			octaves := 1
			for _, a := range args[2:] {
				if strings.Contains(a, "num_octaves") {
					if v, err := strconv.Atoi(strings.TrimSpace(a[strings.LastIndex(a, ":")+1:])); err == nil {
						octaves = v
					}
				}
			}
			if notes, ok := ScaleNotes(args[0], args[1], octaves); ok {
				return midiStrings(notes), true
			}
		}
		return nil, false
	}

	if inner, ok := FuncArgs(t, "chord"); ok {
		args := splitItems(inner)
		if len(args) >= 1 {
			chordType := "major"
			if len(args) >= 2 {
				chordType = args[1]
			}
			if notes, ok := ChordNotes(args[0], chordType); ok {
				return midiStrings(notes), true
			}
		}
		return nil, false
	}

	return nil, false
}

// ResolveNumbers resolves a list expression and keeps the elements
// that parse as numbers.
func ResolveNumbers(expr string) ([]float64, bool) {
	items, ok := ResolveList(expr)
	if !ok {
		return nil, false
	}
	nums := make([]float64, 0, len(items))
	for _, it := range items {
		if v, err := strconv.ParseFloat(it, 64); err == nil {
			nums = append(nums, v)
		}
	}
	return nums, true
}

func midiStrings(notes []int) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = strconv.Itoa(n)
	}
	return out
}

// knit(:e3, 3, :c3, 1) repeats each value by its following count.
func evalKnit(inner string) []string {
	parts := splitItems(inner)
	var out []string
	for i := 0; i+1 < len(parts); i += 2 {
		count, err := strconv.Atoi(parts[i+1])
		if err != nil || count < 0 {
			count = 1
		}
		for j := 0; j < count; j++ {
			out = append(out, parts[i])
		}
	}
	return out
}

func evalRange(inner string) []string {
	parts := splitItems(inner)
	if len(parts) == 0 {
		return nil
	}
	start, _ := strconv.ParseFloat(parts[0], 64)
	end := start + 10
	if len(parts) >= 2 {
		if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
			end = v
		}
	}
	step := 1.0
	if len(parts) >= 3 {
		if v, err := strconv.ParseFloat(parts[2], 64); err == nil {
			step = v
		}
	}
	if step == 0 {
		return nil
	}
	var out []string
	if step > 0 {
		for v := start; v < end; v += step {
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	} else {
		for v := start; v > end; v += step {
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}

// line(start, finish, steps: n) interpolates linearly.
func evalLine(inner string) []string {
	parts := splitItems(inner)
	if len(parts) < 2 {
		return nil
	}
	start, _ := strconv.ParseFloat(parts[0], 64)
	finishStr := parts[1]
	if idx := strings.LastIndex(finishStr, ":"); idx >= 0 {
		finishStr = strings.TrimSpace(finishStr[idx+1:])
	}
	finish, _ := strconv.ParseFloat(finishStr, 64)
	steps := 10
	for _, p := range parts {
		if strings.Contains(p, "steps") {
			if v, err := strconv.Atoi(strings.TrimSpace(p[strings.LastIndex(p, ":")+1:])); err == nil {
				steps = v
			}
		}
	}
	if steps <= 1 {
		return []string{strconv.FormatFloat(start, 'f', -1, 64)}
	}
	out := make([]string, 0, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		out = append(out, strconv.FormatFloat(start+t*(finish-start), 'f', 4, 64))
	}
	return out
}
