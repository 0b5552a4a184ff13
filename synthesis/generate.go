package synthesis

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/codaloop/timeline-go/parser"
	"github.com/codaloop/timeline-go/timeline"
)

// placedClip pairs a clip with its owning track for batch generation.
// at is the emission position: a live_loop's leading internal sleep is
// part of its code, so the construct itself belongs at the clip start
// minus that offset.
type placedClip struct {
	track *timeline.Track
	clip  *timeline.Clip
	at    float64
}

// GenerateCode renders a whole timeline back to source, front to back.
// It is the lossy counterpart of the surgical edits: formatting and
// comments outside clips are not preserved, but re-parsing the output
// yields the same tracks, clips, starts and durations, so a second
// generation is a fixed point.
func GenerateCode(data *timeline.TimelineData) string {
	var out []string

	bpm := data.BPM
	if bpm <= 0 {
		bpm = timeline.DefaultBPM
	}
	out = append(out, "use_bpm "+strconv.Itoa(bpm), "")

	fnNames := make(map[string]bool, len(data.Functions))
	for _, fn := range data.Functions {
		out = append(out, "define :"+fn.Name+" do")
		out = append(out, fn.Body...)
		out = append(out, "end", "")
		fnNames[fn.Name] = true
	}

	clips := orderedClips(data)
	sections := append([]timeline.SectionMarker(nil), data.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].BeatStart < sections[j].BeatStart
	})

	// cursor mirrors the beat cursor a re-parse of the output will
	// hold at each emitted line: sleeps and cursor-advancing
	// constructs move it, everything else does not.
	cursor := 0.0
	nextSection := 0
	for _, pc := range clips {
		for nextSection < len(sections) && sections[nextSection].BeatStart <= pc.at+1e-9 {
			m := sections[nextSection]
			if gap := m.BeatStart - cursor; gap > 1e-9 {
				out = append(out, "sleep "+formatBeats(gap))
				cursor += gap
			}
			out = append(out, "## ---- "+m.Label+" ---- ##")
			nextSection++
		}

		code := pc.clip.Code
		gap := pc.at - cursor
		if gap > 1e-9 {
			out = append(out, "sleep "+formatBeats(gap))
			cursor += gap
		}

		out = append(out, renderClip(pc)...)
		out = append(out, "")

		// inlined function calls consume their body's duration on a
		// re-parse even though the call line alone looks inert
		if parser.AdvancesCursor(code) || fnNames[callTarget(code)] {
			cursor += pc.clip.DurationBeats
		}
	}
	for nextSection < len(sections) {
		m := sections[nextSection]
		if gap := m.BeatStart - cursor; gap > 1e-9 {
			out = append(out, "sleep "+formatBeats(gap))
			cursor += gap
		}
		out = append(out, "## ---- "+m.Label+" ---- ##")
		nextSection++
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return parser.JoinLines(out) + "\n"
}

// orderedClips flattens unmuted tracks into emission order, which is
// the clip start minus any internal loop offset, not the raw start
// beat. The sort is stable over track declaration order, so generation
// is deterministic for a given model.
func orderedClips(data *timeline.TimelineData) []placedClip {
	var clips []placedClip
	for _, t := range data.Tracks {
		if t.Muted {
			continue
		}
		for _, c := range t.Clips {
			clips = append(clips, placedClip{
				track: t,
				clip:  c,
				at:    c.StartBeat - parser.LoopStartOffset(c.Code),
			})
		}
	}
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].at < clips[j].at
	})
	return clips
}

// renderClip emits one clip's code with track-level state baked in:
// the effective amp (clip x track) and any track effects the clip
// does not already carry.
func renderClip(pc placedClip) []string {
	lines := parser.SplitLines(pc.clip.Code)

	amp := pc.clip.Amp * pc.track.Amp
	if hasAmpToken(lines) || math.Abs(amp-1.0) > 1e-9 {
		applyAmpToLines(lines, 0, len(lines)-1, amp)
	}

	for i := len(pc.track.Effects) - 1; i >= 0; i-- {
		fx := pc.track.Effects[i]
		if clipHasEffect(pc.clip, fx.Type) {
			continue
		}
		wrapped := make([]string, 0, len(lines)+2)
		wrapped = append(wrapped, fxHeader("", fx))
		for _, l := range lines {
			wrapped = append(wrapped, "  "+l)
		}
		wrapped = append(wrapped, "end")
		lines = wrapped
	}
	return lines
}

func hasAmpToken(lines []string) bool {
	for _, l := range lines {
		if ampTokenRe.MatchString(l) {
			return true
		}
	}
	return false
}

// callTarget returns the leading identifier of a clip's first code
// line, the shape a bare function call has.
func callTarget(code string) string {
	for _, line := range parser.SplitLines(code) {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if idx := strings.IndexAny(t, " ("); idx >= 0 {
			t = t[:idx]
		}
		return t
	}
	return ""
}

func clipHasEffect(c *timeline.Clip, fxType string) bool {
	for _, fx := range c.Effects {
		if fx.Type == fxType {
			return true
		}
	}
	return strings.Contains(c.Code, "with_fx :"+fxType)
}
