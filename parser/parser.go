// Package parser turns live-coding source text into a timeline
// projection. It is a single left-to-right pass over depth-scanned
// logical lines; there is no grammar and no AST, and parsing never
// fails — malformed input degrades to a smaller model, since the pass
// runs on every keystroke against potentially incomplete code.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/codaloop/timeline-go/config"
	"github.com/codaloop/timeline-go/metrics"
	"github.com/codaloop/timeline-go/theory"
	"github.com/codaloop/timeline-go/timeline"
)

var (
	sectionRe = regexp.MustCompile(`^##\s*-+\s*(.+?)\s*-+\s*##$`)
	useBPMRe  = regexp.MustCompile(`^use_bpm\s+([0-9]*\.?[0-9]+)`)
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Parser converts source text into timeline snapshots. A Parser is
// reusable: all per-parse state is reset at the start of every Parse
// call, so successive parses are independent and deterministic.
type Parser struct {
	fallbackBPM int

	// per-parse state, reset by reset()
	lines     []string
	registry  *timeline.Registry
	functions map[string][]string
	funcDefs  []timeline.FunctionDef
	rings     map[string][]string
	sections  []timeline.SectionMarker
	cursor    float64
	bpm       int
	bufferID  int
}

// New creates a parser. cfg may be nil; the fallback BPM then defaults
// to timeline.DefaultBPM.
func New(cfg *config.Config) *Parser {
	fallback := 0
	if cfg != nil {
		fallback = cfg.FallbackBPM
	}
	if fallback <= 0 {
		fallback = timeline.DefaultBPM
	}
	return &Parser{fallbackBPM: fallback}
}

// ParseTimeline is the package-level convenience entrypoint.
func ParseTimeline(source string, bufferID, fallbackBPM int) *timeline.TimelineData {
	return New(&config.Config{FallbackBPM: fallbackBPM}).Parse(source, bufferID)
}

// Parse projects source into a fresh TimelineData. The source text is
// the only authority; every returned object, including provenance line
// ranges, is valid only until the text changes. Panics are recovered
// into a partial model — the editor must stay responsive mid-edit.
func (p *Parser) Parse(source string, bufferID int) (data *timeline.TimelineData) {
	defer func() {
		if r := recover(); r != nil {
			metrics.CaptureParsePanic(r)
			data = p.snapshot()
		}
	}()
	p.reset(bufferID)
	p.lines = SplitLines(source)
	p.scanBPM()
	p.scanFunctions()
	for i := 0; i < len(p.lines); {
		i = p.handleLine(i)
	}
	return p.snapshot()
}

func (p *Parser) reset(bufferID int) {
	p.lines = nil
	p.registry = timeline.NewRegistry()
	p.functions = make(map[string][]string)
	p.funcDefs = nil
	p.rings = make(map[string][]string)
	p.sections = nil
	p.cursor = 0
	p.bpm = p.fallbackBPM
	p.bufferID = bufferID
}

func (p *Parser) snapshot() *timeline.TimelineData {
	total := math.Max(16, p.cursor)
	tracks := p.registry.Tracks()
	for _, t := range tracks {
		for _, c := range t.Clips {
			total = math.Max(total, c.StartBeat+c.DurationBeats)
		}
	}
	return &timeline.TimelineData{
		Tracks:     tracks,
		BPM:        p.bpm,
		TotalBeats: total,
		Sections:   p.sections,
		Functions:  p.funcDefs,
	}
}

// scanBPM applies the first use_bpm pragma; first occurrence wins.
func (p *Parser) scanBPM() {
	for _, line := range p.lines {
		if m := useBPMRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				p.bpm = int(v)
				return
			}
		}
	}
}

// scanFunctions stores define/def bodies so bare calls can be inlined.
func (p *Parser) scanFunctions() {
	for i := 0; i < len(p.lines); i++ {
		t := strings.TrimSpace(p.lines[i])
		if hasKeyword(t, "define") {
			if name, ok := extractSymbol(t); ok {
				b := scanBlock(p.lines, i)
				p.storeFunction(name, b.body)
				i = b.end
			}
			continue
		}
		if strings.HasPrefix(t, "def ") {
			rest := strings.TrimSpace(t[4:])
			name := rest
			if idx := strings.IndexAny(rest, " ("); idx >= 0 {
				name = rest[:idx]
			}
			if name != "" {
				b := scanBlock(p.lines, i)
				p.storeFunction(name, b.body)
				i = b.end
			}
		}
	}
}

func (p *Parser) storeFunction(name string, body []string) {
	p.functions[name] = body
	p.funcDefs = append(p.funcDefs, timeline.FunctionDef{Name: name, Body: body})
}

// handleLine dispatches one logical line and returns the next index.
// First match wins; order mirrors construct precedence.
func (p *Parser) handleLine(i int) int {
	line := strings.TrimSpace(p.lines[i])
	switch {
	case line == "":
		return i + 1
	case sectionRe.MatchString(line):
		label := sectionRe.FindStringSubmatch(line)[1]
		p.sections = append(p.sections, timeline.SectionMarker{Label: label, BeatStart: p.cursor})
		p.registry.SetSection(label)
		return i + 1
	case strings.HasPrefix(line, "#"):
		return i + 1
	case isPragma(line):
		return i + 1
	case hasKeyword(line, "define") || strings.HasPrefix(line, "def "):
		// bodies were stored by the pre-pass; nothing materializes here
		return scanBlock(p.lines, i).end + 1
	case hasKeyword(line, "live_loop"):
		return p.handleLiveLoop(i)
	case hasKeyword(line, "with_fx"):
		return p.handleWithFx(i)
	case hasKeyword(line, "with_synth"):
		return p.handleWithSynth(i)
	case hasKeyword(line, "with_bpm") || hasKeyword(line, "with_bpm_mul"):
		return p.handleWithBpm(i)
	case isTimesHeader(line):
		return p.handleTimes(i)
	case (strings.HasPrefix(line, "if ") || strings.HasPrefix(line, "unless ")) && IsBlockOpener(line):
		return p.handleConditional(i)
	case strings.Contains(line, ".each") && IsBlockOpener(line):
		return p.handleEach(i)
	case hasKeyword(line, "sleep"):
		if v, ok := parseSleep(line); ok {
			p.cursor += v
		}
		return i + 1
	case hasKeyword(line, "play_pattern_timed"):
		return p.handlePattern(i)
	case hasKeyword(line, "sample"):
		return p.handleSample(i)
	case hasKeyword(line, "play"):
		return p.handlePlay(i)
	default:
		if name, value, ok := parseAssignment(line); ok {
			if items, isList := theory.ResolveList(value); isList {
				p.rings[name] = items
			}
			return i + 1
		}
		if body, ok := p.functions[callName(line)]; ok {
			return p.handleFunctionCall(i, callName(line), body)
		}
		if IsBlockOpener(line) {
			// unrecognized block: consume it whole so its body is
			// never mis-parsed as flat statements
			return scanBlock(p.lines, i).end + 1
		}
		return i + 1
	}
}

// handleLiveLoop emits one clip per live_loop. Loops run concurrently
// with later top-level code, so the global cursor never advances.
func (p *Parser) handleLiveLoop(i int) int {
	b := scanBlock(p.lines, i)
	name, ok := extractSymbol(b.header)
	if !ok {
		name = "loop"
	}
	isLooping, loopCount := true, 0
	if hasBareStop(b.body) {
		isLooping, loopCount = false, 1
	}
	dur := timesAwareDuration(b.body)
	offset := leadingSleepOffset(b.body)
	c := p.newClip(name, i, b.end, p.cursor+offset, dur, b.body)
	c.IsLooping = isLooping
	c.LoopCount = loopCount
	p.registry.AddClip(name, c)
	return b.end + 1
}

func (p *Parser) handleWithFx(i int) int {
	b := scanBlock(p.lines, i)
	fx, ok := extractSymbol(b.header)
	if !ok {
		fx = "fx"
	}
	dur := flatDuration(b.body)
	c := p.newClip(fx, i, b.end, p.cursor, dur, b.body)
	head := timeline.ClipEffect{Type: fx, Params: extractParams(b.header)}
	c.Effects = append([]timeline.ClipEffect{head}, c.Effects...)
	p.registry.AddClip("FX: "+fx, c)
	p.cursor += dur
	return b.end + 1
}

func (p *Parser) handleWithSynth(i int) int {
	b := scanBlock(p.lines, i)
	name, ok := extractSymbol(b.header)
	if !ok {
		name = "synth"
	}
	dur := flatDuration(b.body)
	c := p.newClip(name, i, b.end, p.cursor, dur, b.body)
	c.Type = timeline.ClipSynth
	p.registry.AddClip("Synth: "+name, c)
	p.cursor += dur
	return b.end + 1
}

// handleWithBpm lays out a with_bpm/with_bpm_mul block. The tempo
// value does not rescale nested durations; the block is a plain
// sequential span on its own lane.
func (p *Parser) handleWithBpm(i int) int {
	b := scanBlock(p.lines, i)
	name := strings.TrimSpace(strings.TrimSuffix(stripInlineComment(b.header), "do"))
	dur := flatDuration(b.body)
	c := p.newClip(name, i, b.end, p.cursor, dur, b.body)
	p.registry.AddClip("BPM Block", c)
	p.cursor += dur
	return b.end + 1
}

func (p *Parser) handleTimes(i int) int {
	b := scanBlock(p.lines, i)
	n, _ := extractTimesCount(b.header)
	dur := flatDuration(b.body) * float64(n)
	c := p.newClip(strconv.Itoa(n)+".times", i, b.end, p.cursor, dur, b.body)
	c.LoopCount = n
	p.registry.AddClip("Loop", c)
	p.cursor += dur
	return b.end + 1
}

// handleConditional is optimistic: the condition is assumed true and
// elsif/else branches are stripped before measuring content.
func (p *Parser) handleConditional(i int) int {
	b := scanBlock(p.lines, i)
	branch := trueBranch(b.body)
	dur := flatDuration(branch)
	if dur > 0 {
		name := stripInlineComment(b.header)
		name = strings.TrimSuffix(strings.TrimSuffix(name, " do"), " then")
		c := p.newClip(name, i, b.end, p.cursor, dur, branch)
		p.registry.AddClip("Conditional", c)
		p.cursor += dur
	}
	return b.end + 1
}

// handleEach lays out an each/each_with_index block executed
// conceptually once; the collection length is unknown statically, so
// no multiplication happens.
func (p *Parser) handleEach(i int) int {
	b := scanBlock(p.lines, i)
	head := stripInlineComment(b.header)
	expr := strings.TrimSpace(head[:strings.Index(head, ".each")])
	name := expr + ".each"
	if items, ok := p.rings[expr]; ok {
		name = expr + ".each [" + strconv.Itoa(len(items)) + "]"
	}
	dur := flatDuration(b.body)
	c := p.newClip(name, i, b.end, p.cursor, dur, b.body)
	p.registry.AddClip("Iteration", c)
	p.cursor += dur
	return b.end + 1
}

// handlePattern: unlike a bare play, a timed pattern is sequential and
// advances the cursor.
func (p *Parser) handlePattern(i int) int {
	line := strings.TrimSpace(p.lines[i])
	dur, _ := patternDuration(line)
	c := p.newClip("pattern", i, i, p.cursor, dur, []string{p.lines[i]})
	c.Type = timeline.ClipSynth
	p.registry.AddClip("Synth Pattern", c)
	p.cursor += dur
	return i + 1
}

// handleSample emits an immediate hit; bare samples play concurrently
// and do not advance the cursor.
func (p *Parser) handleSample(i int) int {
	line := strings.TrimSpace(p.lines[i])
	name, ok := sampleDisplayName(line)
	if !ok {
		name = "sample"
	}
	dur := secondsToBeats(sampleSeconds(name), p.bpm)
	if rate, hasRate := extractRate(line); hasRate && rate != 0 {
		dur /= math.Abs(rate)
	}
	c := p.newClip(name, i, i, p.cursor, dur, []string{p.lines[i]})
	p.registry.AddClip("Samples", c)
	return i + 1
}

func (p *Parser) handlePlay(i int) int {
	line := strings.TrimSpace(p.lines[i])
	dur := extractEnvelope(line)
	name := playArgument(line)
	if name == "" {
		name = "play"
	}
	c := p.newClip(name, i, i, p.cursor, dur, []string{p.lines[i]})
	c.Type = timeline.ClipSynth
	p.registry.AddClip("Synth", c)
	return i + 1
}

// handleFunctionCall inlines a stored define/def body at the call
// site: one clip, duration computed from the body, cursor advanced.
func (p *Parser) handleFunctionCall(i int, name string, body []string) int {
	dur := timesAwareDuration(body)
	c := p.newClip(name, i, i, p.cursor, dur, body)
	p.registry.AddClip(name, c)
	p.cursor += dur
	return i + 1
}

// newClip builds a clip whose code is the verbatim slice
// lines[srcStart..srcEnd] and whose type/amp/effects/samples are read
// from body. Duration is clamped to the visual minimum.
func (p *Parser) newClip(name string, srcStart, srcEnd int, startBeat, dur float64, body []string) *timeline.Clip {
	if srcEnd >= len(p.lines) {
		srcEnd = len(p.lines) - 1
	}
	c := &timeline.Clip{
		Name:          name,
		StartBeat:     startBeat,
		DurationBeats: math.Max(dur, timeline.MinClipBeats),
		Code:          JoinLines(p.lines[srcStart : srcEnd+1]),
		Type:          classifyBody(body),
		Amp:           1.0,
		SrcLineStart:  srcStart,
		SrcLineEnd:    srcEnd,
		BufferID:      p.bufferID,
	}
	if amp, ok := firstAmp(body); ok {
		c.Amp = amp
	}
	c.Effects = nestedEffects(body)
	c.Samples = collectSamples(body)
	return c
}

func classifyBody(body []string) timeline.ClipType {
	hasSample, hasPlay := false, false
	for _, line := range body {
		t := strings.TrimSpace(line)
		if hasKeyword(t, "sample") {
			hasSample = true
		}
		if hasKeyword(t, "play") || hasKeyword(t, "play_pattern_timed") || hasKeyword(t, "synth") {
			hasPlay = true
		}
	}
	switch {
	case hasSample && hasPlay:
		return timeline.ClipMixed
	case hasSample:
		return timeline.ClipSample
	default:
		return timeline.ClipSynth
	}
}

func firstAmp(body []string) (float64, bool) {
	for _, line := range body {
		if v, ok := extractAmp(stripInlineComment(line)); ok {
			return v, true
		}
	}
	return 0, false
}

func nestedEffects(body []string) []timeline.ClipEffect {
	var effects []timeline.ClipEffect
	for _, line := range body {
		t := strings.TrimSpace(line)
		if !hasKeyword(t, "with_fx") {
			continue
		}
		if sym, ok := extractSymbol(t); ok {
			effects = append(effects, timeline.ClipEffect{Type: sym, Params: extractParams(t)})
		}
	}
	return effects
}

func collectSamples(body []string) []string {
	var samples []string
	for _, line := range body {
		t := strings.TrimSpace(line)
		if !hasKeyword(t, "sample") {
			continue
		}
		if name, ok := sampleDisplayName(t); ok {
			samples = append(samples, name)
		}
	}
	return samples
}

func hasBareStop(body []string) bool {
	for _, line := range body {
		if strings.TrimSpace(line) == "stop" {
			return true
		}
	}
	return false
}

// leadingSleepOffset detects sleeps at the top of a loop body that
// merely delay the first audible event. They shift the clip's visual
// start, not the global cursor.
func leadingSleepOffset(body []string) float64 {
	offset := 0.0
	for _, line := range body {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if v, ok := parseSleep(t); ok {
			offset += v
			continue
		}
		if isPlayable(t) {
			return offset
		}
		return 0
	}
	return 0
}

func isPlayable(line string) bool {
	return hasKeyword(line, "sample") || hasKeyword(line, "play") || hasKeyword(line, "play_pattern_timed")
}

func isPragma(line string) bool {
	return strings.HasPrefix(line, "use_") || hasKeyword(line, "set_volume!")
}

func isTimesHeader(line string) bool {
	if _, ok := extractTimesCount(line); !ok {
		return false
	}
	return IsBlockOpener(line)
}

func hasKeyword(line, kw string) bool {
	if line == kw {
		return true
	}
	return strings.HasPrefix(line, kw+" ") || strings.HasPrefix(line, kw+"\t") || strings.HasPrefix(line, kw+"(")
}

func callName(line string) string {
	t := stripInlineComment(line)
	if idx := strings.IndexAny(t, " ("); idx >= 0 {
		t = t[:idx]
	}
	return t
}

// parseAssignment matches `identifier = value` while rejecting
// comparison and compound operators.
func parseAssignment(line string) (name, value string, ok bool) {
	t := stripInlineComment(line)
	eq := strings.Index(t, "=")
	if eq <= 0 {
		return "", "", false
	}
	if eq+1 < len(t) {
		switch t[eq+1] {
		case '=', '>', '~':
			return "", "", false
		}
	}
	switch t[eq-1] {
	case '!', '<', '>', '+', '-', '*', '/', '%':
		return "", "", false
	}
	name = strings.TrimSpace(t[:eq])
	if !identRe.MatchString(name) || reservedWords[name] {
		return "", "", false
	}
	return name, strings.TrimSpace(t[eq+1:]), true
}

var reservedWords = map[string]bool{
	"play": true, "sample": true, "sleep": true, "use_bpm": true,
	"use_synth": true, "live_loop": true, "with_fx": true, "stop": true,
	"end": true, "do": true, "loop": true, "define": true, "def": true,
	"in_thread": true, "if": true, "unless": true, "puts": true,
}

// AdvancesCursor reports whether the leading construct of a code
// fragment consumes sequential time during a parse. The batch
// generator uses this to keep Generate-then-Parse stable.
func AdvancesCursor(code string) bool {
	for _, line := range SplitLines(code) {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		switch {
		case hasKeyword(t, "play_pattern_timed"),
			hasKeyword(t, "with_fx"),
			hasKeyword(t, "with_synth"),
			hasKeyword(t, "with_bpm"),
			hasKeyword(t, "with_bpm_mul"):
			return true
		case strings.HasPrefix(t, "if ") || strings.HasPrefix(t, "unless "):
			return IsBlockOpener(t)
		case strings.Contains(t, ".each") && IsBlockOpener(t):
			return true
		case isTimesHeader(t):
			return true
		default:
			return false
		}
	}
	return false
}

// LoopStartOffset returns the internal visual offset of a live_loop
// fragment (its leading bare sleep), 0 for anything else.
func LoopStartOffset(code string) float64 {
	lines := SplitLines(code)
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if hasKeyword(t, "live_loop") && IsBlockOpener(t) {
			return leadingSleepOffset(scanBlock(lines, i).body)
		}
		return 0
	}
	return 0
}
