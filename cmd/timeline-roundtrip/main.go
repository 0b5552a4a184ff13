package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/codaloop/timeline-go/config"
	"github.com/codaloop/timeline-go/metrics"
	"github.com/codaloop/timeline-go/parser"
	"github.com/codaloop/timeline-go/synthesis"
	"github.com/codaloop/timeline-go/timeline"
)

// Exercises the full edit cycle on a fixed script: parse, apply a few
// surgical edits with a re-parse between each, regenerate the whole
// buffer, and confirm the regenerated code parses back to the same
// shape.
const demoScript = `use_bpm 120

## ---- Intro ---- ##

live_loop :drums do
  sample :bd_haus
  sleep 0.5
  sample :sn_dolf, amp: 0.8
  sleep 0.5
end

sleep 4

4.times do
  play :e3, release: 0.25
  sleep 0.25
end
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.FromEnv()
	p := parser.New(cfg)
	m := metrics.NewTimelineMetrics()
	ctx := context.Background()

	source := demoScript
	data := p.Parse(source, 0)
	fmt.Printf("Parsed: %d clips on %d tracks, %.2f beats\n\n",
		data.ClipCount(), len(data.Tracks), data.TotalBeats)

	// Edit 1: turn the snare down. Amp edits rewrite in place.
	if c := clipNamed(data, "drums"); c != nil {
		source = synthesis.ApplyClipAmpChange(source, c, 0.5)
		m.RecordSynthesisEdit(ctx, "amp", true)
		fmt.Println("🔊 amp -> 0.5 on :drums")
	}

	// Provenance is stale after every edit; re-parse before the next.
	data = p.Parse(source, 0)

	// Edit 2: push the times block two beats later.
	if c := clipNamed(data, "4.times"); c != nil {
		source = synthesis.ApplyClipStartChange(source, c, c.StartBeat+2)
		m.RecordSynthesisEdit(ctx, "start", true)
		fmt.Println("⏱  4.times block +2 beats")
	}

	data = p.Parse(source, 0)

	// Edit 3: wrap the times block in reverb. After this edit the
	// construct re-parses as a with_fx clip.
	if c := clipNamed(data, "4.times"); c != nil {
		source = synthesis.AddClipEffect(source, c, timeline.ClipEffect{
			Type:   "reverb",
			Params: map[string]float64{"room": 0.8},
		})
		m.RecordSynthesisEdit(ctx, "effect-add", true)
		fmt.Println("🎛  +reverb on 4.times block")
	}

	data = p.Parse(source, 0)
	fmt.Printf("\nEdited source:\n%s\n", source)

	// Full regeneration, then the fixed-point check: generated code
	// must parse to the same shape and regenerate to identical text.
	startTime := time.Now()
	generated := synthesis.GenerateCode(data)
	reparsed := p.Parse(generated, 0)
	regenerated := synthesis.GenerateCode(reparsed)
	duration := time.Since(startTime)

	fmt.Printf("Generated:\n%s\n", generated)

	if generated != regenerated {
		log.Fatal("❌ ERROR: generate -> parse -> generate is not a fixed point")
	}
	if reparsed.ClipCount() != data.ClipCount() || len(reparsed.Tracks) != len(data.Tracks) {
		log.Fatalf("❌ ERROR: reparse shape mismatch: %d/%d clips, %d/%d tracks",
			reparsed.ClipCount(), data.ClipCount(), len(reparsed.Tracks), len(data.Tracks))
	}

	fmt.Printf("✅ Round trip stable in %v: %d clips / %d tracks preserved\n",
		duration, reparsed.ClipCount(), len(reparsed.Tracks))
}

func clipNamed(data *timeline.TimelineData, name string) *timeline.Clip {
	for _, t := range data.Tracks {
		for _, c := range t.Clips {
			if c.Name == name {
				return c
			}
		}
	}
	return nil
}
