package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/codaloop/timeline-go/config"
	"github.com/codaloop/timeline-go/metrics"
	"github.com/codaloop/timeline-go/parser"
	"github.com/codaloop/timeline-go/timeline"
)

func main() {
	format := flag.String("format", "json", "output format: json or yaml")
	buffer := flag.Int("buffer", 0, "buffer id stamped onto every clip")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.FromEnv()

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Printf("⚠️  Warning: Sentry init failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	source, err := readSource(flag.Arg(0))
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	startTime := time.Now()
	data := parser.New(cfg).Parse(source, *buffer)
	duration := time.Since(startTime)

	m := metrics.NewTimelineMetrics()
	m.RecordParseDuration(context.Background(), duration, data.ClipCount(), len(data.Tracks))

	out, err := encode(data, *format)
	if err != nil {
		log.Fatalf("❌ ERROR: %v", err)
	}

	fmt.Println(string(out))
	log.Printf("✅ Parsed %d clips on %d tracks in %v (bpm %d, %.2f beats)",
		data.ClipCount(), len(data.Tracks), duration, data.BPM, data.TotalBeats)
}

// readSource reads the script from a file argument or stdin.
func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}

func encode(data *timeline.TimelineData, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return data.ToYAML()
	case "json":
		return data.ToJSON()
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
