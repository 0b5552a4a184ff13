package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// TimelineMetrics handles custom metrics for Sentry
type TimelineMetrics struct {
	enabled bool
}

// NewTimelineMetrics creates a new Sentry metrics client
func NewTimelineMetrics() *TimelineMetrics {
	return &TimelineMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordParseDuration records one timeline parse pass
func (m *TimelineMetrics) RecordParseDuration(ctx context.Context, duration time.Duration, clips, tracks int) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "timeline.parse")
	defer span.Finish()

	span.SetTag("clips", fmt.Sprintf("%d", clips))
	span.SetTag("tracks", fmt.Sprintf("%d", tracks))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("clips", clips)
	span.SetData("tracks", tracks)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Timeline parse: %d clips / %d tracks", clips, tracks)
}

// RecordSynthesisEdit records one code-synthesis edit by kind
// (amp, effect-add, effect-remove, start, duration, mute)
func (m *TimelineMetrics) RecordSynthesisEdit(ctx context.Context, kind string, changed bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "timeline.synthesis")
	defer span.Finish()

	span.SetTag("edit", kind)
	span.SetData("changed", changed)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Synthesis edit: %s", kind)
}

// CaptureParsePanic reports a recovered parse-pass panic. The parse
// itself still returns a partial model; this only makes the failure
// visible to operators. No-op when Sentry is not initialized.
func CaptureParsePanic(recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("timeline parse panic: %v", recovered)
	}
	sentry.CaptureException(err)
}
