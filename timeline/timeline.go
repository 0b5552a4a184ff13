// Package timeline holds the structured projection of a live-coding
// script: tracks, clips, sections and the per-parse track registry.
// Everything here is a fresh, disposable snapshot of the source text;
// the text itself is the only persisted state.
package timeline

// ClipType classifies what a clip triggers.
type ClipType string

const (
	ClipSample ClipType = "sample"
	ClipSynth  ClipType = "synth"
	ClipMixed  ClipType = "mixed"
)

// MinClipBeats is the presentation floor for clip durations so that
// zero-length events stay visible on the lane.
const MinClipBeats = 0.25

// DefaultBPM is used when neither the source nor the caller supplies
// a tempo.
const DefaultBPM = 120

// ClipEffect is one with_fx application, in source order.
type ClipEffect struct {
	Type   string             `json:"type" yaml:"type"`
	Params map[string]float64 `json:"params" yaml:"params"`
}

// Clip is one audible event or repeating block laid out on a track.
// SrcLineStart/SrcLineEnd are 0-based inclusive indices into the
// preprocessed (continuation-joined) line array of the parse that
// produced the clip; they are only valid until the source changes.
type Clip struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	StartBeat     float64      `json:"startBeat" yaml:"startBeat"`
	DurationBeats float64      `json:"durationBeats" yaml:"durationBeats"`
	Code          string       `json:"code" yaml:"code"`
	Type          ClipType     `json:"type" yaml:"type"`
	Color         string       `json:"color" yaml:"color"`
	Amp           float64      `json:"amp" yaml:"amp"`
	Effects       []ClipEffect `json:"effects" yaml:"effects"`
	IsLooping     bool         `json:"isLooping" yaml:"isLooping"`
	LoopCount     int          `json:"loopCount" yaml:"loopCount"`
	Samples       []string     `json:"samples" yaml:"samples"`
	SrcLineStart  int          `json:"srcLineStart" yaml:"srcLineStart"`
	SrcLineEnd    int          `json:"srcLineEnd" yaml:"srcLineEnd"`
	BufferID      int          `json:"bufferId" yaml:"bufferId"`
}

// Track is a named lane grouping related clips. Identity is the
// semantic name (loop name or category such as "Samples"), so two
// constructs yielding the same name merge within a single parse.
type Track struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Clips   []*Clip      `json:"clips" yaml:"clips"`
	Muted   bool         `json:"muted" yaml:"muted"`
	Solo    bool         `json:"solo" yaml:"solo"`
	Amp     float64      `json:"amp" yaml:"amp"`
	Effects []ClipEffect `json:"effects" yaml:"effects"`
	Color   string       `json:"color" yaml:"color"`
	Section string       `json:"section,omitempty" yaml:"section,omitempty"`
}

// FunctionDef is one define/def body captured during a parse. Batch
// generation re-emits definitions ahead of the clips so call-site
// clips survive a round trip.
type FunctionDef struct {
	Name string   `json:"name" yaml:"name"`
	Body []string `json:"body" yaml:"body"`
}

// SectionMarker is a named region delimiter derived from a
// `## ---- label ---- ##` comment.
type SectionMarker struct {
	Label     string  `json:"label" yaml:"label"`
	BeatStart float64 `json:"beatStart" yaml:"beatStart"`
}

// TimelineData is the full projection handed to the rendering layer.
type TimelineData struct {
	Tracks     []*Track        `json:"tracks" yaml:"tracks"`
	BPM        int             `json:"bpm" yaml:"bpm"`
	TotalBeats float64         `json:"totalBeats" yaml:"totalBeats"`
	Sections   []SectionMarker `json:"sections" yaml:"sections"`
	Functions  []FunctionDef   `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// ClipCount sums clips across all tracks.
func (d *TimelineData) ClipCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += len(t.Clips)
	}
	return n
}

// FindClip returns the clip with the given id, or nil.
func (d *TimelineData) FindClip(id string) (*Track, *Clip) {
	for _, t := range d.Tracks {
		for _, c := range t.Clips {
			if c.ID == id {
				return t, c
			}
		}
	}
	return nil, nil
}
