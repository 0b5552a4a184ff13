package timeline

import "github.com/google/uuid"

// palette is the rotating set of lane colors. The rotation index lives
// on the registry, not in package state, so every parse starts from
// the same color and parses stay independent and deterministic.
var palette = []string{
	"#e74c3c", // red
	"#3498db", // blue
	"#2ecc71", // green
	"#f39c12", // orange
	"#9b59b6", // purple
	"#1abc9c", // teal
	"#e67e22", // carrot
	"#f1c40f", // yellow
	"#e84393", // pink
	"#00cec9", // cyan
}

// Registry maps semantic names to tracks for the duration of one
// parse. Tracks keep their insertion order.
type Registry struct {
	tracks    []*Track
	byName    map[string]*Track
	nextColor int
	section   string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Track)}
}

// SetSection updates the section label applied to tracks created from
// here on.
func (r *Registry) SetSection(label string) {
	r.section = label
}

// Track returns the track registered under name, creating it with the
// next palette color on first use.
func (r *Registry) Track(name string) *Track {
	if t, ok := r.byName[name]; ok {
		return t
	}
	t := &Track{
		ID:      uuid.NewString(),
		Name:    name,
		Amp:     1.0,
		Color:   palette[r.nextColor%len(palette)],
		Section: r.section,
	}
	r.nextColor++
	r.byName[name] = t
	r.tracks = append(r.tracks, t)
	return t
}

// AddClip registers a clip on the named track, stamping the track
// color onto the clip and assigning its id.
func (r *Registry) AddClip(trackName string, c *Clip) *Clip {
	t := r.Track(trackName)
	c.ID = uuid.NewString()
	c.Color = t.Color
	t.Clips = append(t.Clips, c)
	return c
}

// Tracks returns the tracks in creation order.
func (r *Registry) Tracks() []*Track {
	return r.tracks
}
