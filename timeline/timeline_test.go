package timeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRegistry_TracksMergeByName(t *testing.T) {
	r := NewRegistry()
	r.AddClip("drums", &Clip{Name: "a"})
	r.AddClip("drums", &Clip{Name: "b"})
	r.AddClip("bass", &Clip{Name: "c"})

	tracks := r.Tracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "drums", tracks[0].Name)
	assert.Len(t, tracks[0].Clips, 2)
	assert.Equal(t, "bass", tracks[1].Name)
}

func TestRegistry_AssignsIdentityAndColor(t *testing.T) {
	r := NewRegistry()
	r.AddClip("drums", &Clip{Name: "a"})
	r.AddClip("bass", &Clip{Name: "b"})

	tracks := r.Tracks()
	assert.NotEmpty(t, tracks[0].ID)
	assert.NotEmpty(t, tracks[0].Clips[0].ID)
	assert.NotEmpty(t, tracks[0].Color)
	assert.NotEqual(t, tracks[0].Color, tracks[1].Color)

	// clips inherit their track's color
	assert.Equal(t, tracks[0].Color, tracks[0].Clips[0].Color)
}

func TestRegistry_SectionStampedOnNewTracks(t *testing.T) {
	r := NewRegistry()
	r.AddClip("drums", &Clip{})
	r.SetSection("Drop")
	r.AddClip("bass", &Clip{})

	tracks := r.Tracks()
	assert.Empty(t, tracks[0].Section)
	assert.Equal(t, "Drop", tracks[1].Section)
}

func TestTimelineData_ClipCountAndFindClip(t *testing.T) {
	r := NewRegistry()
	r.AddClip("drums", &Clip{Name: "a"})
	r.AddClip("bass", &Clip{Name: "b"})

	data := &TimelineData{Tracks: r.Tracks()}
	assert.Equal(t, 2, data.ClipCount())

	id := data.Tracks[1].Clips[0].ID
	tr, c := data.FindClip(id)
	require.NotNil(t, c)
	assert.Equal(t, "bass", tr.Name)
	assert.Equal(t, "b", c.Name)

	tr, c = data.FindClip("nope")
	assert.Nil(t, tr)
	assert.Nil(t, c)
}

func TestExportShapes(t *testing.T) {
	r := NewRegistry()
	r.AddClip("drums", &Clip{Name: "kick", StartBeat: 0.75, DurationBeats: 1, Amp: 1})
	data := &TimelineData{
		Tracks:     r.Tracks(),
		BPM:        120,
		TotalBeats: 16,
		Sections:   []SectionMarker{{Label: "Intro", BeatStart: 0}},
	}

	raw, err := data.ToJSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.EqualValues(t, 120, decoded["bpm"])
	assert.Contains(t, string(raw), `"startBeat": 0.75`)
	assert.Contains(t, string(raw), `"label": "Intro"`)

	rawYAML, err := data.ToYAML()
	require.NoError(t, err)
	var decodedYAML map[string]any
	require.NoError(t, yaml.Unmarshal(rawYAML, &decodedYAML))
	assert.EqualValues(t, 120, decodedYAML["bpm"])
}
