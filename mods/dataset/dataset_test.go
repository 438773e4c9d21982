package dataset_test

import (
	"testing"
	"time"

	"github.com/atlasmaps/atlas/mods/dataset"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	fs, err := dataset.Parse([]byte(`{
		"artifact": "height",
		"interval": 500,
		"frames": [
			{"index": 0, "values": {"zone-a": 10, "zone-b": 1}},
			{"index": 1, "values": {"zone-a": 20}},
			{"index": 5, "values": {"zone-a": 30}}
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, "height", fs.Artifact)
	require.Equal(t, 500*time.Millisecond, fs.Interval)
	require.Len(t, fs.Frames, 3)
	require.Equal(t, 10.0, fs.Frames[0].Values["zone-a"])
	require.Equal(t, 1.0, fs.Frames[0].Values["zone-b"])
	require.Equal(t, 5, fs.Frames[2].Index)
}

func TestParseColorValues(t *testing.T) {
	fs, err := dataset.Parse([]byte(`{
		"artifact": "color",
		"frames": [
			{"index": 0, "values": {"zone-a": "#ff0000"}}
		]
	}`))
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), fs.Interval)
	require.Equal(t, "#ff0000", fs.Frames[0].Values["zone-a"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{"artifact":`},
		{"missing artifact", `{"frames":[{"index":0,"values":{}}]}`},
		{"missing frames", `{"artifact":"color"}`},
		{"empty frames", `{"artifact":"color","frames":[]}`},
		{"missing index", `{"artifact":"color","frames":[{"values":{"a":1}}]}`},
		{"unsorted frames", `{"artifact":"color","frames":[{"index":2,"values":{}},{"index":1,"values":{}}]}`},
		{"duplicate index", `{"artifact":"color","frames":[{"index":1,"values":{}},{"index":1,"values":{}}]}`},
		{"bad interval", `{"artifact":"color","interval":-5,"frames":[{"index":0,"values":{}}]}`},
		{"bad value type", `{"artifact":"color","frames":[{"index":0,"values":{"a":[1,2]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.Parse([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}
