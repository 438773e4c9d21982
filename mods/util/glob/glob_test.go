package glob_test

import (
	"testing"

	"github.com/atlasmaps/atlas/mods/util/glob"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		str     string
		expect  bool
	}{
		{"*", "anything", true},
		{"viz-*", "viz-color", true},
		{"viz-*", "playback-color", false},
		{"playback-?", "playback-a", true},
		{"playback-?", "playback-ab", false},
		{"*-color", "playback-color", true},
		{"", "", true},
		{"", "x", false},
		{"http?", "httpd", true},
		{"event*bus", "event-bus", true},
		{"geomap", "geomap", true},
		{"geomap", "geomaps", false},
	}
	for _, tt := range tests {
		matched, err := glob.Match(tt.pattern, tt.str)
		require.NoError(t, err)
		require.Equal(t, tt.expect, matched, "pattern=%q str=%q", tt.pattern, tt.str)
	}
}

func TestIsGlob(t *testing.T) {
	require.True(t, glob.IsGlob("viz-*"))
	require.True(t, glob.IsGlob("viz-?"))
	require.False(t, glob.IsGlob("viz-color"))
}
