package nums_test

import (
	"math"
	"testing"

	"github.com/atlasmaps/atlas/mods/nums"
	"github.com/stretchr/testify/require"
)

func TestLatLngBound(t *testing.T) {
	b := nums.NewLatLngBound()
	require.True(t, b.IsEmpty())

	b = b.Extend(nums.NewLatLng(51.5, -0.1))
	require.False(t, b.IsEmpty())
	require.InDelta(t, 51.5, b.Center().Lat, 1e-8)

	b = b.Extend(nums.NewLatLng(52.5, 0.3))
	// the mercator-plane midpoint sits slightly above the arithmetic mean
	require.InDelta(t, 52.0, b.Center().Lat, 0.01)
	require.Greater(t, b.Center().Lat, 52.0)
	require.InDelta(t, 0.1, b.Center().Lng, 1e-9)
	require.Equal(t, "[[51.5,-0.1],[52.5,0.3]]", b.String())
}

func TestLatLngDistance(t *testing.T) {
	london := nums.NewLatLng(51.5074, -0.1278)
	paris := nums.NewLatLng(48.8566, 2.3522)
	d := london.DistanceTo(paris)
	// ~344km
	require.InDelta(t, 343900, d, 1500)
}

func TestGeoEllipse(t *testing.T) {
	el := nums.NewGeoEllipse(nums.NewLatLng(51.5, -0.1), 500, 250, 45, nil)
	coords := el.Outline(32)
	require.Len(t, coords, 33)
	// closed ring
	require.InDelta(t, coords[0][0], coords[32][0], 1e-9)
	require.InDelta(t, coords[0][1], coords[32][1], 1e-9)
	// every vertex within the semi-major distance from the center
	for _, c := range coords {
		d := el.Center().DistanceTo(nums.NewLatLng(c[0], c[1]))
		require.LessOrEqual(t, d, 500*1.01)
		require.GreaterOrEqual(t, d, 250*0.99)
	}
}

func TestGeoEllipseAxes(t *testing.T) {
	const metersPerDegree = 111319.49079327358
	el := nums.NewGeoEllipse(nums.NewLatLng(0, 10), 1000, 500, 0, nil)
	coords := el.Outline(4)
	require.Len(t, coords, 5)
	// east vertex, one semi-major axis from the center
	require.InDelta(t, 0.0, coords[0][0], 1e-6)
	require.InDelta(t, 10.0+1000.0/metersPerDegree, coords[0][1], 1e-6)
	// north vertex, one semi-minor axis
	require.InDelta(t, 500.0/metersPerDegree, coords[1][0], 1e-6)
	require.InDelta(t, 10.0, coords[1][1], 1e-6)
}

func TestGeoProperties(t *testing.T) {
	props, err := nums.NewGeoPropertiesParse(`"color":"#ff0000","popup.open":true`)
	require.NoError(t, err)

	v, ok := props.PopString("color")
	require.True(t, ok)
	require.Equal(t, "#ff0000", v)

	flag, ok := props.PopBool("popup.open")
	require.True(t, ok)
	require.True(t, flag)

	_, ok = props.PopString("color")
	require.False(t, ok)
}

func TestGeoPropertiesMarshalJS(t *testing.T) {
	props := nums.GeoProperties{"radius": 10, "color": "#00ff00", "fill": true}
	js, err := props.MarshalJS()
	require.NoError(t, err)
	require.Equal(t, `{color:"#00ff00",fill:true,radius:10}`, js)
}

func TestGeoMarkers(t *testing.T) {
	pm := nums.NewGeoPointMarker(nums.NewLatLng(37.0, 127.0), nil)
	require.Equal(t, "marker", pm.Marker())

	cm := nums.NewGeoCircleMarker(nums.NewLatLng(37.0, 127.0), 100, nil)
	require.Equal(t, "circleMarker", cm.Marker())
	require.Equal(t, 100.0, cm.Radius())
}

func TestTransformer3857(t *testing.T) {
	toMerc := nums.Transformer3857()
	x, y, _ := toMerc(-0.09, 51.505, 0)
	mx, my := nums.LatLngToMeters(51.505, -0.09)
	require.InDelta(t, mx, x, 1.0)
	require.InDelta(t, my, y, 1.0)

	back := nums.Transformer4326()
	lng, lat, _ := back(x, y, 0)
	require.InDelta(t, -0.09, lng, 1e-6)
	require.InDelta(t, 51.505, lat, 1e-6)
	require.False(t, math.IsNaN(lat))
}
