package entity_test

import (
	"testing"

	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/atlasmaps/atlas/mods/nums"
	"github.com/stretchr/testify/require"
)

func TestApplyRemoveEffect(t *testing.T) {
	ent := entity.New("bldg-1",
		nums.NewGeoPolygon([]any{
			nums.NewLatLng(51.5, -0.1),
			nums.NewLatLng(51.6, -0.1),
			nums.NewLatLng(51.6, 0.0),
		}, nil),
		entity.Appearance{FillColor: "#cccccc", Height: 10})

	require.NoError(t, ent.ApplyEffect(entity.ArtifactColor, "#ff0000"))
	require.NoError(t, ent.ApplyEffect(entity.ArtifactHeight, 42.0))
	require.True(t, ent.HasEffect(entity.ArtifactColor))

	app := ent.Appearance()
	require.Equal(t, "#ff0000", app.FillColor)
	require.Equal(t, 42.0, app.Height)

	cur, err := ent.CurrentValue(entity.ArtifactColor)
	require.NoError(t, err)
	require.Equal(t, "#ff0000", cur)

	require.NoError(t, ent.RemoveEffect(entity.ArtifactColor))
	require.False(t, ent.HasEffect(entity.ArtifactColor))
	app = ent.Appearance()
	require.Equal(t, "#cccccc", app.FillColor)
	require.Equal(t, 42.0, app.Height)

	// removing twice is harmless
	require.NoError(t, ent.RemoveEffect(entity.ArtifactColor))
}

func TestApplyEffectTypeCheck(t *testing.T) {
	ent := entity.New("p1", nums.NewGeoPoint(nums.NewLatLng(0, 0), nil), entity.Appearance{})
	require.Error(t, ent.ApplyEffect(entity.ArtifactColor, 1.0))
	require.Error(t, ent.ApplyEffect(entity.ArtifactHeight, "tall"))
	require.Error(t, ent.ApplyEffect("texture", "brick"))
}

func TestCurrentValueBase(t *testing.T) {
	ent := entity.New("p1", nums.NewGeoPoint(nums.NewLatLng(0, 0), nil),
		entity.Appearance{FillColor: "#001122", Height: 7})
	v, err := ent.CurrentValue(entity.ArtifactHeight)
	require.NoError(t, err)
	require.Equal(t, 7.0, v)

	_, err = ent.CurrentValue("texture")
	require.Error(t, err)
}

func TestManagerImportGeoJSON(t *testing.T) {
	mgr := entity.NewManager()
	ids, err := mgr.ImportGeoJSON([]byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"id": "zone-a",
				"geometry": {"type": "Polygon", "coordinates": [[[ -0.1, 51.5 ],[ -0.1, 51.6 ],[ 0.0, 51.6 ],[ -0.1, 51.5 ]]]},
				"properties": {"fillColor": "#00ff00", "height": 25}
			},
			{
				"type": "Feature",
				"geometry": {"type": "Point", "coordinates": [ 2.35, 48.85 ]},
				"properties": {}
			}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Equal(t, 2, mgr.Count())

	zone, ok := mgr.Get("zone-a")
	require.True(t, ok)
	require.Equal(t, "#00ff00", zone.Appearance().FillColor)
	require.Equal(t, 25.0, zone.Appearance().Height)

	bound := mgr.Bound()
	require.False(t, bound.IsEmpty())
	require.Equal(t, 48.85, bound.Min.Lat)
	require.Equal(t, 51.6, bound.Max.Lat)
}

func TestManagerImportGeoJSONInvalid(t *testing.T) {
	mgr := entity.NewManager()
	_, err := mgr.ImportGeoJSON([]byte(`{"type":`))
	require.Error(t, err)
}
