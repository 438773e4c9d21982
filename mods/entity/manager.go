package entity

import (
	"fmt"

	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/nums"
	"github.com/gofrs/uuid/v5"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Manager owns the id -> entity registry. Entities are registered by the
// caller (or imported from GeoJSON) and referenced by projections; the manager
// is the only component that adds or removes entries.
type Manager struct {
	log      logging.Log
	entities cmap.ConcurrentMap[string, *Entity]
}

func NewManager() *Manager {
	return &Manager{
		log:      logging.GetLog("entities"),
		entities: cmap.New[*Entity](),
	}
}

func (m *Manager) Set(ent *Entity) {
	m.entities.Set(ent.ID(), ent)
}

func (m *Manager) Get(id string) (*Entity, bool) {
	return m.entities.Get(id)
}

func (m *Manager) Remove(id string) {
	m.entities.Remove(id)
}

func (m *Manager) Count() int {
	return m.entities.Count()
}

func (m *Manager) List() []*Entity {
	ret := make([]*Entity, 0, m.entities.Count())
	for item := range m.entities.IterBuffered() {
		ret = append(ret, item.Val)
	}
	return ret
}

// Bound returns the bounding box covering every entity geometry.
func (m *Manager) Bound() *nums.LatLngBound {
	bound := nums.NewLatLngBound()
	for item := range m.entities.IterBuffered() {
		for _, coord := range item.Val.Geometry().Coordinates() {
			bound = bound.Extend(nums.NewLatLng(coord[0], coord[1]))
		}
	}
	return bound
}

// ImportGeoJSON registers an entity for every feature of a FeatureCollection.
// Feature ids become entity ids, features without one get a generated id.
// Returns the ids of the imported entities.
func (m *Manager) ImportGeoJSON(data []byte) ([]string, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid geojson %s", err.Error())
	}
	var ids []string
	for _, f := range fc.Features {
		geom, err := convertGeometry(f.Geometry)
		if err != nil {
			return nil, err
		}
		id := featureID(f)
		base := Appearance{
			FillColor: f.Properties.MustString("fillColor", ""),
			Height:    f.Properties.MustFloat64("height", 0),
			Elevation: f.Properties.MustFloat64("elevation", 0),
		}
		m.Set(New(id, geom, base))
		ids = append(ids, id)
	}
	m.log.Debugf("imported %d entities", len(ids))
	return ids, nil
}

func featureID(f *geojson.Feature) string {
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	if v := f.Properties.MustString("id", ""); v != "" {
		return v
	}
	return uuid.Must(uuid.NewV7()).String()
}

// Caution!!: geojson is "lon,lat" order, nums.Geography is "lat,lng" order
func convertGeometry(g orb.Geometry) (nums.Geography, error) {
	switch geom := g.(type) {
	case orb.Point:
		return nums.NewGeoPoint(nums.NewLatLng(geom.Lat(), geom.Lon()), nil), nil
	case orb.LineString:
		pts := make([]any, 0, len(geom))
		for _, p := range geom {
			pts = append(pts, nums.NewLatLng(p.Lat(), p.Lon()))
		}
		return nums.NewGeoLineString(pts, nil), nil
	case orb.Polygon:
		if len(geom) == 0 {
			return nil, fmt.Errorf("empty polygon")
		}
		pts := make([]any, 0, len(geom[0]))
		for _, p := range geom[0] {
			pts = append(pts, nums.NewLatLng(p.Lat(), p.Lon()))
		}
		return nums.NewGeoPolygon(pts, nil), nil
	case orb.MultiPoint:
		pts := make([]any, 0, len(geom))
		for _, p := range geom {
			pts = append(pts, nums.NewLatLng(p.Lat(), p.Lon()))
		}
		return nums.NewGeoMultiPoint(pts, nil), nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.GeoJSONType())
	}
}
