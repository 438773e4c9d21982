package nums

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Alt float64 `json:"alt,omitempty"`
}

func NewLatLng(lat, lng float64) *LatLng {
	return &LatLng{Lat: lat, Lng: lng}
}

func (ll *LatLng) String() string {
	return fmt.Sprintf("[%v,%v]", ll.Lat, ll.Lng)
}

func (ll *LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{ll.Lat, ll.Lng})
}

func (ll *LatLng) Array() []float64 {
	return []float64{ll.Lat, ll.Lng}
}

const earthRadius = 6371000.0

// DistanceTo returns the great-circle distance to pt in meters.
func (ll *LatLng) DistanceTo(pt *LatLng) float64 {
	lat1 := ll.Lat * math.Pi / 180
	lat2 := pt.Lat * math.Pi / 180
	dLat := (pt.Lat - ll.Lat) * math.Pi / 180
	dLng := (pt.Lng - ll.Lng) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

type LatLngBound struct {
	Min *LatLng
	Max *LatLng
}

func NewLatLngBound(pts ...*LatLng) *LatLngBound {
	ret := &LatLngBound{}
	for _, p := range pts {
		ret = ret.Extend(p)
	}
	return ret
}

func (b *LatLngBound) IsEmpty() bool {
	return b == nil || b.Min == nil || b.Max == nil
}

func (b *LatLngBound) Extend(p *LatLng) *LatLngBound {
	if p == nil {
		return b
	}
	if b.IsEmpty() {
		return &LatLngBound{
			Min: NewLatLng(p.Lat, p.Lng),
			Max: NewLatLng(p.Lat, p.Lng),
		}
	}
	ret := &LatLngBound{
		Min: NewLatLng(math.Min(b.Min.Lat, p.Lat), math.Min(b.Min.Lng, p.Lng)),
		Max: NewLatLng(math.Max(b.Max.Lat, p.Lat), math.Max(b.Max.Lng, p.Lng)),
	}
	return ret
}

// Center returns the midpoint of the bound on the mercator plane, the point
// a viewer sees in the middle of a fitted map.
func (b *LatLngBound) Center() *LatLng {
	if b.IsEmpty() {
		return nil
	}
	x0, y0 := LatLngToMeters(b.Min.Lat, b.Min.Lng)
	x1, y1 := LatLngToMeters(b.Max.Lat, b.Max.Lng)
	lat, lng := MetersToLatLng((x0+x1)/2, (y0+y1)/2)
	return NewLatLng(lat, lng)
}

func (b *LatLngBound) String() string {
	if b.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("[%s,%s]", b.Min.String(), b.Max.String())
}

type Geography interface {
	Properties() GeoProperties
	Coordinates() [][]float64
}

// Marker: point, circle, icon
type GeoMarker interface {
	Marker() string
	Properties() GeoProperties
	Coordinates() [][]float64
}

type SingleLatLng struct {
	typ        string
	point      *LatLng
	properties GeoProperties
}

func (sp *SingleLatLng) Type() string {
	return sp.typ
}

func (sp *SingleLatLng) Coordinates() [][]float64 {
	if sp.point == nil {
		return [][]float64{}
	}
	return [][]float64{{sp.point.Lat, sp.point.Lng}}
}

func (sp *SingleLatLng) Properties() GeoProperties {
	return sp.properties
}

func (sp *SingleLatLng) MarshalGeoJSON() ([]byte, error) {
	coord := []float64{}
	if sp.point != nil {
		coord = []float64{sp.point.Lng, sp.point.Lat}
	}
	obj := map[string]any{
		"type": "Feature",
		"geometry": map[string]any{
			"type":        sp.typ,
			"coordinates": coord,
		},
	}
	if sp.properties != nil {
		obj["properties"] = sp.properties
	}
	return json.Marshal(obj)
}

type MultiLatLng struct {
	typ        string
	points     []*LatLng
	properties GeoProperties
}

func NewMultiLatLng(typ string, pts []any, opt any) *MultiLatLng {
	ret := &MultiLatLng{typ: typ}
	for _, p := range pts {
		if v, ok := p.(*LatLng); ok {
			ret.points = append(ret.points, v)
		}
	}
	ret.properties = newGeoProperties(opt)
	return ret
}

func (mp *MultiLatLng) Type() string {
	return mp.typ
}

func (mp *MultiLatLng) Add(pt *LatLng) *MultiLatLng {
	mp.points = append(mp.points, pt)
	return mp
}

func (mp *MultiLatLng) Coordinates() [][]float64 {
	ret := [][]float64{}
	for _, p := range mp.points {
		ret = append(ret, []float64{p.Lat, p.Lng})
	}
	return ret
}

func (mp *MultiLatLng) Properties() GeoProperties {
	return mp.properties
}

func (mp *MultiLatLng) MarshalGeoJSON() ([]byte, error) {
	coord := [][]float64{}
	for _, pt := range mp.points {
		coord = append(coord, []float64{pt.Lng, pt.Lat})
	}
	obj := map[string]any{
		"type": "Feature",
		"geometry": map[string]any{
			"type":        mp.typ,
			"coordinates": coord,
		},
	}
	if mp.properties != nil {
		obj["properties"] = mp.properties
	}
	return json.Marshal(obj)
}

type Circle struct {
	center     *LatLng
	radius     float64
	properties GeoProperties
}

type GeoCircle = *Circle

func NewGeoCircle(center *LatLng, radius float64, opt any) GeoCircle {
	ret := &Circle{center: center, radius: radius}
	ret.properties = newGeoProperties(opt)
	if _, hasRadius := ret.properties["radius"]; !hasRadius {
		ret.properties["radius"] = radius
	}
	return ret
}

func (cr *Circle) Coordinates() [][]float64 {
	return [][]float64{{cr.center.Lat, cr.center.Lng}}
}

func (cr *Circle) Properties() GeoProperties {
	return cr.properties
}

func (cr *Circle) Center() *LatLng {
	return cr.center
}

func (cr *Circle) Radius() float64 {
	return cr.radius
}

// Ellipse is a ground ellipse defined by semi-major/semi-minor axes in meters
// and a rotation measured clockwise from north in degrees.
type Ellipse struct {
	center     *LatLng
	semiMajor  float64
	semiMinor  float64
	rotation   float64
	properties GeoProperties
}

type GeoEllipse = *Ellipse

func NewGeoEllipse(center *LatLng, semiMajor, semiMinor, rotation float64, opt any) GeoEllipse {
	ret := &Ellipse{
		center:    center,
		semiMajor: semiMajor,
		semiMinor: semiMinor,
		rotation:  rotation,
	}
	ret.properties = newGeoProperties(opt)
	return ret
}

func (el *Ellipse) Center() *LatLng    { return el.center }
func (el *Ellipse) SemiMajor() float64 { return el.semiMajor }
func (el *Ellipse) SemiMinor() float64 { return el.semiMinor }
func (el *Ellipse) Rotation() float64  { return el.rotation }

func (el *Ellipse) Properties() GeoProperties {
	return el.properties
}

// Coordinates approximates the ellipse outline with a closed 64-segment polygon.
func (el *Ellipse) Coordinates() [][]float64 {
	return el.Outline(64)
}

func (el *Ellipse) Outline(segments int) [][]float64 {
	if segments < 3 {
		segments = 3
	}
	toMerc, toLonLat := Transformer3857(), Transformer4326()
	cx, cy, _ := toMerc(el.center.Lng, el.center.Lat, 0)
	// mercator meters are exaggerated by 1/cos(lat) away from the equator
	scale := 1 / math.Cos(el.center.Lat*math.Pi/180)
	rot := el.rotation * math.Pi / 180
	ret := make([][]float64, 0, segments+1)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		dx := el.semiMajor * scale * math.Cos(theta)
		dy := el.semiMinor * scale * math.Sin(theta)
		x := cx + dx*math.Cos(rot) - dy*math.Sin(rot)
		y := cy + dx*math.Sin(rot) + dy*math.Cos(rot)
		lng, lat, _ := toLonLat(x, y, 0)
		ret = append(ret, []float64{lat, lng})
	}
	return ret
}

type GeoPoint = *SingleLatLng

func NewGeoPoint(ll *LatLng, opt any) GeoPoint {
	return &SingleLatLng{typ: "Point", point: ll, properties: newGeoProperties(opt)}
}

type GeoMultiPoint = *MultiLatLng

func NewGeoMultiPoint(pts []any, opt any) GeoMultiPoint {
	return NewMultiLatLng("MultiPoint", pts, opt)
}

type GeoLineString = *MultiLatLng

func NewGeoLineString(pts []any, opt any) GeoLineString {
	return NewMultiLatLng("LineString", pts, opt)
}

type GeoPolygon = *MultiLatLng

func NewGeoPolygon(pts []any, opt any) GeoPolygon {
	return NewMultiLatLng("Polygon", pts, opt)
}

var (
	_ Geography = &SingleLatLng{}
	_ Geography = &Circle{}
	_ Geography = &Ellipse{}
	_ Geography = &MultiLatLng{}
)

type GeoPointMarker struct {
	GeoPoint
}

func NewGeoPointMarker(ll *LatLng, opt any) GeoPointMarker {
	return GeoPointMarker{NewGeoPoint(ll, opt)}
}

func (gm GeoPointMarker) Marker() string {
	return "marker"
}

type GeoCircleMarker struct {
	GeoCircle
}

func NewGeoCircleMarker(center *LatLng, radius float64, opt any) GeoCircleMarker {
	return GeoCircleMarker{GeoCircle: NewGeoCircle(center, radius, opt)}
}

func (cm GeoCircleMarker) Marker() string {
	return "circleMarker"
}

var (
	_ GeoMarker = &GeoPointMarker{}
	_ GeoMarker = &GeoCircleMarker{}
)

type GeoProperties map[string]any

func newGeoProperties(opt any) GeoProperties {
	var ret GeoProperties
	switch v := opt.(type) {
	case string:
		if prop, err := NewGeoPropertiesParse(v); err == nil {
			ret = prop
		}
	case map[string]any:
		ret = GeoProperties{}
		ret.Copy(v)
	case GeoProperties:
		ret = GeoProperties{}
		ret.Copy(v)
	}
	if ret == nil {
		ret = GeoProperties{}
	}
	return ret
}

func NewGeoPropertiesParse(opt string) (GeoProperties, error) {
	if !strings.HasPrefix(strings.TrimSpace(opt), "{") {
		opt = "{" + opt + "}"
	}
	ret := GeoProperties{}
	err := json.Unmarshal([]byte(opt), &ret)
	return ret, err
}

func (gp GeoProperties) Copy(other map[string]any) {
	for k, v := range other {
		gp[k] = v
	}
}

func (gp GeoProperties) PopString(name string) (string, bool) {
	if v, ok := gp[name]; ok {
		delete(gp, name)
		if str, ok := v.(string); ok {
			return str, true
		} else {
			return fmt.Sprintf("%v", v), true
		}
	}
	return "", false
}

func (gp GeoProperties) PopBool(name string) (bool, bool) {
	if v, ok := gp[name]; ok {
		delete(gp, name)
		if b, ok := v.(bool); ok {
			return b, true
		} else if str, ok := v.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

func (gp GeoProperties) MarshalJS() (string, error) {
	keys := []string{}
	for k := range gp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	fields := []string{}
	for _, k := range keys {
		vv := gp[k]
		var line string
		if k == "icon" {
			line = fmt.Sprintf("%s:%v", k, vv)
		} else {
			switch v := vv.(type) {
			case int:
				line = fmt.Sprintf("%s:%d", k, v)
			case float64:
				line = fmt.Sprintf("%s:%v", k, v)
			case bool:
				line = fmt.Sprintf("%s:%t", k, v)
			default:
				line = fmt.Sprintf("%s:%q", k, v)
			}
		}
		fields = append(fields, line)
	}
	return "{" + strings.Join(fields, ",") + "}", nil
}
