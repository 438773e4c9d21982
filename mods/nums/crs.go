package nums

import (
	"github.com/wroge/wgs84"
)

// Coordinate Reference System (CRS) or Spatial Reference System (SRS)
type CRS struct {
	Code    string         `json:"code"`
	Proj    string         `json:"proj"`
	Options map[string]any `json:"option"`
}

var EPSG3857 = &CRS{
	Code: "EPSG:3857",
	Proj: `+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs`,
}

// Transformer3857 converts WGS84 lon/lat into web mercator EPSG:3857 meters.
func Transformer3857() func(a, b, c float64) (a2, b2, c2 float64) {
	return wgs84.Transform(wgs84.WGS84().LonLat(), wgs84.WGS84().WebMercator())
}

// Transformer4326 converts web mercator EPSG:3857 meters back to WGS84 lon/lat.
func Transformer4326() func(a, b, c float64) (a2, b2, c2 float64) {
	return wgs84.Transform(wgs84.WGS84().WebMercator(), wgs84.WGS84().LonLat())
}
