package nums

import "math"

// Spherical web-mercator (EPSG:3857) plane conversions, see https://epsg.io/3857

// half the extent of the mercator plane in meters
const originShift = math.Pi * 6378137

// LatLngToMeters projects WGS84 lat/lng onto the mercator plane.
func LatLngToMeters(lat, lng float64) (x, y float64) {
	x = lng * originShift / 180
	y = math.Log(math.Tan((90+lat)*math.Pi/360)) / math.Pi * originShift
	return x, y
}

// MetersToLatLng is the inverse of LatLngToMeters.
func MetersToLatLng(x, y float64) (lat, lng float64) {
	lng = x / originShift * 180
	lat = 180/math.Pi*(2*math.Atan(math.Exp(y/originShift*math.Pi))) - 90
	return lat, lng
}
