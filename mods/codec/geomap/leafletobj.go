package geomap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atlasmaps/atlas/mods/nums"
)

type Icon struct {
	Name         string    `json:"name"`
	IconUrl      string    `json:"iconUrl"`
	IconSize     []float64 `json:"iconSize,omitempty"`
	IconAnchor   []float64 `json:"iconAnchor,omitempty"`
	PopupAnchor  []float64 `json:"popupAnchor,omitempty"`
	ShadowUrl    string    `json:"shadowUrl,omitempty"`
	ShadowSize   []float64 `json:"shadowSize,omitempty"`
	ShadowAnchor []float64 `json:"shadowAnchor,omitempty"`
}

type Layer struct {
	Name     string             `json:"name"`
	Type     string             `json:"type"`
	Jsonized string             `json:"jsonized"`
	Option   nums.GeoProperties `json:"option,omitempty"`
	Popup    *Popup             `json:"popup,omitempty"`
	Style    string             `json:"pointStyle,omitempty"`
}

type Popup struct {
	Content string `json:"content"`
	Open    bool   `json:"open,omitempty"`
}

type PointStyle struct {
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Properties nums.GeoProperties `json:"properties"`
}

var defaultPointStyleVarName = "__ptstyle"

var defaultPointStyle = &PointStyle{
	Type: "circleMarker",
	Properties: nums.GeoProperties{
		"radius":      4,
		"stroke":      false,
		"color":       "#2020F0",
		"opacity":     0.5,
		"fillOpacity": 0.5,
	},
}

// MarshalJS renders properties as a javascript object literal, keys sorted
// for deterministic output. "icon" values are emitted verbatim so they can
// reference an icon variable declared earlier in the script.
func MarshalJS(gp map[string]any) (string, error) {
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
			case bool:
				line = fmt.Sprintf("%s:%t", k, v)
			case string:
				line = fmt.Sprintf("%s:%q", k, v)
			case map[string]any:
				if str, err := MarshalJS(v); err != nil {
					return "", err
				} else {
					line = str
				}
			default:
				line = fmt.Sprintf("%s:%v", k, v)
			}
		}
		fields = append(fields, line)
	}
	return "{" + strings.Join(fields, ",") + "}", nil
}
