package geomap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/nums"
	"github.com/atlasmaps/atlas/mods/util/snowflake"
)

// VolatileFileWriter stores the assembled map script as a short-lived web
// asset so the HTML page can load it with a <script src>.
type VolatileFileWriter interface {
	VolatileFilePrefix() string
	VolatileFileWrite(name string, data []byte, deadline time.Time)
}

// GeoMap encodes a set of entities, with whatever effects are applied at the
// moment of encoding, into a Leaflet map. Output is either a full HTML page
// or a JSON descriptor for embedding.
type GeoMap struct {
	output io.Writer

	MapID  string
	Width  string
	Height string

	toJsonOutput bool

	log                logging.Log
	volatileFileWriter VolatileFileWriter

	InitialLatLng *nums.LatLng
	Bound         *nums.LatLngBound

	InitialZoomLevel int

	tileGrayscale float64
	tileTemplate  string
	tileOption    string

	JSCodes      []string
	JSAssets     []string
	CSSAssets    []string
	JSCodeAssets []string
	PageTitle    string

	crs         string
	layers      []*Layer
	icons       []*Icon
	pointStyles map[string]*PointStyle
}

func New() *GeoMap {
	return &GeoMap{
		log:         logging.GetLog("geomap"),
		MapID:       snowflake.Generate(),
		Width:       "600px",
		Height:      "600px",
		pointStyles: map[string]*PointStyle{},
		crs:         "L.CRS.EPSG3857",
	}
}

func (gm *GeoMap) ContentType() string {
	if gm.toJsonOutput {
		return "application/json"
	}
	return "text/html"
}

func (gm *GeoMap) SetLogger(l logging.Log) {
	gm.log = l
}

func (gm *GeoMap) SetVolatileFileWriter(w VolatileFileWriter) {
	gm.volatileFileWriter = w
}

func (gm *GeoMap) SetOutput(o io.Writer) {
	gm.output = o
}

func (gm *GeoMap) SetMapId(id string) {
	gm.MapID = id
}

func (gm *GeoMap) SetSize(width, height string) {
	gm.Width = width
	gm.Height = height
}

func (gm *GeoMap) SetMapAssets(args ...string) {
	for _, url := range args {
		if strings.HasSuffix(url, ".css") {
			gm.CSSAssets = append(gm.CSSAssets, url)
		} else {
			gm.JSAssets = append(gm.JSAssets, url)
		}
	}
}

func (gm *GeoMap) SetInitialLocation(latlng *nums.LatLng, zoomLevel int) {
	gm.InitialLatLng = latlng
	gm.InitialZoomLevel = zoomLevel
}

func (gm *GeoMap) SetTileTemplate(url string) {
	gm.tileTemplate = url
}

func (gm *GeoMap) SetTileOption(opt string) {
	opt = strings.TrimSpace(opt)
	if !strings.HasPrefix(opt, "{") {
		opt = "{" + opt + "}"
	}
	gm.tileOption = opt
}

func (gm *GeoMap) TileTemplate() string {
	return gm.tileTemplate
}

func (gm *GeoMap) SetGeoMapJson(flag bool) {
	gm.toJsonOutput = flag
}

func (gm *GeoMap) SetTileGrayscale(grayscale float64) {
	gm.tileGrayscale = grayscale
}

func (gm *GeoMap) TileGrayscale() int {
	scale := gm.tileGrayscale
	if scale < 0 {
		scale = 0
	}
	if scale > 1 {
		scale = 1
	}
	return int(100 * scale)
}

func (gm *GeoMap) SetIcon(name string, opt string) {
	if !strings.HasPrefix(strings.TrimSpace(opt), "{") {
		opt = "{" + opt + "}"
	}
	icn := &Icon{}
	if err := json.Unmarshal([]byte(opt), icn); err != nil {
		gm.log.Warnf("geomap icon option %s", err.Error())
		return
	}
	icn.Name = name
	for _, n := range gm.icons {
		if n.Name == icn.Name { // already exists
			gm.log.Warnf("geomap icon %q already exists", icn.Name)
			return
		}
	}
	gm.icons = append(gm.icons, icn)
}

var pointTypeNames = map[string]string{
	"marker":       "marker",
	"circle":       "circle",
	"circlemarker": "circleMarker",
}

func (gm *GeoMap) SetPointStyle(name string, typ string, opt string) {
	if rn, ok := pointTypeNames[strings.ToLower(typ)]; !ok {
		gm.log.Warnf("geomap pointStyle unknown type %q", typ)
	} else {
		typ = rn
	}
	if !strings.HasPrefix(strings.TrimSpace(opt), "{") {
		opt = "{" + opt + "}"
	}
	pstyle := &PointStyle{Name: name, Type: typ, Properties: nums.GeoProperties{}}
	pstyle.Properties.Copy(defaultPointStyle.Properties)
	if err := json.Unmarshal([]byte(opt), &pstyle.Properties); err != nil {
		gm.log.Warnf("geomap pointStyle option %s", err.Error())
		return
	}
	pstyle.Name = name
	gm.pointStyles[name] = pstyle
}

func (gm *GeoMap) extendBound(lat, lng float64) {
	if gm.Bound == nil {
		gm.Bound = nums.NewLatLngBound(&nums.LatLng{Lat: lat, Lng: lng})
	} else {
		gm.Bound = gm.Bound.Extend(&nums.LatLng{Lat: lat, Lng: lng})
	}
}

// AddEntity renders the entity's geometry as a layer, folding the currently
// applied effects into the layer style. The entity id becomes the popup
// content unless the geometry carries its own "popup.content" property.
func (gm *GeoMap) AddEntity(en *entity.Entity) {
	geom := en.Geometry()
	if geom == nil {
		return
	}
	layer := gm.newLayer(geom)
	app := en.Appearance()
	if layer.Option == nil {
		layer.Option = nums.GeoProperties{}
	}
	if app.FillColor != "" {
		layer.Option["color"] = app.FillColor
		layer.Option["fillColor"] = app.FillColor
		// styled layers override the shared point style
		layer.Style = ""
	}
	if app.Height != 0 {
		layer.Option["height"] = app.Height
	}
	if app.Elevation != 0 {
		layer.Option["elevation"] = app.Elevation
	}
	if layer.Popup == nil {
		layer.Popup = &Popup{Content: en.ID()}
	}
	gm.layers = append(gm.layers, layer)
}

// AddGeography renders a raw overlay that is not bound to any entity,
// e.g. a region outline or an area-of-interest ellipse.
func (gm *GeoMap) AddGeography(obj nums.Geography) {
	gm.layers = append(gm.layers, gm.newLayer(obj))
}

// Caution!!: nums.Geography is "lat,lng" order
func (gm *GeoMap) newLayer(obj nums.Geography) *Layer {
	layer := &Layer{
		Name: fmt.Sprintf("obj%d", len(gm.layers)),
		Type: "marker",
	}

	if mkr, ok := obj.(nums.GeoMarker); ok {
		layer.Type = mkr.Marker()
	} else {
		switch ov := obj.(type) {
		case *nums.Circle:
			layer.Type = "circle"
		case *nums.Ellipse:
			layer.Type = "polygon"
		case *nums.SingleLatLng:
			layer.Type = "point"
		case *nums.MultiLatLng:
			switch ov.Type() {
			case "Polygon":
				layer.Type = "polygon"
			case "LineString":
				layer.Type = "polyline"
			}
		}
	}

	if orgProps := obj.Properties(); orgProps != nil {
		props := nums.GeoProperties{}
		props.Copy(orgProps)
		if v, ok := props.PopString("popup.content"); ok {
			layer.Popup = &Popup{Content: v}
			if flag, ok := props.PopBool("popup.open"); ok && flag {
				layer.Popup.Open = true
			}
		}
		pointStyleName := ""
		if ps, ok := props.PopString("point.style"); ok {
			pointStyleName = ps
		}
		if layer.Type == "point" {
			layer.Type = defaultPointStyle.Type
			layer.Style = defaultPointStyleVarName
			if st, ok := gm.pointStyles[pointStyleName]; ok {
				layer.Type = st.Type
				layer.Style = pointStyleName
			}
		} else {
			layer.Option = props
		}
	}

	switch obj.(type) {
	case nums.GeoCircleMarker, nums.GeoPointMarker, nums.GeoCircle, *nums.SingleLatLng:
		coord := obj.Coordinates()
		if len(coord) > 0 {
			layer.Jsonized = fmt.Sprintf("[%v,%v]", coord[0][0], coord[0][1])
		}
	default:
		coord := obj.Coordinates()
		arr := []string{}
		for _, p := range coord {
			arr = append(arr, fmt.Sprintf("[%v,%v]", p[0], p[1]))
		}
		layer.Jsonized = "[" + strings.Join(arr, ",") + "]"
	}

	for _, coord := range obj.Coordinates() {
		gm.extendBound(coord[0], coord[1])
	}
	return layer
}

// Render assembles the Leaflet script from the accumulated layers and writes
// the HTML page or JSON descriptor to the output.
func (gm *GeoMap) Render() {
	if gm.output == nil {
		return
	}
	// an explicit initial location wins over the bound of the layers
	explicitView := gm.InitialLatLng != nil
	if gm.InitialLatLng == nil {
		if gm.Bound != nil && !gm.Bound.IsEmpty() {
			gm.InitialLatLng = gm.Bound.Center()
		} else {
			gm.InitialLatLng = nums.NewLatLng(51.505, -0.09) // <- London
		}
	}
	if gm.InitialZoomLevel == 0 {
		gm.InitialZoomLevel = 13
	}
	gm.JSAssets = append([]string{"https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"}, gm.JSAssets...)
	gm.CSSAssets = append([]string{"https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"}, gm.CSSAssets...)
	if gm.tileTemplate == "" {
		gm.tileTemplate = `https://tile.openstreetmap.org/{z}/{x}/{y}.png`
	}

	gm.JSCodes = append(gm.JSCodes, fmt.Sprintf(`var map = L.map("%s", {crs: %s, attributionControl:false});`, gm.MapID, gm.crs))
	if gm.tileOption != "" {
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf(`L.tileLayer("%s", %s).addTo(map);`, gm.tileTemplate, gm.tileOption))
	} else {
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf(`L.tileLayer("%s").addTo(map);`, gm.tileTemplate))
	}

	if !explicitView && gm.Bound != nil && !gm.Bound.IsEmpty() {
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("map.fitBounds(%s);", gm.Bound.String()))
	} else {
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("map.setView(%s, %d);", gm.InitialLatLng.String(), gm.InitialZoomLevel))
	}

	if js, err := MarshalJS(defaultPointStyle.Properties); err == nil {
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("var %s = %s;", defaultPointStyleVarName, js))
	}
	for n, v := range gm.pointStyles {
		if js, err := v.Properties.MarshalJS(); err != nil {
			gm.log.Warnf("geomap invalid point style %s", err.Error())
		} else {
			gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("var %s = %s;", n, js))
		}
	}
	for _, icn := range gm.icons {
		var icnJson string
		if cnt, err := json.Marshal(icn); err != nil {
			continue
		} else {
			icnJson = string(cnt)
		}
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf(`var %s = L.icon(%s);`, icn.Name, icnJson))
	}

	for _, layer := range gm.layers {
		var opt string
		if layer.Style == "" {
			if v, err := layer.Option.MarshalJS(); err != nil {
				gm.log.Warnf("geomap render %q option %s", layer.Name, err.Error())
				opt = "{}"
			} else {
				opt = v
			}
		} else {
			opt = layer.Style
		}
		gm.JSCodes = append(gm.JSCodes, fmt.Sprintf(`var %s = L.%s(%s, %s).addTo(map);`,
			layer.Name, layer.Type, layer.Jsonized, opt))
		if layer.Popup != nil {
			if layer.Popup.Open {
				gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("%s.bindPopup(%q).openPopup();", layer.Name, layer.Popup.Content))
			} else {
				gm.JSCodes = append(gm.JSCodes, fmt.Sprintf("%s.bindPopup(%q);", layer.Name, layer.Popup.Content))
			}
		}
	}

	if gm.volatileFileWriter != nil {
		prefix := gm.volatileFileWriter.VolatileFilePrefix()
		path := fmt.Sprintf("%s/%s.js", strings.TrimSuffix(prefix, "/"), gm.MapID)
		jscode := fmt.Sprintf("(()=>{\n%s\n})();", strings.Join(gm.JSCodes, "\n"))
		gm.volatileFileWriter.VolatileFileWrite(path, []byte(jscode), time.Now().Add(30*time.Second))
		gm.JSCodeAssets = append(gm.JSCodeAssets, path)
	}
	if gm.toJsonOutput {
		gm.renderJSON()
	} else {
		gm.renderHTML()
	}
}

func (gm *GeoMap) JSAssetsNoEscaped() template.HTML {
	lst := []string{}
	for _, itm := range gm.JSAssets {
		lst = append(lst, fmt.Sprintf("%q", itm))
	}
	return template.HTML("[" + strings.Join(lst, ",") + "]")
}

func (gm *GeoMap) CSSAssetsNoEscaped() template.HTML {
	lst := []string{}
	for _, itm := range gm.CSSAssets {
		lst = append(lst, fmt.Sprintf("%q", itm))
	}
	return template.HTML("[" + strings.Join(lst, ",") + "]")
}

func (gm *GeoMap) JSCodeAssetsNoEscaped() template.HTML {
	lst := []string{}
	for _, itm := range gm.JSCodeAssets {
		lst = append(lst, fmt.Sprintf("%q", itm))
	}
	return template.HTML("[" + strings.Join(lst, ",") + "]")
}

func (gm *GeoMap) renderJSON() {
	tpl := template.New("geomap")
	tpl = template.Must(tpl.Parse(JsonTemplate))
	if err := tpl.ExecuteTemplate(gm.output, "geomap", gm); err != nil {
		gm.output.Write([]byte(err.Error()))
	}
}

func (gm *GeoMap) renderHTML() {
	contents := []string{HeaderTemplate, BaseTemplate, HtmlTemplate}
	tpl := template.New("geomap").Funcs(template.FuncMap{
		"safeJS": func(s interface{}) template.JS {
			return template.JS(fmt.Sprint(s))
		},
	})
	tpl = template.Must(tpl.Parse(contents[0]))
	for _, cont := range contents[1:] {
		tpl = template.Must(tpl.Parse(cont))
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "geomap", gm); err != nil {
		buf.WriteString(err.Error())
	}

	content := pat.ReplaceAll(buf.Bytes(), []byte(""))

	if _, err := gm.output.Write(content); err != nil {
		gm.output.Write([]byte(err.Error()))
	}
}

var pat = regexp.MustCompile(`(__f__")|("__f__)|(__f__)`)
