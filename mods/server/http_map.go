package server

import (
	"bytes"
	"net/http"

	"github.com/atlasmaps/atlas/mods/codec/geomap"
	"github.com/gin-gonic/gin"
)

// handleMap renders the current entity set as a Leaflet map, effects applied
// at the moment of the request. Query params: format=json for the JSON
// descriptor (default is a full HTML page), width/height for the map element
// size, tiles for a tile server template.
func (svr *httpd) handleMap(ctx *gin.Context) {
	toJson := ctx.Query("format") == "json"

	gm := geomap.New()
	gm.SetLogger(svr.log)
	gm.SetGeoMapJson(toJson)
	gm.SetSize(
		strString(ctx.Query("width"), svr.mapWidth),
		strString(ctx.Query("height"), svr.mapHeight))
	if tiles := strString(ctx.Query("tiles"), svr.tileTemplate); tiles != "" {
		gm.SetTileTemplate(tiles)
	}
	if strBool(ctx.Query("grayscale"), false) {
		gm.SetTileGrayscale(1.0)
	}
	if toJson {
		gm.SetVolatileFileWriter(svr.memoryFs)
	}

	for _, en := range svr.entities.List() {
		gm.AddEntity(en)
	}

	buffer := &bytes.Buffer{}
	gm.SetOutput(buffer)
	gm.Render()

	ctx.Data(http.StatusOK, gm.ContentType(), buffer.Bytes())
}
