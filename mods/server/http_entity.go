package server

import (
	"io"
	"net/http"

	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/gin-gonic/gin"
)

type entityInfo struct {
	ID         string            `json:"id"`
	Appearance entity.Appearance `json:"appearance"`
}

func (svr *httpd) handleListEntities(ctx *gin.Context) {
	lst := svr.entities.List()
	data := make([]entityInfo, 0, len(lst))
	for _, en := range lst {
		data = append(data, entityInfo{ID: en.ID(), Appearance: en.Appearance()})
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success", "data": data})
}

// handleImportEntities accepts a GeoJSON FeatureCollection and registers an
// entity per feature.
func (svr *httpd) handleImportEntities(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}
	ids, err := svr.entities.ImportGeoJSON(payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success", "data": gin.H{"ids": ids}})
}

func (svr *httpd) handleRemoveEntity(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, ok := svr.entities.Get(id); !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "reason": "entity not found"})
		return
	}
	svr.entities.Remove(id)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success"})
}
