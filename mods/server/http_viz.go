package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/atlasmaps/atlas/mods/dataset"
	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/atlasmaps/atlas/mods/eventbus"
	"github.com/atlasmaps/atlas/mods/projection"
	"github.com/atlasmaps/atlas/mods/viz"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func (svr *httpd) handleListVisuals(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success",
		"data": gin.H{"artifacts": svr.visuals.Artifacts()}})
}

// handleAddVisual accepts a frame-set document and installs a visualisation
// for its artifact. With "static": true the first frame is rendered once,
// otherwise a playback is created and every status change is published to
// the artifact's event topic.
func (svr *httpd) handleAddVisual(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}
	fset, err := dataset.Parse(payload)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	proj, err := svr.newProjection(fset.Artifact)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}

	if gjson.GetBytes(payload, "static").Bool() {
		proj.SetValues(fset.Frames[0].Values)
		svr.visuals.Add(proj)
		if err := svr.visuals.Render(fset.Artifact); err != nil {
			svr.visuals.Remove(fset.Artifact)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success",
			"data": gin.H{"artifact": fset.Artifact, "static": true}})
		return
	}

	topic := fmt.Sprintf("playback:%s", fset.Artifact)
	opts := []projection.DynamicOption{
		projection.WithStatusFunc(func(st projection.Status, frame int) {
			eventbus.PublishPlayback(topic, fset.Artifact, st.String(), frame)
		}),
	}
	if fset.Interval > 0 {
		opts = append(opts, projection.WithTickInterval(fset.Interval))
	}
	dyn, err := projection.NewDynamic(proj, fset.Frames, opts...)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}
	svr.visuals.AddDynamic(dyn, proj)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success",
		"data": gin.H{"artifact": fset.Artifact, "frames": len(fset.Frames)}})
}

func (svr *httpd) newProjection(artifact string) (projection.Projection, error) {
	targets := map[string]projection.Target{}
	for _, en := range svr.entities.List() {
		targets[en.ID()] = en
	}
	if len(targets) == 0 {
		return nil, errors.New("no entities registered")
	}
	switch artifact {
	case entity.ArtifactColor:
		return projection.NewColor(artifact, targets), nil
	case entity.ArtifactHeight, entity.ArtifactElevation:
		return projection.NewHeight(artifact, targets), nil
	default:
		return nil, fmt.Errorf("unsupported artifact %q", artifact)
	}
}

func (svr *httpd) handleVisualStatus(ctx *gin.Context) {
	artifact := ctx.Param("artifact")
	status, err := svr.visuals.Status(artifact)
	if err != nil {
		svr.rspVizError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success",
		"data": gin.H{"artifact": artifact, "status": status.String()}})
}

func (svr *httpd) handleRemoveVisual(ctx *gin.Context) {
	artifact := ctx.Param("artifact")
	if _, err := svr.visuals.Remove(artifact); err != nil {
		svr.rspVizError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success"})
}

func (svr *httpd) handleVisualStart(ctx *gin.Context) {
	svr.controlVisual(ctx, svr.visuals.Start)
}

func (svr *httpd) handleVisualPause(ctx *gin.Context) {
	svr.controlVisual(ctx, svr.visuals.Pause)
}

func (svr *httpd) handleVisualStop(ctx *gin.Context) {
	svr.controlVisual(ctx, svr.visuals.Stop)
}

func (svr *httpd) controlVisual(ctx *gin.Context, ctrl func(string) error) {
	artifact := ctx.Param("artifact")
	if err := ctrl(artifact); err != nil {
		svr.rspVizError(ctx, err)
		return
	}
	status, _ := svr.visuals.Status(artifact)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success",
		"data": gin.H{"artifact": artifact, "status": status.String()}})
}

func (svr *httpd) rspVizError(ctx *gin.Context, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, viz.ErrNotFound) {
		code = http.StatusNotFound
	}
	ctx.JSON(code, gin.H{"success": false, "reason": err.Error()})
}
