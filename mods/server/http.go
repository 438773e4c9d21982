package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/atlasmaps/atlas/mods/entity"
	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/viz"
	"github.com/gin-gonic/gin"
	gometrics "github.com/rcrowley/go-metrics"
)

// Factory
func NewHttp(entities *entity.Manager, visuals *viz.Manager, options ...HttpOption) (*httpd, error) {
	s := &httpd{
		log:       logging.GetLog("httpd"),
		entities:  entities,
		visuals:   visuals,
		mapWidth:  "600px",
		mapHeight: "600px",
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

type httpd struct {
	log   logging.Log
	alive bool

	listenAddresses []string

	httpServer *http.Server
	listeners  []net.Listener

	entities *entity.Manager
	visuals  *viz.Manager

	memoryFs *MemoryFS

	mapWidth     string
	mapHeight    string
	tileTemplate string

	debugMode             bool
	debugLogFilterLatency time.Duration
}

func (svr *httpd) Start() error {
	if svr.entities == nil || svr.visuals == nil {
		return fmt.Errorf("no entity or visualisation manager")
	}

	svr.alive = true

	if svr.debugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svr.httpServer = &http.Server{}
	svr.httpServer.Handler = svr.Router()

	for _, listen := range svr.listenAddresses {
		lsnr, err := makeListener(listen)
		if err != nil {
			return fmt.Errorf("cannot start with failed listener, %s", err.Error())
		}
		svr.listeners = append(svr.listeners, lsnr)
		go svr.httpServer.Serve(lsnr)
		svr.log.Infof("HTTP Listen %s", listen)
	}
	return nil
}

func (svr *httpd) Stop() {
	if svr.httpServer == nil {
		return
	}
	svr.alive = false
	svr.log.Infof("gracefully stopping server")
	ctx, cancelFunc := context.WithTimeout(context.Background(), 3*time.Second)
	svr.httpServer.Shutdown(ctx)
	cancelFunc()
	svr.httpServer.Close()

	if svr.memoryFs != nil {
		svr.memoryFs.Stop()
	}
}

func (svr *httpd) AdvertiseAddress() string {
	for _, lsnr := range svr.listeners {
		if strAddr := lsnr.Addr().String(); strAddr == "" {
			continue
		} else {
			return "http://" + strings.TrimPrefix(strAddr, "tcp://")
		}
	}
	return ""
}

func (svr *httpd) Router() *gin.Engine {
	r := gin.New()
	r.Use(RecoveryWithLogging(svr.log))
	r.Use(HttpLogger("http-log", &svr.debugMode, &svr.debugLogFilterLatency))
	r.Use(MetricsInterceptor())

	group := r.Group("/web/api")
	group.GET("/healthz", svr.handleHealthz)
	group.GET("/statz", svr.handleStatz)

	group.GET("/entities", svr.handleListEntities)
	group.POST("/entities", svr.handleImportEntities)
	group.DELETE("/entities/:id", svr.handleRemoveEntity)

	group.GET("/visuals", svr.handleListVisuals)
	group.POST("/visuals", svr.handleAddVisual)
	group.GET("/visuals/:artifact", svr.handleVisualStatus)
	group.DELETE("/visuals/:artifact", svr.handleRemoveVisual)
	group.POST("/visuals/:artifact/start", svr.handleVisualStart)
	group.POST("/visuals/:artifact/pause", svr.handleVisualPause)
	group.POST("/visuals/:artifact/stop", svr.handleVisualStop)

	group.GET("/map", svr.handleMap)
	group.GET("/events/:artifact", svr.handleEvents)

	svr.memoryFs = NewMemoryFS("/web/api/map-assets/")
	go svr.memoryFs.Start()
	group.GET("/map-assets/*path", gin.WrapH(http.FileServer(svr.memoryFs)))

	return r
}

func (svr *httpd) handleHealthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "reason": "success"})
}

func (svr *httpd) handleStatz(ctx *gin.Context) {
	stat := gin.H{}
	gometrics.DefaultRegistry.Each(func(name string, i any) {
		switch m := i.(type) {
		case gometrics.Counter:
			stat[name] = m.Count()
		case gometrics.Gauge:
			stat[name] = m.Value()
		case gometrics.Meter:
			stat[name] = m.Snapshot().Count()
		case gometrics.Timer:
			t := m.Snapshot()
			stat[name] = gin.H{"count": t.Count(), "mean": time.Duration(int64(t.Mean())).String()}
		}
	})
	if svr.memoryFs != nil {
		stat["map_assets"] = svr.memoryFs.Statz()
	}
	ctx.JSON(http.StatusOK, stat)
}
