package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/atlasmaps/atlas/mods/eventbus"
	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEvents upgrades to a websocket and forwards the artifact's playback
// events to the client until the connection closes.
func (svr *httpd) handleEvents(ctx *gin.Context) {
	artifact := ctx.Param("artifact")
	if len(artifact) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "no artifact specified"})
		return
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": err.Error()})
		return
	}
	NewEventStream(artifact, conn).Run()
}

type EventStream struct {
	log       logging.Log
	artifact  string
	topic     string
	conn      *websocket.Conn
	connMutex sync.Mutex
	closeOnce sync.Once
}

func NewEventStream(artifact string, conn *websocket.Conn) *EventStream {
	ret := &EventStream{
		log:      logging.GetLog(fmt.Sprintf("events-%s", artifact)),
		artifact: artifact,
		topic:    fmt.Sprintf("playback:%s", artifact),
		conn:     conn,
	}
	eventbus.Default.SubscribeAsync(ret.topic, ret.sendEvent, true)
	return ret
}

func (es *EventStream) Run() {
	go es.readerLoop()
}

func (es *EventStream) Close() {
	es.closeOnce.Do(func() {
		eventbus.Default.Unsubscribe(es.topic, es.sendEvent)
		if es.conn != nil {
			es.conn.Close()
		}
	})
}

func (es *EventStream) readerLoop() {
	defer func() {
		es.Close()
		if e := recover(); e != nil {
			es.log.Error("panic recover %s", e)
		}
	}()

	if es.log.TraceEnabled() {
		es.log.Trace("websocket: established", es.conn.RemoteAddr().String())
	}
	for {
		evt := &eventbus.Event{}
		err := es.conn.ReadJSON(evt)
		if err != nil {
			if we, ok := err.(*websocket.CloseError); ok {
				es.log.Trace(we.Error())
			} else if !errors.Is(err, io.EOF) {
				es.log.Warn("ERR", err.Error())
			}
			es.connMutex.Lock()
			es.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(200*time.Millisecond))
			es.connMutex.Unlock()
			return
		}
		if evt.Type == eventbus.EVT_PING && evt.Ping != nil {
			// echo the ping back
			es.sendEvent(evt)
		}
	}
}

func (es *EventStream) sendEvent(evt *eventbus.Event) {
	es.connMutex.Lock()
	defer es.connMutex.Unlock()
	if err := es.conn.WriteJSON(evt); err != nil {
		es.log.Warn("ERR", err.Error())
	}
}
