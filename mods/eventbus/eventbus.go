package eventbus

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
)

type EventBus evbus.Bus

var Default EventBus

func init() {
	Default = EventBus(evbus.New())
}

const (
	EVT_PING     = "ping"
	EVT_LOG      = "log"
	EVT_PLAYBACK = "playback"
)

type Event struct {
	Type     string    `json:"type"`
	Ping     *Ping     `json:"ping,omitempty"`
	Log      *Log      `json:"log,omitempty"`
	Playback *Playback `json:"playback,omitempty"`
}

type Ping struct {
	Tick int64 `json:"tick"`
}

type Log struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Task      string `json:"task,omitempty"`
	Message   string `json:"message"`
}

// Playback reports a status transition of a dynamic projection.
type Playback struct {
	Timestamp int64  `json:"timestamp"`
	Artifact  string `json:"artifact"`
	Status    string `json:"status"`
	Frame     int    `json:"frame"`
}

func NewPingTime(tick time.Time) *Event {
	return NewPing(tick.UnixNano())
}

func NewPing(tick int64) *Event {
	return &Event{
		Type: EVT_PING,
		Ping: &Ping{Tick: tick},
	}
}

func PublishPing(topic string, tick time.Time) {
	Default.Publish(topic, NewPingTime(tick))
}

func NewLog(level string, message string) *Event {
	return &Event{
		Type: EVT_LOG,
		Log: &Log{
			Timestamp: time.Now().UnixNano(),
			Level:     level,
			Message:   message,
		},
	}
}

func NewLogTask(level string, task string, message string) *Event {
	return &Event{
		Type: EVT_LOG,
		Log: &Log{
			Timestamp: time.Now().UnixNano(),
			Level:     level,
			Task:      task,
			Message:   message,
		},
	}
}

func PublishLog(topic string, level string, message string) {
	Default.Publish(topic, NewLog(level, message))
}

func PublishLogTask(topic string, level string, task string, message string) {
	Default.Publish(topic, NewLogTask(level, task, message))
}

func NewPlayback(artifact string, status string, frame int) *Event {
	return &Event{
		Type: EVT_PLAYBACK,
		Playback: &Playback{
			Timestamp: time.Now().UnixNano(),
			Artifact:  artifact,
			Status:    status,
			Frame:     frame,
		},
	}
}

// topic = "playback:%s", artifact
func PublishPlayback(topic string, artifact string, status string, frame int) {
	Default.Publish(topic, NewPlayback(artifact, status, frame))
}
