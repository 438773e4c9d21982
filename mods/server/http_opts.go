package server

import (
	"time"
)

type HttpOption func(s *httpd)

// ListenAddress
func WithHttpListenAddress(addrs ...string) HttpOption {
	return func(s *httpd) {
		s.listenAddresses = append(s.listenAddresses, addrs...)
	}
}

func WithHttpDebugMode(isDebug bool, filterLatency string) HttpOption {
	return func(s *httpd) {
		s.debugMode = isDebug
		if d, err := time.ParseDuration(filterLatency); err == nil {
			s.debugLogFilterLatency = d
		} else {
			s.debugLogFilterLatency = time.Duration(-1)
		}
	}
}

// default size of the rendered map element
func WithHttpMapSize(width, height string) HttpOption {
	return func(s *httpd) {
		if width != "" {
			s.mapWidth = width
		}
		if height != "" {
			s.mapHeight = height
		}
	}
}

func WithHttpTileTemplate(url string) HttpOption {
	return func(s *httpd) {
		s.tileTemplate = url
	}
}
