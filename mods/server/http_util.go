package server

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/atlasmaps/atlas/mods/logging"
	"github.com/atlasmaps/atlas/mods/util"
	"github.com/gin-gonic/gin"
	gometrics "github.com/rcrowley/go-metrics"
)

func strBool(str string, def bool) bool {
	if str == "" {
		return def
	}
	return strings.ToLower(str) == "true" || str == "1"
}

func strString(str string, def string) string {
	if str == "" {
		return def
	}
	return str
}

// makeListener accepts "tcp://host:port", "unix:///path/sock" or a plain
// host:port address.
func makeListener(addr string) (net.Listener, error) {
	if strings.HasPrefix(addr, "unix://") {
		path := strings.TrimPrefix(addr, "unix://")
		return net.Listen("unix", path)
	}
	if strings.HasPrefix(addr, "tcp://") {
		addr = strings.TrimPrefix(addr, "tcp://")
	}
	return net.Listen("tcp", addr)
}

var (
	metricRequestTotal    = gometrics.NewRegisteredCounter("http.count", gometrics.DefaultRegistry)
	metricResponseLatency = gometrics.NewRegisteredTimer("http.latency", gometrics.DefaultRegistry)
	metricRecvBytes       = gometrics.NewRegisteredCounter("http.recv_bytes", gometrics.DefaultRegistry)
	metricSendBytes       = gometrics.NewRegisteredCounter("http.send_bytes", gometrics.DefaultRegistry)
	metricStatus4xx       = gometrics.NewRegisteredCounter("http.status_4xx", gometrics.DefaultRegistry)
	metricStatus5xx       = gometrics.NewRegisteredCounter("http.status_5xx", gometrics.DefaultRegistry)
)

func MetricsInterceptor() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		metricRequestTotal.Inc(1)
		metricResponseLatency.UpdateSince(start)
		if s := c.Request.ContentLength; s > 0 {
			metricRecvBytes.Inc(s)
		}
		if s := c.Writer.Size(); s > 0 {
			metricSendBytes.Inc(int64(s))
		}
		status := c.Writer.Status()
		if status >= 400 && status < 500 {
			metricStatus4xx.Inc(1)
		} else if status >= 500 {
			metricStatus5xx.Inc(1)
		}
	}
}

func RecoveryWithLogging(log logging.Log, recovery ...gin.RecoveryFunc) gin.HandlerFunc {
	gin.DefaultWriter = log
	gin.DefaultErrorWriter = log

	if len(recovery) > 0 {
		return gin.CustomRecoveryWithWriter(log, recovery[0])
	}
	return gin.CustomRecoveryWithWriter(log, func(c *gin.Context, err any) {
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

type HttpLoggerFilter func(req *http.Request, statusCode int, latency time.Duration) bool

func HttpLogger(loggingName string, logEnabled *bool, logLatencyThreshold *time.Duration) gin.HandlerFunc {
	return HttpLoggerWithFilter(loggingName, func(req *http.Request, statusCode int, latency time.Duration) bool {
		// when log is disabled
		if logEnabled == nil || !*logEnabled {
			return false
		}
		// when status code is error
		if statusCode >= 400 {
			return true
		}
		// when logLatencyThreshold is not set
		if logLatencyThreshold == nil || *logLatencyThreshold < 0 {
			return false
		}

		// when logLatencyThreshold is set
		return latency >= *logLatencyThreshold
	})
}

func HttpLoggerWithFilter(loggingName string, filter HttpLoggerFilter) gin.HandlerFunc {
	log := logging.GetLog(loggingName)
	return logger(log, filter)
}

func logger(log logging.Log, filter HttpLoggerFilter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// ignore healthz
		if strings.HasSuffix(c.Request.URL.Path, "/healthz") && c.Request.Method == http.MethodGet {
			return
		}

		timeStamp := time.Now()
		latency := timeStamp.Sub(start)

		statusCode := c.Writer.Status()

		// filter exists, and it returns false not to leave log
		if filter != nil && !filter(c.Request, statusCode, latency) {
			return
		}

		url := c.Request.Host + c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if len(raw) > 0 {
			url = url + "?" + raw
		}

		clientIP := c.ClientIP()
		proto := c.Request.Proto
		method := c.Request.Method
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()
		if len(errorMessage) > 0 {
			errorMessage = "\n" + errorMessage
		}

		wSize := c.Writer.Size()
		if wSize == -1 {
			wSize = 0
		}
		writeSize := util.HumanizeByteCount(int64(wSize))
		readSize := util.HumanizeByteCount(c.Request.ContentLength)

		color := ""
		reset := "\033[0m"
		level := logging.LevelDebug

		switch {
		case statusCode >= http.StatusContinue && statusCode < http.StatusOK:
			color, reset = "", "" // 1xx
		case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
			color = "\033[97;42m" // 2xx green
		case statusCode >= http.StatusMultipleChoices && statusCode < http.StatusBadRequest:
			color = "\033[90;47m" // 3xx white
		case statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError:
			color = "\033[90;43m" // 4xx yellow
		default:
			color = "\033[97;41m" // 5xx red
			level = logging.LevelError
		}

		log.Logf(level, "%s %3d %s| %13v | %15s | %8s | %8s | %s %-7s %s%s",
			color, statusCode, reset,
			latency,
			clientIP,
			readSize,
			writeSize,
			proto,
			method,
			url,
			errorMessage,
		)
	}
}
