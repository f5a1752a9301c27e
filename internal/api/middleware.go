// Package api holds the HTTP plumbing shared by the colorizer servers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	statusWarnThreshold  = 400
	statusErrorThreshold = 500

	// RequestIDHeader carries the request id, echoed when the caller sent one.
	RequestIDHeader = "X-Request-ID"
)

// ZerologLogger logs each request with zerolog. Successful requests to a
// quiet path (the polled page, proxied artifacts) are logged at debug.
func ZerologLogger(quiet ...string) gin.HandlerFunc {
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= statusErrorThreshold:
			level = zerolog.ErrorLevel
		case status >= statusWarnThreshold:
			level = zerolog.WarnLevel
		case isQuiet(quietPaths, c.FullPath()):
			level = zerolog.DebugLevel
		}

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		evt := log.WithLevel(level).
			Str("request_id", reqID).
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size())
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			evt = evt.Str("errors", errs.String())
		}
		evt.Msg("http request completed")
	}
}

func isQuiet(paths map[string]struct{}, route string) bool {
	_, ok := paths[route]
	return ok
}
