package main

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

func newLogger(w io.Writer, level string, json bool) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// instrument logs every request and records it in the request metrics.
func (d *DebateBoard) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		route := routeName(r)
		d.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(m.Code)).Inc()
		d.metrics.RequestSeconds.WithLabelValues(route).Observe(m.Duration.Seconds())
		d.log.Info("request",
			"method", r.Method,
			"route", route,
			"status", m.Code,
			"duration", m.Duration,
			"bytes", m.Written,
		)
	})
}
