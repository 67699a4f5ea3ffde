// Package api exposes the acquisition core over HTTP. It is the boundary
// the presentation layer talks to: commands come in as requests, samples
// and metrics go out as JSON and as a server-sent event stream.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/spectrum.report/internal/db"
	"github.com/banshee-data/spectrum.report/internal/fsutil"
	"github.com/banshee-data/spectrum.report/internal/monitoring"
	"github.com/banshee-data/spectrum.report/internal/spectro"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Acquirer is the surface of the scan controller the API layer needs.
type Acquirer interface {
	Ports() []string
	State() spectro.LinkState
	MalformedLines() int
	Connect(port string, baud int) error
	Disconnect() error
	StartScan() error
	StopScan()
}

type Server struct {
	acq   Acquirer
	store *spectro.Store
	bus   *spectro.Bus
	db    *db.DB

	// Server-side CSV export, enabled via EnableFileExport.
	exportFS  fsutil.FileSystem
	exportDir string
}

// NewServer wires the API over the acquisition core. The db may be nil
// when preset storage is disabled.
func NewServer(acq Acquirer, store *spectro.Store, bus *spectro.Bus, database *db.DB) *Server {
	return &Server{
		acq:   acq,
		store: store,
		bus:   bus,
		db:    database,
	}
}

// EnableFileExport turns on server-side CSV export into dir through the
// given filesystem.
func (s *Server) EnableFileExport(fsys fsutil.FileSystem, dir string) {
	s.exportFS = fsys
	s.exportDir = dir
}

// ServeMux returns the route table for the API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ports", s.handlePorts)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/connect", s.handleConnect)
	mux.HandleFunc("/api/disconnect", s.handleDisconnect)
	mux.HandleFunc("/api/scan/start", s.handleScanStart)
	mux.HandleFunc("/api/scan/stop", s.handleScanStop)
	mux.HandleFunc("/api/spectrum", s.handleSpectrum)
	mux.HandleFunc("/api/spectrum/clear", s.handleSpectrumClear)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/export.csv", s.handleExportCSV)
	mux.HandleFunc("/api/export/save", s.handleExportSave)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/serial/configs", s.handleSerialConfigsOrCreate)
	mux.HandleFunc("/api/serial/configs/", s.handleSerialConfigByID)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
