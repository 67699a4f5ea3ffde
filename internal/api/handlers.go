package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/spectrum.report/internal/export"
	"github.com/banshee-data/spectrum.report/internal/monitoring"
	"github.com/banshee-data/spectrum.report/internal/spectro"
	"github.com/banshee-data/spectrum.report/internal/units"
)

// handlePorts handles GET /api/ports - list candidate serial ports
func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ports := s.acq.Ports()
	if ports == nil {
		ports = []string{}
	}
	s.writeJSON(w, map[string][]string{"ports": ports})
}

// StatusResponse reports the link state and acquisition counters.
type StatusResponse struct {
	Connected      bool   `json:"connected"`
	Scanning       bool   `json:"scanning"`
	Port           string `json:"port,omitempty"`
	Baud           int    `json:"baud,omitempty"`
	Samples        int    `json:"samples"`
	MalformedLines int    `json:"malformed_lines"`
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	state := s.acq.State()
	s.writeJSON(w, StatusResponse{
		Connected:      state.Phase != spectro.Disconnected,
		Scanning:       state.Phase == spectro.Scanning,
		Port:           state.Port,
		Baud:           state.Baud,
		Samples:        s.store.Len(),
		MalformedLines: s.acq.MalformedLines(),
	})
}

// ConnectRequest selects the port to connect to.
type ConnectRequest struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

// handleConnect handles POST /api/connect
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Port == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing port")
		return
	}

	if err := s.acq.Connect(req.Port, req.Baud); err != nil {
		s.writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, map[string]string{"status": "connected"})
}

// handleDisconnect handles POST /api/disconnect
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := s.acq.Disconnect(); err != nil {
		s.writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, map[string]string{"status": "disconnected"})
}

// handleScanStart handles POST /api/scan/start
func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := s.acq.StartScan(); err != nil {
		status := http.StatusBadGateway
		if err == spectro.ErrNotConnected {
			status = http.StatusConflict
		}
		s.writeJSONError(w, status, err.Error())
		return
	}
	s.writeJSON(w, map[string]string{"status": "scanning"})
}

// handleScanStop handles POST /api/scan/stop
func (s *Server) handleScanStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.acq.StopScan()
	s.writeJSON(w, map[string]string{"status": "stopped"})
}

// handleSpectrum handles GET /api/spectrum - the full snapshot in
// acquisition order
func (s *Server) handleSpectrum(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	samples := s.store.Snapshot()
	if samples == nil {
		samples = []spectro.Sample{}
	}
	s.writeJSON(w, map[string]interface{}{"samples": samples})
}

// handleSpectrumClear handles POST /api/spectrum/clear
func (s *Server) handleSpectrumClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.store.Clear()
	s.writeJSON(w, map[string]string{"status": "cleared"})
}

// MetricsResponse pairs the raw metrics record with its display strings.
type MetricsResponse struct {
	Metrics spectro.Metrics   `json:"metrics"`
	Text    map[string]string `json:"text"`
}

// handleMetrics handles GET /api/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	m := s.store.Metrics()
	s.writeJSON(w, MetricsResponse{
		Metrics: m,
		Text:    units.MetricsText(m),
	})
}

// handleExportCSV handles GET /api/export.csv - download the spectrum as
// the two-column Wavelength, Intensity table
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	samples := s.store.Snapshot()
	if len(samples) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "No data to save")
		return
	}

	filename := export.DefaultFilename(time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, samples); err != nil {
		// headers are already written; all we can do is log
		monitoring.Logf("failed to stream CSV export: %v", err)
	}
}

// ExportSaveRequest names the file to save the spectrum under. An empty
// filename gets the timestamped default.
type ExportSaveRequest struct {
	Filename string `json:"filename"`
}

// handleExportSave handles POST /api/export/save - write the spectrum as
// CSV into the server-side export directory
func (s *Server) handleExportSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.exportFS == nil {
		s.writeJSONError(w, http.StatusNotImplemented, "File export disabled")
		return
	}

	var req ExportSaveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	samples := s.store.Snapshot()
	if len(samples) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "No data to save")
		return
	}

	name := req.Filename
	if name == "" {
		name = export.DefaultFilename(time.Now())
	}

	path, err := export.SaveCSV(s.exportFS, s.exportDir, name, samples)
	if err != nil {
		monitoring.Logf("failed to save CSV export: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to save export")
		return
	}
	s.writeJSON(w, map[string]string{"status": "saved", "path": path})
}
