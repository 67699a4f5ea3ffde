package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/spectrum.report/internal/db"
	"github.com/banshee-data/spectrum.report/internal/monitoring"
)

// SerialConfigRequest is the request body for creating or updating serial
// presets.
type SerialConfigRequest struct {
	Name        string `json:"name"`
	PortPath    string `json:"port_path"`
	BaudRate    int    `json:"baud_rate"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// handleSerialConfigsOrCreate handles GET and POST to /api/serial/configs
func (s *Server) handleSerialConfigsOrCreate(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotImplemented, "Preset storage disabled")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleListSerialConfigs(w, r)
	case http.MethodPost:
		s.handleCreateSerialConfig(w, r)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleListSerialConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.db.GetSerialConfigs()
	if err != nil {
		monitoring.Logf("error fetching serial configs: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to fetch serial configurations")
		return
	}
	if configs == nil {
		configs = []db.SerialConfig{}
	}
	s.writeJSON(w, configs)
}

func (s *Server) handleCreateSerialConfig(w http.ResponseWriter, r *http.Request) {
	var req SerialConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := s.db.CreateSerialConfig(&db.SerialConfig{
		Name:        req.Name,
		PortPath:    req.PortPath,
		BaudRate:    req.BaudRate,
		Description: req.Description,
		Enabled:     req.Enabled,
	})
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.db.GetSerialConfig(int(id))
	if err != nil || created == nil {
		monitoring.Logf("error reloading created serial config %d: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to load created serial configuration")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// handleSerialConfigByID handles GET/PUT/DELETE /api/serial/configs/{id}
func (s *Server) handleSerialConfigByID(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeJSONError(w, http.StatusNotImplemented, "Preset storage disabled")
		return
	}

	idPart := strings.TrimPrefix(r.URL.Path, "/api/serial/configs/")
	if idPart == "" || strings.Contains(idPart, "/") {
		s.writeJSONError(w, http.StatusBadRequest, "Missing config ID")
		return
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid config ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetSerialConfig(w, r, id)
	case http.MethodPut:
		s.handleUpdateSerialConfig(w, r, id)
	case http.MethodDelete:
		s.handleDeleteSerialConfig(w, r, id)
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleGetSerialConfig(w http.ResponseWriter, r *http.Request, id int) {
	config, err := s.db.GetSerialConfig(id)
	if err != nil {
		monitoring.Logf("error fetching serial config %d: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to fetch serial configuration")
		return
	}
	if config == nil {
		s.writeJSONError(w, http.StatusNotFound, "Serial configuration not found")
		return
	}
	s.writeJSON(w, config)
}

func (s *Server) handleUpdateSerialConfig(w http.ResponseWriter, r *http.Request, id int) {
	var req SerialConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.db.UpdateSerialConfig(id, &db.SerialConfig{
		Name:        req.Name,
		PortPath:    req.PortPath,
		BaudRate:    req.BaudRate,
		Description: req.Description,
		Enabled:     req.Enabled,
	})
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.db.GetSerialConfig(id)
	if err != nil || updated == nil {
		monitoring.Logf("error reloading updated serial config %d: %v", id, err)
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to load updated serial configuration")
		return
	}
	s.writeJSON(w, updated)
}

func (s *Server) handleDeleteSerialConfig(w http.ResponseWriter, r *http.Request, id int) {
	if err := s.db.DeleteSerialConfig(id); err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, map[string]string{"status": "deleted"})
}
