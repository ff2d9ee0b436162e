package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"metro-twin/internal/feed"
	"metro-twin/internal/render"
	"metro-twin/internal/surface"
	"metro-twin/internal/twin"
)

// StateResponse is the JSON body of GET /api/state and of every action.
type StateResponse struct {
	View              render.View      `json:"view"`
	Zoom              float64          `json:"zoom"`
	FleetFilter       string           `json:"fleetFilter"`
	SimulationRunning bool             `json:"simulationRunning"`
	Surface           surface.Snapshot `json:"surface"`
}

func (s *Server) state() StateResponse {
	return StateResponse{
		View:              s.ctrl.Current(),
		Zoom:              s.ctrl.ZoomLevel(),
		FleetFilter:       s.ctrl.FleetFilter(),
		SimulationRunning: s.runner.Running(),
		Surface:           s.surf.Snapshot(),
	}
}

// act runs fn on the loop and answers with the resulting state.
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func()) {
	var st StateResponse
	if !s.do(w, r, func() {
		if fn != nil {
			fn()
		}
		st = s.state()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	var v render.View
	if !s.do(w, r, func() { v = s.ctrl.Current() }) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"view":      v,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) { s.act(w, r, nil) }

func (s *Server) getOperations(w http.ResponseWriter, r *http.Request) {
	var op twin.Operations
	if !s.do(w, r, func() { op = s.ctrl.Data().Operations }) {
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (s *Server) switchView(w http.ResponseWriter, r *http.Request) {
	v, ok := render.ParseView(chi.URLParam(r, "view"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown view")
		return
	}
	s.act(w, r, func() { s.ctrl.Switch(v) })
}

type filterRequest struct {
	Status string `json:"status"`
}

func (s *Server) filterFleet(w http.ResponseWriter, r *http.Request) {
	req := filterRequest{Status: r.URL.Query().Get("status")}
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.act(w, r, func() { s.ctrl.FilterFleet(req.Status) })
}

func (s *Server) refreshFleet(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, s.ctrl.RefreshFleet)
}

func (s *Server) selectStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "station id must be an integer")
		return
	}
	var found bool
	var st StateResponse
	if !s.do(w, r, func() {
		found = s.ctrl.ShowStation(id)
		st = s.state()
	}) {
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "station not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) selectTrain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.act(w, r, func() { s.ctrl.ShowTrain(id) })
}

func (s *Server) closeModal(w http.ResponseWriter, r *http.Request) { s.act(w, r, s.ctrl.CloseModal) }

type zoomRequest struct {
	Factor float64 `json:"factor"`
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := decode(r, &req); err != nil || req.Factor <= 0 {
		writeError(w, r, http.StatusBadRequest, "factor must be a positive number")
		return
	}
	s.act(w, r, func() { s.ctrl.Zoom(req.Factor) })
}

func (s *Server) resetZoom(w http.ResponseWriter, r *http.Request) { s.act(w, r, s.ctrl.ResetZoom) }

func (s *Server) selectScenario(w http.ResponseWriter, r *http.Request) {
	var req twin.Scenario
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.act(w, r, func() { s.ctrl.SelectScenario(req.Type) })
}

func (s *Server) runSimulation(w http.ResponseWriter, r *http.Request) {
	var req twin.Scenario
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var started bool
	var st StateResponse
	if !s.do(w, r, func() {
		started = s.runner.Run(req)
		st = s.state()
	}) {
		return
	}
	if !started {
		writeJSON(w, http.StatusConflict, st)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

func (s *Server) resetSimulation(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, s.runner.Reset)
}

func (s *Server) vehiclePositions(w http.ResponseWriter, r *http.Request) {
	var b []byte
	var err error
	if !s.do(w, r, func() { b, err = feed.Marshal(feed.VehiclePositions(s.ctrl.Data(), s.loop.Now())) }) {
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to encode feed")
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
