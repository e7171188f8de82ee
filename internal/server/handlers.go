package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/san-kum/mapstory/internal/automation"
	"github.com/san-kum/mapstory/internal/trace"
)

const maxEvents = 200

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrStopped) {
		status = http.StatusServiceUnavailable
	}
	s.log.Printf("server: %v", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var snap *Snapshot
	if err := s.do(r.Context(), func() { snap = s.snapshot() }); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	var steps []StepInfo
	if err := s.do(r.Context(), func() { steps = s.steps() }); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	var layers []LayerInfo
	if err := s.do(r.Context(), func() { layers = s.layers() }); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layers)
}

// handleEvents returns the most recent trace events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var events []trace.Event
	err := s.do(r.Context(), func() {
		all := s.exp.Recorder().Events()
		if len(all) > maxEvents {
			all = all[len(all)-maxEvents:]
		}
		events = append(events, all...)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type actionResult struct {
	Accepted bool      `json:"accepted"`
	Error    string    `json:"error,omitempty"`
	State    *Snapshot `json:"state"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var a automation.Action
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid action: " + err.Error()})
		return
	}
	res, err := s.apply(r, a)
	if err != nil {
		if errors.Is(err, errInvalidAction) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.fail(w, err)
		return
	}
	status := http.StatusOK
	if res.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

var errInvalidAction = errors.New("invalid action")

// apply validates a and runs it on the loop goroutine.
func (s *Server) apply(r *http.Request, a automation.Action) (*actionResult, error) {
	check := automation.Scenario{Steps: []automation.Action{a}}
	if err := check.Validate(); err != nil {
		return nil, errors.Join(errInvalidAction, err)
	}
	res := &actionResult{}
	err := s.do(r.Context(), func() {
		accepted, err := automation.Apply(s.eng, a)
		res.Accepted = accepted
		if err != nil {
			res.Error = err.Error()
		}
		res.State = s.snapshot()
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("server: action %s accepted=%v", a, res.Accepted)
	return res, nil
}
