// Package server exposes the Translator, the Applier and the enabled flag
// over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gaurav-prasanna/chatmd/core"
	"github.com/gaurav-prasanna/chatmd/core/state"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// HeaderTransformed carries the number of rewritten elements on /apply.
const HeaderTransformed = "X-Chatmd-Transformed"

// StateResponse is the body of /state and /toggle.
type StateResponse struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

type stateRequest struct {
	Enabled *bool `json:"enabled"`
}

// Server wires handlers around the core components.
type Server struct {
	translator core.Translator
	applier    core.Applier
	toggle     core.Toggle
	metrics    http.Handler
}

// New creates a Server. metrics may be nil to disable /metrics.
func New(translator core.Translator, applier core.Applier, toggle core.Toggle, metrics http.Handler) *Server {
	return &Server{
		translator: translator,
		applier:    applier,
		toggle:     toggle,
		metrics:    metrics,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", s.handleTranslate)
	mux.HandleFunc("/apply", s.handleApply)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/toggle", s.handleToggle)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if !s.toggle.Enabled() {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(body)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, s.translator.Translate(string(body)))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	out, result, err := s.applier.Apply(string(body))
	if err != nil {
		slog.Error("Apply failed", logfields.Error(err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(HeaderTransformed, strconv.Itoa(len(result.Transformations)))
	_, _ = io.WriteString(w, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeState(w)
	case http.MethodPut:
		var req stateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Enabled == nil {
			http.Error(w, `body must be {"enabled": true|false}`, http.StatusBadRequest)
			return
		}
		if err := s.toggle.Set(*req.Enabled); err != nil {
			slog.Error("Persisting flag failed", logfields.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("Flag updated", logfields.Enabled(*req.Enabled))
		s.writeState(w)
	default:
		w.Header().Set("Allow", "GET, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	enabled, err := s.toggle.Toggle()
	if err != nil {
		slog.Error("Persisting flag failed", logfields.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("Flag toggled", logfields.Enabled(enabled))
	s.writeState(w)
}

func (s *Server) writeState(w http.ResponseWriter) {
	enabled := s.toggle.Enabled()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StateResponse{Enabled: enabled, Label: state.Label(enabled)})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "reading request body failed", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
