package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"i4.energy/across/radiocfg/radio"
)

// Server handles incoming HTTP requests for reconfiguring the attached
// modem
type Server struct {
	Logger    *slog.Logger
	Transport radio.Transport

	// mu enforces the single-in-flight-exchange invariant: the protocol is
	// half-duplex and a session must not be shared across callers.
	mu sync.Mutex
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /baud", s.handleSetBaud)
	mux.HandleFunc("GET /baud", s.handleGetBaud)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
		Step    string `json:"step,omitempty"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// handleSetBaud runs a full reconfiguration attempt for the requested rate
func (s *Server) handleSetBaud(w http.ResponseWriter, r *http.Request) {
	type BaudRequest struct {
		Baud int `json:"baud"`
	}

	var req BaudRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Baud == 0 {
		s.sendError(w, "'baud' field is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A session covers exactly one attempt.
	session := radio.NewSession(s.Transport, radio.Config{
		Logger: s.Logger.With("component", "session"),
	})
	if err := session.Reconfigure(r.Context(), req.Baud); err != nil {
		var stepErr *radio.StepError
		if errors.As(err, &stepErr) {
			s.Logger.Error("Reconfiguration failed", "error", stepErr.Err, "step", stepErr.Step.String(), "baud", req.Baud)
		} else {
			s.Logger.Error("Reconfiguration failed", "error", err, "baud", req.Baud)
		}

		status := http.StatusBadGateway
		if errors.Is(err, radio.ErrUnsupportedRate) {
			status = http.StatusBadRequest
		}
		s.sendError(w, err.Error(), status)
		return
	}

	s.Logger.Info("Modem reconfigured", "baud", req.Baud)
	s.writeBaud(w)
}

// handleGetBaud reports the rate the host transport is configured for
func (s *Server) handleGetBaud(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeBaud(w)
}

func (s *Server) writeBaud(w http.ResponseWriter) {
	type BaudResponse struct {
		Baud int `json:"baud"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BaudResponse{Baud: s.Transport.BaudRate()})
}
