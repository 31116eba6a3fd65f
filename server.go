package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"i4.energy/across/atcmd/modem"
)

// Server handles incoming HTTP requests for executing AT commands on the
// configured modem instance. Requests are executed one at a time by the
// modem.
type Server struct {
	Logger *slog.Logger
	Modem  *modem.Modem
	// Timeout is used for requests that do not specify timeout_ms
	Timeout time.Duration
}

type commandsRequest struct {
	Commands  []string `json:"commands"`
	TimeoutMS int      `json:"timeout_ms,omitempty"`
}

type commandResult struct {
	Command string   `json:"command"`
	Lines   []string `json:"lines"`
	OK      bool     `json:"ok"`
	Error   bool     `json:"error"`
}

type commandsResponse struct {
	Message string          `json:"message,omitempty"`
	Results []commandResult `json:"results"`
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /commands", s.handleCommands)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Failed to encode response", "error", err)
	}
}

// handleCommands runs the requested commands in order and returns every
// response received. Execution stops at the first failing command.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	var req commandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Commands) == 0 {
		s.sendError(w, "'commands' must contain at least one command", http.StatusBadRequest)
		return
	}
	if req.TimeoutMS < 0 {
		s.sendError(w, "'timeout_ms' must not be negative", http.StatusBadRequest)
		return
	}

	timeout := s.Timeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	resp := commandsResponse{Results: []commandResult{}}
	err := s.Modem.RunTimeout(req.Commands, timeout, func(cmd string, res *modem.Response) {
		lines := res.Lines
		if lines == nil {
			lines = []string{}
		}
		resp.Results = append(resp.Results, commandResult{
			Command: cmd,
			Lines:   lines,
			OK:      res.OK,
			Error:   res.Error,
		})
	})
	if err != nil {
		s.Logger.Error("Failed to execute commands", "error", err, "executed", len(resp.Results))
		resp.Message = err.Error()
		s.sendJSON(w, resp, http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Commands executed", "count", len(resp.Results))
	s.sendJSON(w, resp, http.StatusOK)
}
