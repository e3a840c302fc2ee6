// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package httpapi exposes the game API over HTTP. It is a thin JSON
// shim: handlers decode a request, call the facade, and map error
// codes to statuses. No game logic lives here.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/api"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/pkg/errutil"
)

// commandRequest is the envelope for token-bearing POST bodies.
// Logout sends it with an empty command.
type commandRequest struct {
	Token   string `json:"session_id"`
	Command string `json:"command"`
}

// healthResponse is returned by /health.
type healthResponse struct {
	Status        string `json:"status"`
	ActivePlayers int    `json:"active_players"`
}

// errorResponse is the body for every non-2xx answer. Detail is always
// a player-safe message.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Server serves the game API on a TCP address.
type Server struct {
	addr       string
	svc        *api.Service
	mux        *http.ServeMux
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the game HTTP server.
// addr: listen address in "host:port" format (":8080" for all interfaces).
func NewServer(addr string, svc *api.Service) *Server {
	s := &Server{addr: addr, svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /command", s.handleCommand)
	mux.HandleFunc("GET /status/{token}", s.handleStatus)
	mux.HandleFunc("GET /chat/{token}", s.handleChat)
	mux.HandleFunc("POST /admin/role", s.handleSetRole)
	mux.HandleFunc("POST /admin/active", s.handleSetActive)
	mux.HandleFunc("POST /admin/password", s.handleSetPassword)
	mux.HandleFunc("GET /health", s.handleHealth)
	s.mux = mux

	return s
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving. It returns an error channel that receives any
// serve-loop failure and closes on graceful shutdown; callers should
// monitor it.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("game http server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("game http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("game http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server, letting in-flight commands
// finish.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_game_http_server").Wrap(err)
		}
	}

	slog.Info("game http server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" before
// Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.Logout(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.Command(r.Context(), req.Token, req.Command)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Status(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Chat(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req api.SetRoleRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.SetRole(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req api.SetActiveRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.SetActive(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req api.SetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.svc.SetPassword(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ActivePlayers: s.svc.ActivePlayerCount(),
	})
}

// decode reads a JSON body into v. On failure it answers 400 and
// returns false.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body."})
		return false
	}
	return true
}

// statusFor maps an error's code to an HTTP status. Login failures are
// 401 like any other authentication failure; the codes keep their
// player-safe messages.
func statusFor(err error) int {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch oopsErr.Code() {
	case "UNAUTHENTICATED", "AUTH_INVALID_CREDENTIALS", "AUTH_ACCOUNT_DISABLED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "VALIDATION", "AUTH_USERNAME_TAKEN":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		errutil.LogError(slog.Default(), "request failed", err)
	}
	writeJSON(w, status, errorResponse{Detail: command.PlayerMessage(err)})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
