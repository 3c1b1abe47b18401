package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/fogmaze/game/config"
	"github.com/wricardo/fogmaze/game/service"
	"github.com/wricardo/fogmaze/game/session"
)

// Server represents the admin REST API server
type Server struct {
	service service.AdminService
	ws      http.Handler
	router  *mux.Router
}

// NewServer creates a new API server. ws, when non-nil, is mounted at /ws for
// game clients.
func NewServer(admin service.AdminService, ws http.Handler) *Server {
	s := &Server{
		service: admin,
		ws:      ws,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/server", s.handleServerInfo).Methods("GET")

	// Session roster
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions", s.handleDisconnectAll).Methods("DELETE")
	// must be registered before the {name} patterns
	api.HandleFunc("/sessions/idle", s.handleDisconnectIdle).Methods("POST")
	api.HandleFunc("/sessions/{name}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{name}", s.handleDisconnectSession).Methods("DELETE")
	api.HandleFunc("/sessions/{name}/history", s.handleGetHistory).Methods("GET")

	// Presets
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	if s.ws != nil {
		s.router.Handle("/ws", s.ws)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, config.ErrInvalidConfig):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoConfigs):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// ?status= filters on the exact status string
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]*service.SessionInfo, 0, len(sessions))
		for _, info := range sessions {
			if strings.EqualFold(info.Status, status) {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	info, err := s.service.GetSession(r.Context(), name)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDisconnectSession(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.service.DisconnectSession(r.Context(), name); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s disconnected", name),
	})
}

func (s *Server) handleDisconnectAll(w http.ResponseWriter, r *http.Request) {
	before, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// send failures still release the slots, so report them alongside the count
	resp := map[string]interface{}{"disconnected": len(before)}
	if err := s.service.DisconnectAll(r.Context()); err != nil {
		resp["error"] = err.Error()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDisconnectIdle(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("max_idle")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "max_idle parameter required")
		return
	}
	maxIdle, err := time.ParseDuration(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid max_idle: %v", err))
		return
	}

	n, err := s.service.DisconnectIdle(r.Context(), maxIdle)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"disconnected": n,
		"max_idle":     maxIdle.String(),
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), name, opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Server Handlers

func (s *Server) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.ServerInfo(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), name)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}
