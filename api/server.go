package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/room"
	"github.com/wricardo/duelrooms/game/service"
	"github.com/wricardo/duelrooms/transport/websocket"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// Server represents the REST API server
type Server struct {
	service   service.RoomService
	hub       *websocket.Hub
	router    *mux.Router
	publicURL string
	logger    *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithPublicURL sets the base URL used in share links, e.g. an ngrok tunnel
func WithPublicURL(url string) Option {
	return func(s *Server) {
		s.publicURL = strings.TrimSuffix(url, "/")
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new API server. hub may be nil, in which case /ws
// answers 503.
func NewServer(roomService service.RoomService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: roomService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/status", s.handleStatus).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Rooms
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{id}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{id}/qr", s.handleRoomQR).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Share links resolve to a join hint
	s.router.HandleFunc("/room/{id}", s.handleShareLink).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handle mounts an extra handler, e.g. the MCP endpoint
func (s *Server) Handle(path string, handler http.Handler) {
	s.router.Handle(path, handler)
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

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Room Handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := service.RoomFilter{
		State:    room.State(query.Get("state")),
		Strategy: engine.Strategy(query.Get("strategy")),
		SortBy:   query.Get("sort"),  // "created" (default), "active"
		Order:    query.Get("order"), // "asc", "desc" (default)
	}

	switch filter.State {
	case "", room.StateWaiting, room.StateActive:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid state %q", filter.State))
		return
	}
	if filter.Strategy != "" && !filter.Strategy.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid strategy %q", filter.Strategy))
		return
	}

	if filter.SortBy != "active" {
		filter.SortBy = "created"
	}
	if filter.Order != "asc" {
		filter.Order = "desc"
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}

	rooms, err := s.service.ListRooms(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
		"sort":  filter.SortBy,
		"order": filter.Order,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	info, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	info, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	size := defaultQRSize
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n < minQRSize || n > maxQRSize {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize))
			return
		}
		size = n
	}

	link := s.shareURL(r, info.ID)
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		s.logger.Error("failed to encode qr code", "room", info.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to encode qr code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Share-URL", link)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	info, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"room":      info.ID,
		"game":      info.Game,
		"state":     info.State,
		"ws_url":    s.websocketURL(r),
		"join":      protocol.Envelope{Type: protocol.TypeJoin, Room: info.ID},
		"share_url": s.shareURL(r, info.ID),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// lookupRoom writes the error response itself when the room is unavailable
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*room.Info, bool) {
	roomID := mux.Vars(r)["id"]

	info, err := s.service.GetRoom(r.Context(), roomID)
	if errors.Is(err, room.ErrRoomNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return info, true
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
	configName := mux.Vars(r)["name"]

	// Remove the file extension if present
	configName = strings.TrimSuffix(configName, filepath.Ext(configName))

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, config.ErrInvalidConfig):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to load config", "config", configName, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load config")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket transport unavailable", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r)
}

// shareURL builds the link players open to join a room
func (s *Server) shareURL(r *http.Request, roomID string) string {
	return s.baseURL(r) + "/room/" + roomID
}

func (s *Server) websocketURL(r *http.Request) string {
	base := s.baseURL(r)
	if strings.HasPrefix(base, "https://") {
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	}
	return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
}

func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
