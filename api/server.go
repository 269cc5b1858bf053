package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AlexGrek/multigamews-client/protocol"
	"github.com/AlexGrek/multigamews-client/session"
)

// Server serves the debug API for one client session.
type Server struct {
	session *session.Session
	router  *mux.Router
}

// NewServer creates a debug API server over the given session.
func NewServer(s *session.Session) *Server {
	srv := &Server{
		session: s,
		router:  mux.NewRouter(),
	}

	srv.setupRoutes()
	return srv
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/session", s.handleGetSession).Methods("GET")
	api.HandleFunc("/rooms", s.handleGetRooms).Methods("GET")
	api.HandleFunc("/users", s.handleGetUsers).Methods("GET")
	api.HandleFunc("/game", s.handleGetGame).Methods("GET")
	api.HandleFunc("/chat", s.handleGetChat).Methods("GET")
	api.HandleFunc("/traffic", s.handleGetTraffic).Methods("GET")
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

// SessionView is the response shape of GET /api/session.
type SessionView struct {
	Status    string            `json:"status"`
	Profile   protocol.UserInfo `json:"profile"`
	Room      *string           `json:"room"`
	RoomGame  string            `json:"room_game,omitempty"`
	LastError string            `json:"last_error,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view := SessionView{
		Status:    s.session.Status().String(),
		Profile:   s.session.Profile(),
		Room:      s.session.Room(),
		RoomGame:  s.session.RoomGame(),
		LastError: s.session.LastError(),
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetRooms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Rooms())
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.RoomUsers())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	module := s.session.Module()
	if module == nil {
		respondError(w, http.StatusNotFound, "no game module is active")
		return
	}

	snapshot, ok := module.RawSnapshot()
	if !ok {
		respondError(w, http.StatusNotFound, "no snapshot received yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game":     module.Kind(),
		"snapshot": snapshot,
	})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	module := s.session.Module()
	if module == nil {
		respondError(w, http.StatusNotFound, "no game module is active")
		return
	}
	respondJSON(w, http.StatusOK, module.Chat().Entries())
}

func (s *Server) handleGetTraffic(w http.ResponseWriter, r *http.Request) {
	recorder := s.session.Recorder()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dropped": recorder.Dropped(),
		"frames":  recorder.Snapshot(),
	})
}
