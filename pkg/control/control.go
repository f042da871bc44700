// Package control exposes the transfer manager's command and event surface
// over local HTTP and WebSocket, standing in for the out-of-scope GUI host.
package control

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/parcelfs/parcel/pkg/logging"
	"github.com/parcelfs/parcel/pkg/notify"
	"github.com/parcelfs/parcel/pkg/transfer"
)

// Server bridges an in-process Manager to loopback HTTP/WebSocket clients.
type Server struct {
	manager  *transfer.Manager
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// NewServer wraps manager for HTTP/WebSocket access.
func NewServer(manager *transfer.Manager, logger *logging.Logger) *Server {
	return &Server{
		manager: manager,
		logger:  logger.WithComponent("control"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the mux.Router exposing §6's command surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/decision/{id}", s.handleDecision).Methods(http.MethodPost)
	r.HandleFunc("/abort", s.handleAbort).Methods(http.MethodPost)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	go s.manager.Start()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	s.manager.Abort()
	w.WriteHeader(http.StatusAccepted)
}

type statusResponse struct {
	IsComplete           bool `json:"is_complete"`
	IsDirStatusCalculated bool `json:"is_dir_status_calculated"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		IsComplete:            s.manager.IsComplete(),
		IsDirStatusCalculated: s.manager.IsDirStatusCalculated(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type decisionRequest struct {
	Choice string `json:"choice"` // skip | skip_all | replace | replace_all
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := strconv.Atoi(vars["id"]); err != nil {
		http.Error(w, "invalid decision id", http.StatusBadRequest)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var choice notify.UserChoice
	switch req.Choice {
	case "skip":
		choice = notify.ChoiceSkip
	case "skip_all":
		choice = notify.ChoiceSkipAll
	case "replace":
		choice = notify.ChoiceReplace
	case "replace_all":
		choice = notify.ChoiceReplaceAll
	default:
		http.Error(w, "unknown choice", http.StatusBadRequest)
		return
	}

	entry := s.manager.Notifications().Decide(choice)
	if entry == nil {
		http.Error(w, "no pending decision", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entry)
}

// handleEvents upgrades to WebSocket and streams progress/processed/log/
// worker-done events until a write to the client fails. It does not end
// when the transfer completes: the manager never closes its Events channel.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}
	defer conn.Close()

	for ev := range s.manager.Events() {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
