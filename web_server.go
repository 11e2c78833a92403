package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// WebServer provides HTTP endpoints for visualization and control.
type WebServer struct {
	mu          sync.RWMutex
	latestFrame *SimulationFrame
	latestStats *SimulationStats
	commands    chan ControlCommand
	pushOp      func(RegisterOp)
	server      *http.Server
	hub         *wsHub
}

// NewWebServer creates a new web server instance. pushOp receives register
// operations posted through the API; they are driven through the bus at the
// next idle cycle.
func NewWebServer(addr string, pushOp func(RegisterOp)) *WebServer {
	ws := &WebServer{
		commands: make(chan ControlCommand, 10),
		pushOp:   pushOp,
		hub:      newHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame", ws.handleFrame)
	mux.HandleFunc("/api/stats", ws.handleStats)
	mux.HandleFunc("/api/control", ws.handleControl)
	mux.HandleFunc("/api/registers", ws.handleRegisters)
	mux.HandleFunc("/api/configs", ws.handleConfigs)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.hub.handle(ws, w, r)
	})
	mux.Handle("/", http.FileServer(http.Dir("web/static")))

	ws.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return ws
}

// Start starts the HTTP server in a goroutine.
func (ws *WebServer) Start() error {
	go func() {
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			GetLogger().Errorf("Web server stopped: %v", err)
		}
	}()
	return nil
}

// UpdateFrame updates the latest frame and stats, and pushes the frame to
// WebSocket clients.
func (ws *WebServer) UpdateFrame(frame *SimulationFrame) {
	ws.mu.Lock()
	ws.latestFrame = frame
	if frame != nil {
		ws.latestStats = frame.Stats
	}
	ws.mu.Unlock()

	ws.hub.broadcastFrame(frame)
}

// NextCommand returns the next control command if available, non-blocking.
func (ws *WebServer) NextCommand() (ControlCommand, bool) {
	select {
	case cmd := <-ws.commands:
		return cmd, true
	default:
		return ControlCommand{Type: CommandNone}, false
	}
}

func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ws.mu.RLock()
	frame := ws.latestFrame
	ws.mu.RUnlock()

	if frame == nil {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		http.Error(w, "Failed to encode frame", http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ws.mu.RLock()
	stats := ws.latestStats
	ws.mu.RUnlock()

	if stats == nil {
		http.Error(w, "No stats available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "Failed to encode stats", http.StatusInternalServerError)
	}
}

type controlRequest struct {
	Type   string  `json:"type"`
	Config *Config `json:"config,omitempty"`
}

func (ws *WebServer) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd, err := ws.processControlRequest(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !ws.queueCommand(*cmd) {
		http.Error(w, "Command queue full", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Command accepted"))
}

func (ws *WebServer) processControlRequest(req *controlRequest) (*ControlCommand, error) {
	var cmd ControlCommand
	switch strings.ToLower(req.Type) {
	case "pause":
		cmd.Type = CommandPause
	case "resume":
		cmd.Type = CommandResume
	case "step":
		cmd.Type = CommandStep
	case "reset":
		cmd.Type = CommandReset
		if req.Config != nil {
			if err := ws.validateConfig(req.Config); err != nil {
				return nil, &validationError{msg: "Invalid config: " + err.Error()}
			}
			cmd.ConfigOverride = req.Config
		}
	default:
		return nil, &validationError{msg: "Invalid command type"}
	}
	return &cmd, nil
}

func (ws *WebServer) queueCommand(cmd ControlCommand) bool {
	select {
	case ws.commands <- cmd:
		return true
	default:
		return false
	}
}

// handleRegisters exposes the architectural registers: GET returns the
// latest snapshot, POST queues a register operation onto the bus.
func (ws *WebServer) handleRegisters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.mu.RLock()
		frame := ws.latestFrame
		ws.mu.RUnlock()

		if frame == nil {
			http.Error(w, "No frame available", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(frame.Registers); err != nil {
			http.Error(w, "Failed to encode registers", http.StatusInternalServerError)
		}
	case http.MethodPost:
		var op RegisterOp
		if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if op.Addr%4 != 0 {
			http.Error(w, "Address must be word aligned", http.StatusBadRequest)
			return
		}
		if ws.pushOp == nil {
			http.Error(w, "Register access not available", http.StatusServiceUnavailable)
			return
		}
		ws.pushOp(op)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("Operation queued"))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (ws *WebServer) handleConfigs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(GetPredefinedConfigs()); err != nil {
		http.Error(w, "Failed to encode configs", http.StatusInternalServerError)
	}
}

func (ws *WebServer) validateConfig(cfg *Config) error {
	if cfg.TotalCycles <= 0 {
		return &validationError{msg: "TotalCycles must be positive"}
	}
	if cfg.RequestRate < 0 || cfg.RequestRate > 1 {
		return &validationError{msg: "RequestRate must be between 0 and 1"}
	}
	if cfg.DangerRate < 0 || cfg.DangerRate > 1 {
		return &validationError{msg: "DangerRate must be between 0 and 1"}
	}
	if cfg.ReadyMode == ReadyRandom && (cfg.ReadyRate < 0 || cfg.ReadyRate > 1) {
		return &validationError{msg: "ReadyRate must be between 0 and 1"}
	}
	if cfg.GroupSizeMin > cfg.GroupSizeMax && cfg.GroupSizeMax != 0 {
		return &validationError{msg: "GroupSizeMin must not exceed GroupSizeMax"}
	}
	return nil
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}
