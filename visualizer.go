package main

// ControlCommandType represents types of control instructions from UI.
type ControlCommandType string

const (
	CommandNone   ControlCommandType = "none"
	CommandPause  ControlCommandType = "pause"
	CommandResume ControlCommandType = "resume"
	CommandReset  ControlCommandType = "reset"
	CommandStep   ControlCommandType = "step"
)

// ControlCommand captures a control instruction for the simulator.
type ControlCommand struct {
	Type           ControlCommandType
	ConfigOverride *Config
}

// Visualizer defines methods for visualization implementations.
type Visualizer interface {
	SetHeadless(headless bool)
	IsHeadless() bool
	PublishFrame(frame *SimulationFrame)
	NextCommand() (ControlCommand, bool)
}

// NullVisualizer is a no-op implementation used for headless mode.
type NullVisualizer struct {
	headless bool
}

// NewNullVisualizer creates a new NullVisualizer.
func NewNullVisualizer() *NullVisualizer {
	return &NullVisualizer{headless: true}
}

func (n *NullVisualizer) SetHeadless(headless bool) {
	n.headless = headless
}

func (n *NullVisualizer) IsHeadless() bool {
	return n.headless
}

func (n *NullVisualizer) PublishFrame(frame *SimulationFrame) {}

func (n *NullVisualizer) NextCommand() (ControlCommand, bool) {
	return ControlCommand{Type: CommandNone}, false
}

// WebVisualizer bridges the simulator with the web server.
type WebVisualizer struct {
	headless bool
	server   *WebServer
}

// NewWebVisualizer creates a web visualizer and starts its server.
func NewWebVisualizer(addr string, pushOp func(RegisterOp)) *WebVisualizer {
	if addr == "" {
		addr = DefaultWebAddr
	}
	server := NewWebServer(addr, pushOp)
	server.Start()
	GetLogger().Infof("Web server started at http://%s", addr)

	return &WebVisualizer{
		headless: false,
		server:   server,
	}
}

// SetHeadless switches headless state.
func (w *WebVisualizer) SetHeadless(headless bool) {
	w.headless = headless
}

// IsHeadless returns whether visualizer runs without UI.
func (w *WebVisualizer) IsHeadless() bool {
	return w.headless
}

// PublishFrame updates the server with the latest frame.
func (w *WebVisualizer) PublishFrame(frame *SimulationFrame) {
	if w.server != nil {
		w.server.UpdateFrame(frame)
	}
}

// NextCommand returns the next control command if available, non-blocking.
func (w *WebVisualizer) NextCommand() (ControlCommand, bool) {
	if w.server == nil {
		return ControlCommand{Type: CommandNone}, false
	}
	return w.server.NextCommand()
}
