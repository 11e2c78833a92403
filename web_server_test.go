package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebServer_FrameEndpoint(t *testing.T) {
	server := NewWebServer("127.0.0.1:0", nil)

	// Test empty frame
	req := httptest.NewRequest("GET", "/api/frame", nil)
	w := httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for empty frame, got %d", w.Code)
	}

	// Test with frame
	frame := &SimulationFrame{
		Cycle: 10,
		Registers: RegisterSnapshot{
			Enabled:     true,
			ShadowLimit: 500,
			ActiveLimit: 1000,
		},
	}
	server.UpdateFrame(frame)

	req = httptest.NewRequest("GET", "/api/frame", nil)
	w = httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var result SimulationFrame
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Cycle != 10 {
		t.Errorf("Expected cycle 10, got %d", result.Cycle)
	}
	if result.Registers.ActiveLimit != 1000 {
		t.Errorf("Expected active limit 1000, got %d", result.Registers.ActiveLimit)
	}

	// Test wrong method
	req = httptest.NewRequest("POST", "/api/frame", nil)
	w = httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestWebServer_ControlEndpoint(t *testing.T) {
	server := NewWebServer("127.0.0.1:0", nil)

	body, _ := json.Marshal(controlRequest{Type: "pause"})
	req := httptest.NewRequest("POST", "/api/control", bytes.NewReader(body))
	w := httptest.NewRecorder()
	server.handleControl(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}

	cmd, ok := server.NextCommand()
	if !ok || cmd.Type != CommandPause {
		t.Fatalf("Expected pause command, got %+v ok=%t", cmd, ok)
	}
	if _, ok := server.NextCommand(); ok {
		t.Fatalf("Command queue should be empty")
	}

	// Invalid command type
	body, _ = json.Marshal(controlRequest{Type: "explode"})
	req = httptest.NewRequest("POST", "/api/control", bytes.NewReader(body))
	w = httptest.NewRecorder()
	server.handleControl(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid command, got %d", w.Code)
	}

	// Reset with invalid config
	bad := &Config{TotalCycles: -1}
	body, _ = json.Marshal(controlRequest{Type: "reset", Config: bad})
	req = httptest.NewRequest("POST", "/api/control", bytes.NewReader(body))
	w = httptest.NewRecorder()
	server.handleControl(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid config, got %d", w.Code)
	}

	// Reset with valid config override
	good := headlessConfig(100, 1)
	body, _ = json.Marshal(controlRequest{Type: "reset", Config: good})
	req = httptest.NewRequest("POST", "/api/control", bytes.NewReader(body))
	w = httptest.NewRecorder()
	server.handleControl(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202 for valid reset, got %d", w.Code)
	}
	cmd, ok = server.NextCommand()
	if !ok || cmd.Type != CommandReset || cmd.ConfigOverride == nil {
		t.Fatalf("Expected reset with override, got %+v", cmd)
	}
}

func TestWebServer_RegistersEndpoint(t *testing.T) {
	var pushed []RegisterOp
	server := NewWebServer("127.0.0.1:0", func(op RegisterOp) {
		pushed = append(pushed, op)
	})

	// GET without a frame
	req := httptest.NewRequest("GET", "/api/registers", nil)
	w := httptest.NewRecorder()
	server.handleRegisters(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without frame, got %d", w.Code)
	}

	server.UpdateFrame(&SimulationFrame{Registers: RegisterSnapshot{ShadowLimit: 250}})
	req = httptest.NewRequest("GET", "/api/registers", nil)
	w = httptest.NewRecorder()
	server.handleRegisters(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var snap RegisterSnapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if snap.ShadowLimit != 250 {
		t.Errorf("Expected shadow limit 250, got %d", snap.ShadowLimit)
	}

	// POST queues an operation
	body, _ := json.Marshal(RegisterOp{Addr: 0x04, Data: 500})
	req = httptest.NewRequest("POST", "/api/registers", bytes.NewReader(body))
	w = httptest.NewRecorder()
	server.handleRegisters(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if len(pushed) != 1 || pushed[0].Addr != 0x04 || pushed[0].Data != 500 {
		t.Fatalf("Operation not pushed: %v", pushed)
	}

	// Misaligned address rejected
	body, _ = json.Marshal(RegisterOp{Addr: 0x05})
	req = httptest.NewRequest("POST", "/api/registers", bytes.NewReader(body))
	w = httptest.NewRecorder()
	server.handleRegisters(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for misaligned address, got %d", w.Code)
	}
}

func TestWebServer_ConfigsEndpoint(t *testing.T) {
	server := NewWebServer("127.0.0.1:0", nil)

	req := httptest.NewRequest("GET", "/api/configs", nil)
	w := httptest.NewRecorder()
	server.handleConfigs(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var configs []NamedConfig
	if err := json.NewDecoder(w.Body).Decode(&configs); err != nil {
		t.Fatalf("Failed to decode configs: %v", err)
	}
	if len(configs) == 0 {
		t.Fatalf("Expected predefined configs")
	}
}
