package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandSwap      CommandType = "SWAP"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BindingInfo describes one bound hotkey.
type BindingInfo struct {
	Hotkey           string  `json:"hotkey"`
	A                string  `json:"a"`
	B                string  `json:"b"`
	OverlapThreshold float64 `json:"overlap_threshold"`
}

// SwapSummary records the outcome of the most recent swap.
type SwapSummary struct {
	Hotkey string    `json:"hotkey,omitempty"` // empty when requested over IPC
	A      string    `json:"a"`
	B      string    `json:"b"`
	At     time.Time `json:"at"`
	Moved  int       `json:"moved"`
	Failed int       `json:"failed"`
	Error  string    `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int           `json:"pid"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	ConfigPath    string        `json:"config_path,omitempty"`
	Bindings      []BindingInfo `json:"bindings"`
	LastSwap      *SwapSummary  `json:"last_swap,omitempty"`
}

// SwapPayload represents the payload for the SWAP command
type SwapPayload struct {
	A                string   `json:"a"`
	B                string   `json:"b"`
	OverlapThreshold *float64 `json:"overlap_threshold,omitempty"`
	DryRun           bool     `json:"dry_run,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
