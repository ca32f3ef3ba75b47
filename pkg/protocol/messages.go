// ABOUTME: Soundstage control protocol message type definitions
// ABOUTME: Defines envelopes, handshake, command, result and event payloads
package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the version announced in the handshake
const ProtocolVersion = 1

// Path is the WebSocket endpoint served by control servers
const Path = "/soundstage"

// Message types
const (
	TypeClientHello   = "client/hello"
	TypeServerHello   = "server/hello"
	TypeClientGoodbye = "client/goodbye"
	TypeCommand       = "player/command"
	TypeResult        = "player/result"
	TypeEvent         = "player/event"
)

// Command operations
const (
	OpLoad                   = "load"
	OpCreate                 = "create"
	OpDestroy                = "destroy"
	OpRemoveAll              = "remove_all"
	OpPlay                   = "play"
	OpStop                   = "stop"
	OpIsPlaying              = "is_playing"
	OpSetPosition            = "set_position"
	OpGetPosition            = "get_position"
	OpSetVolume              = "set_volume"
	OpGetVolume              = "get_volume"
	OpUpdateVolume           = "update_volume"
	OpSetListenerPosition    = "set_listener_position"
	OpSetListenerOrientation = "set_listener_orientation"
	OpState                  = "state"
)

// Event kinds
const (
	EventLoadStart    = "load_start"
	EventLoadComplete = "load_complete"
	EventLoadError    = "load_error"
	EventEnded        = "ended"
)

// CodeUnknownOp is returned for commands with an unrecognised op
const CodeUnknownOp = "unknown_op"

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// DecodePayload re-decodes a generic payload into v
func DecodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID   string `json:"server_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	SampleRate int    `json:"sample_rate"`
}

// ClientGoodbye is sent before graceful disconnect
type ClientGoodbye struct {
	Reason string `json:"reason"` // "shutdown", "restart", "user_request"
}

// PlayerCommand asks the server to run one player operation. Only the
// fields relevant to Op are read.
type PlayerCommand struct {
	RequestID string   `json:"request_id"`
	Op        string   `json:"op"`
	Path      string   `json:"path,omitempty"`
	Sound     string   `json:"sound,omitempty"`
	Loop      bool     `json:"loop,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Z         *float64 `json:"z,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	Time      *float64 `json:"time,omitempty"` // ramp seconds for set_volume
	Gain      *float64 `json:"gain,omitempty"`
	Forward   *Vector  `json:"forward,omitempty"`
	Up        *Vector  `json:"up,omitempty"`
}

// Vector is a 3D direction
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlayerResult answers a PlayerCommand
type PlayerResult struct {
	RequestID string       `json:"request_id"`
	Sound     string       `json:"sound,omitempty"`
	Playing   *bool        `json:"playing,omitempty"`
	Volume    *float64     `json:"volume,omitempty"`
	X         *float64     `json:"x,omitempty"`
	Y         *float64     `json:"y,omitempty"`
	Z         *float64     `json:"z,omitempty"`
	State     *PlayerState `json:"state,omitempty"`
	Error     string       `json:"error,omitempty"`
	Code      string       `json:"code,omitempty"`
}

// PlayerEvent is pushed by the server to every connected client
type PlayerEvent struct {
	Kind  string `json:"kind"`
	Path  string `json:"path,omitempty"`
	Sound string `json:"sound,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// PlayerState is a full snapshot of the player
type PlayerState struct {
	Volume   float64       `json:"volume"`
	Listener ListenerState `json:"listener"`
	Sounds   []SoundState  `json:"sounds"`
	Pending  int           `json:"pending"`
}

// ListenerState reports the listener pose
type ListenerState struct {
	Position Vector `json:"position"`
	Forward  Vector `json:"forward"`
	Up       Vector `json:"up"`
}

// SoundState reports one registered sound
type SoundState struct {
	ID       string  `json:"id"`
	Path     string  `json:"path"`
	Position Vector  `json:"position"`
	Playing  bool    `json:"playing"`
	Loop     bool    `json:"loop"`
	Gain     float64 `json:"gain"`
}

// Float returns a pointer to v, for optional command fields
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for optional result fields
func Bool(v bool) *bool {
	return &v
}
