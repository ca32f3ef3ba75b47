// ABOUTME: WebSocket client for the soundstage control protocol
// ABOUTME: Handles connection, handshake, request correlation and events
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned when sending on a closed client
var ErrNotConnected = errors.New("not connected")

// CommandError is a failed command reported by the server
type CommandError struct {
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config holds client configuration
type Config struct {
	ServerAddr string
	ClientID   string
	Name       string
	DeviceInfo DeviceInfo

	// HandshakeTimeout bounds the wait for server/hello (default 5s)
	HandshakeTimeout time.Duration
}

// Client represents a control connection to a soundstage server
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex
	wmu    sync.Mutex

	// Events receives server-pushed player events
	Events chan PlayerEvent

	hello   ServerHello
	pending map[string]chan PlayerResult

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.ClientID == "" {
		config.ClientID = uuid.New().String()
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		Events:  make(chan PlayerEvent, 64),
		pending: make(map[string]chan PlayerResult),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes the WebSocket connection and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake sends client/hello and waits for server/hello
func (c *Client) handshake() error {
	hello := ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    ProtocolVersion,
		DeviceInfo: &c.config.DeviceInfo,
	}

	if err := c.sendJSON(Message{Type: TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(c.config.HandshakeTimeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if msg.Type != TypeServerHello {
		return fmt.Errorf("expected server/hello, got %s", msg.Type)
	}

	var serverHello ServerHello
	if err := DecodePayload(msg.Payload, &serverHello); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	c.mu.Lock()
	c.hello = serverHello
	c.mu.Unlock()

	log.Printf("Handshake complete with server %s (%s)", serverHello.Name, serverHello.ServerID)
	return nil
}

// ServerHello returns the handshake response from the server
func (c *Client) ServerHello() ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// Do sends a command and waits for its result. A result carrying an error
// is returned together with a *CommandError.
func (c *Client) Do(ctx context.Context, cmd PlayerCommand) (PlayerResult, error) {
	if cmd.RequestID == "" {
		cmd.RequestID = uuid.New().String()
	}

	ch := make(chan PlayerResult, 1)
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return PlayerResult{}, ErrNotConnected
	}
	c.pending[cmd.RequestID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, cmd.RequestID)
		c.mu.Unlock()
	}()

	if err := c.sendJSON(Message{Type: TypeCommand, Payload: cmd}); err != nil {
		return PlayerResult{}, fmt.Errorf("failed to send %s: %w", cmd.Op, err)
	}

	select {
	case res := <-ch:
		if res.Error != "" || res.Code != "" {
			return res, &CommandError{Code: res.Code, Message: res.Error}
		}
		return res, nil
	case <-c.ctx.Done():
		return PlayerResult{}, ErrNotConnected
	case <-ctx.Done():
		return PlayerResult{}, ctx.Err()
	}
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg Message) error {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected {
		return ErrNotConnected
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			log.Printf("Unexpected WebSocket message type: %d", messageType)
			continue
		}
		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes results to waiters and events to Events
func (c *Client) handleJSONMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case TypeResult:
		var res PlayerResult
		if err := DecodePayload(msg.Payload, &res); err != nil {
			log.Printf("Failed to parse player/result: %v", err)
			return
		}
		c.mu.RLock()
		ch, ok := c.pending[res.RequestID]
		c.mu.RUnlock()
		if !ok {
			log.Printf("Result for unknown request %s", res.RequestID)
			return
		}
		select {
		case ch <- res:
		default:
			log.Printf("Duplicate result for request %s", res.RequestID)
		}

	case TypeEvent:
		var ev PlayerEvent
		if err := DecodePayload(msg.Payload, &ev); err != nil {
			log.Printf("Failed to parse player/event: %v", err)
			return
		}
		select {
		case c.Events <- ev:
		case <-time.After(100 * time.Millisecond):
			log.Printf("Event channel full, dropping %s event", ev.Kind)
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// SendGoodbye sends a client/goodbye message before disconnecting
func (c *Client) SendGoodbye(reason string) error {
	return c.sendJSON(Message{
		Type:    TypeClientGoodbye,
		Payload: ClientGoodbye{Reason: reason},
	})
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
