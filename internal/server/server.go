// ABOUTME: Control server for the soundstage protocol
// ABOUTME: Manages WebSocket connections and maps commands onto a Player
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Sendspin/soundstage/pkg/discovery"
	"github.com/Sendspin/soundstage/pkg/protocol"
	"github.com/Sendspin/soundstage/pkg/soundstage"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultPort is the control port when Config.Port is unset
const DefaultPort = 8928

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
}

// Server exposes a Player over WebSocket
type Server struct {
	config   Config
	serverID string
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	playerMu sync.RWMutex
	player   *soundstage.Player

	httpServer *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected controller
type Client struct {
	ID          string
	Name        string
	Addr        string
	ConnectedAt time.Time

	conn     *websocket.Conn
	sendChan chan interface{}
}

// ClientInfo is a snapshot of a connected controller
type ClientInfo struct {
	ID          string
	Name        string
	Addr        string
	ConnectedAt time.Time
}

// New creates a new server instance. A player must be attached before Start.
func New(config Config) *Server {
	if config.Port <= 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = "soundstage"
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Trusted local network deployments only
				origin := r.Header.Get("Origin")
				if origin != "" && config.Debug {
					log.Printf("[DEBUG] accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Attach sets the player commands are executed against
func (s *Server) Attach(player *soundstage.Player) {
	s.playerMu.Lock()
	defer s.playerMu.Unlock()
	s.player = player
}

func (s *Server) getPlayer() *soundstage.Player {
	s.playerMu.RLock()
	defer s.playerMu.RUnlock()
	return s.player
}

// ID returns the server's unique id
func (s *Server) ID() string {
	return s.serverID
}

// Handler returns the HTTP handler serving the WebSocket endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	if s.getPlayer() == nil {
		return fmt.Errorf("no player attached")
	}

	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Path:        protocol.Path,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("WebSocket server listening on %s", addr)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.closeClients()
	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// closeClients drops hijacked connections that Shutdown does not track
func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

// Clients returns connected controllers ordered by connection time
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	list := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		list = append(list, ClientInfo{ID: c.ID, Name: c.Name, Addr: c.Addr, ConnectedAt: c.ConnectedAt})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ConnectedAt.Before(list[j].ConnectedAt) })
	return list
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)
	s.handleConnection(conn, r.RemoteAddr)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn, addr string) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("Error reading hello: %v", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}
	if msg.Type != protocol.TypeClientHello {
		log.Printf("Expected client/hello, got %s", msg.Type)
		return
	}

	var hello protocol.ClientHello
	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		log.Printf("Error unmarshaling client hello: %v", err)
		return
	}
	if hello.ClientID == "" {
		log.Printf("Client hello missing ClientID")
		return
	}
	if hello.Name == "" {
		hello.Name = hello.ClientID
	}

	log.Printf("Client hello: %s (ID: %s)", hello.Name, hello.ClientID)

	client := &Client{
		ID:          hello.ClientID,
		Name:        hello.Name,
		Addr:        addr,
		ConnectedAt: time.Now(),
		conn:        conn,
		sendChan:    make(chan interface{}, 100),
	}

	s.clientsMu.Lock()
	if existing, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", hello.ClientID, existing.Name)
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		log.Printf("Client disconnected: %s", client.Name)
	}()

	serverHello := protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.ProtocolVersion,
	}
	if p := s.getPlayer(); p != nil {
		serverHello.SampleRate = p.Context().SampleRate()
	}
	if err := s.sendMessage(client, protocol.TypeServerHello, serverHello); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleClientMessage(client, data)
	}
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing text message: %v", err)
				return
			}

		case <-ticker.C:
			if err := client.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeCommand:
		var cmd protocol.PlayerCommand
		if err := protocol.DecodePayload(msg.Payload, &cmd); err != nil {
			log.Printf("Error unmarshaling command: %v", err)
			return
		}
		if s.config.Debug {
			log.Printf("[DEBUG] %s: %s %+v", client.Name, cmd.Op, cmd)
		}
		result := s.execute(cmd)
		if err := s.sendMessage(client, protocol.TypeResult, result); err != nil {
			log.Printf("Error sending result to %s: %v", client.Name, err)
		}

	case protocol.TypeClientGoodbye:
		var goodbye protocol.ClientGoodbye
		if err := protocol.DecodePayload(msg.Payload, &goodbye); err == nil {
			log.Printf("Client %s leaving: %s", client.Name, goodbye.Reason)
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Notify broadcasts an event to every connected client
func (s *Server) Notify(ev protocol.PlayerEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendMessage(c, protocol.TypeEvent, ev); err != nil {
			log.Printf("Dropping %s event for %s: %v", ev.Kind, c.Name, err)
		}
	}
}

// LoadStarted is a soundstage.Config.OnLoadStart hook
func (s *Server) LoadStarted(path string) {
	s.Notify(protocol.PlayerEvent{Kind: protocol.EventLoadStart, Path: path})
}

// LoadCompleted is a soundstage.Config.OnLoadComplete hook
func (s *Server) LoadCompleted() {
	s.Notify(protocol.PlayerEvent{Kind: protocol.EventLoadComplete})
}

// LoadFailed is a soundstage.Config.OnLoadError hook
func (s *Server) LoadFailed(err error) {
	log.Printf("Audio load failed: %v", err)

	ev := protocol.PlayerEvent{
		Kind:  protocol.EventLoadError,
		Error: err.Error(),
		Code:  soundstage.ErrorCode(err),
	}
	var loadErr *soundstage.LoadError
	if errors.As(err, &loadErr) {
		ev.Path = loadErr.Path
	}
	s.Notify(ev)
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}
