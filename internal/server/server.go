// Package server exposes a self-refreshing view of a repository's
// topologically ordered commit graph. It watches the .git directory for
// changes, rebuilds the graph, order, and rendering, and pushes updates to
// connected websocket clients.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Local tool, no cross-origin story yet.
		return true
	},
}

type MessageType string

const (
	MessageTypeInfo   MessageType = "info"
	MessageTypeGraph  MessageType = "graph"
	MessageTypeOrder  MessageType = "order"
	MessageTypeRender MessageType = "render"
)

// UpdateMessage is the envelope for every payload sent over the websocket.
type UpdateMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InfoPayload describes the repository being served.
type InfoPayload struct {
	Name     string `json:"name"`
	GitDir   string `json:"gitDir"`
	Head     string `json:"head,omitempty"`
	HeadRef  string `json:"headRef,omitempty"`
	Detached bool   `json:"detached,omitempty"`
}

// GraphNode is one commit of the ancestry graph, adjacency pre-sorted.
type GraphNode struct {
	Hash     string   `json:"hash"`
	Parents  []string `json:"parents,omitempty"`
	Children []string `json:"children,omitempty"`
}

// GraphPayload carries the full graph plus the branch index.
type GraphPayload struct {
	Nodes    []GraphNode         `json:"nodes"`
	Branches map[string][]string `json:"branches,omitempty"`
}

type snapshot struct {
	info   InfoPayload
	graph  *GraphPayload
	order  []string
	render string
}

// Server serves the rendered commit graph over HTTP and websocket,
// refreshing it whenever the repository changes.
type Server struct {
	repoPath string
	port     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cacheMu sync.RWMutex
	cached  snapshot

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]bool
	broadcast chan UpdateMessage
}

// NewServer creates a server for the repository containing repoPath.
func NewServer(repoPath, port string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		repoPath:  repoPath,
		port:      port,
		ctx:       ctx,
		cancel:    cancel,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan UpdateMessage, 256),
	}
}

// Start builds the initial snapshot, starts the watcher, poller, and
// broadcaster, and blocks serving HTTP.
func (s *Server) Start() error {
	if err := s.refresh(); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/info", s.handleInfo)
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/order", s.handleOrder)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/ws", s.handleWebSocket)

	s.wg.Add(1)
	go s.handleBroadcast()

	if err := s.startWatcher(); err != nil {
		log.Printf("Watcher unavailable, relying on polling: %v", err)
	}

	s.wg.Add(1)
	go s.pollLoop()

	return http.ListenAndServe(":"+s.port, mux)
}

// Stop cancels the background goroutines and waits for them to exit.
func (s *Server) Stop() {
	s.cancel()
	s.wg.Wait()
}

// handleWebSocket upgrades the connection, registers the client, and streams
// updates until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()

	log.Printf("WebSocket client connected. Total clients: %d", total)

	s.sendInitialState(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.clientsMu.Lock()
			delete(s.clients, conn)
			total = len(s.clients)
			s.clientsMu.Unlock()
			log.Printf("WebSocket client disconnected. Total clients: %d", total)
			break
		}
	}
}

// sendInitialState sends the current snapshot to a newly connected client.
func (s *Server) sendInitialState(conn *websocket.Conn) {
	s.cacheMu.RLock()
	messages := []UpdateMessage{
		{Type: string(MessageTypeInfo), Data: s.cached.info},
		{Type: string(MessageTypeGraph), Data: s.cached.graph},
		{Type: string(MessageTypeOrder), Data: s.cached.order},
		{Type: string(MessageTypeRender), Data: s.cached.render},
	}
	s.cacheMu.RUnlock()

	for _, msg := range messages {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Error sending initial state: %v", err)
			return
		}
	}
}

// handleBroadcast fans out queued messages to all connected clients.
func (s *Server) handleBroadcast() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.broadcast:
			s.clientsMu.Lock()
			for client := range s.clients {
				if err := client.WriteJSON(msg); err != nil {
					log.Printf("Error broadcasting to client: %v", err)
					delete(s.clients, client)
					client.Close()
				}
			}
			s.clientsMu.Unlock()
		}
	}
}

// broadcastUpdate queues an update for all connected websocket clients.
func (s *Server) broadcastUpdate(msgType MessageType, data interface{}) {
	msg := UpdateMessage{
		Type: string(msgType),
		Data: data,
	}

	select {
	case s.broadcast <- msg:
	default:
		log.Println("Broadcast channel full, dropping message")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
