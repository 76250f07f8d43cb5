// Package websocket fans schedule and sync events out to connected
// browsers. Events originate on the Redis stream the publisher writes;
// the server tails the stream and broadcasts every entry to all clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/atg247/iGM/internal/cache"
	"github.com/atg247/iGM/internal/publisher"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Server represents the WebSocket server
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	cache  *cache.RedisCache
}

// NewServer creates a new WebSocket server
func NewServer(redisCache *cache.RedisCache) *Server {
	return &Server{
		hub:   NewHub(),
		cache: redisCache,
	}
}

// Start starts the WebSocket server and the stream tail.
func (s *Server) Start(port string) error {
	s.port = port

	go s.hub.Run()
	go s.consumeEvents(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", s.handleEvents)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleEvents handles WebSocket connections for sync event updates
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// consumeEvents tails the sync event stream and broadcasts each entry.
// Read errors back off and retry: a Redis blip should not kill the tail.
func (s *Server) consumeEvents(ctx context.Context) {
	lastID := "$"
	client := s.cache.Client()

	for {
		if err := ctx.Err(); err != nil {
			return
		}

		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{publisher.StreamName, lastID},
			Block:   5 * time.Second,
			Count:   50,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			log.Printf("[websocket] stream read failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				s.broadcastMessage(msg)
			}
		}
	}
}

func (s *Server) broadcastMessage(msg redis.XMessage) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":      msg.Values["type"],
		"data":      msg.Values["data"],
		"timestamp": msg.Values["timestamp"],
	})
	if err != nil {
		log.Printf("[websocket] encoding event failed: %v", err)
		return
	}
	s.hub.Broadcast(payload)
}

// Broadcast sends a message to all connected clients
func (s *Server) Broadcast(data []byte) {
	s.hub.Broadcast(data)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
