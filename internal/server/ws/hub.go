// Package ws streams job-status updates to clients over a websocket. A
// single connection can watch many jobs; each user authenticates per
// subscribe frame, and updates fan out by job id.
package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// StatusMessage is one job-status update as published by workers and
// forwarded verbatim to subscribed clients.
type StatusMessage struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Model    string `json:"model,omitempty"`
}

// conn wraps a websocket connection with a write lock. gorilla/websocket
// permits only one concurrent writer per connection.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) sendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

// Hub tracks which connections are subscribed to which jobs.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*conn]struct{})}
}

func (h *Hub) subscribe(jobID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[jobID]
	if !ok {
		set = make(map[*conn]struct{})
		h.subs[jobID] = set
	}
	set[c] = struct{}{}
}

// drop removes the connection from every job it was watching.
func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for jobID, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, jobID)
		}
	}
}

// Publish delivers a status update to every subscriber of its job. Failed
// writes drop the connection; the client reconnects and re-subscribes.
func (h *Hub) Publish(msg StatusMessage) {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.subs[msg.JobID]))
	for c := range h.subs[msg.JobID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.sendJSON(msg); err != nil {
			h.drop(c)
			_ = c.ws.Close()
		}
	}
}
