package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/san-kum/mapstory/internal/automation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var hello *Snapshot
	if err := s.do(r.Context(), func() { hello = s.snapshot() }); err != nil {
		s.fail(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("server: upgrade: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.log.Printf("server: client %s connected", c.id)

	s.sendTo(c, message{Type: msgHello, Client: c.id, State: hello})
	go s.writePump(c)
	s.readPump(r, c)
}

// readPump applies each incoming action and answers with a result frame.
func (s *Server) readPump(r *http.Request, c *client) {
	defer s.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Printf("server: client %s: %v", c.id, err)
			}
			return
		}
		var a automation.Action
		if err := json.Unmarshal(data, &a); err != nil {
			s.sendTo(c, message{Type: msgError, Error: "invalid action: " + err.Error()})
			continue
		}
		res, err := s.apply(r, a)
		if err != nil {
			s.sendTo(c, message{Type: msgError, Error: err.Error()})
			continue
		}
		accepted := res.Accepted
		s.sendTo(c, message{Type: msgResult, Accepted: &accepted, Error: res.Error, State: res.State})
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendTo queues m for c. A client that cannot keep up loses the frame.
func (s *Server) sendTo(c *client, m message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Printf("server: encode %s: %v", m.Type, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		s.log.Printf("server: client %s is slow, dropped %s", c.id, m.Type)
	}
}

func (s *Server) broadcast(m message) {
	data, err := json.Marshal(m)
	if err != nil {
		s.log.Printf("server: encode %s: %v", m.Type, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
	s.log.Printf("server: client %s disconnected", c.id)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.send)
	}
}

// Clients reports how many websocket clients are connected.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
