package web

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	// The panel UI may be served from another origin during development.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleLive streams snapshots to a websocket client until it goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.b == nil {
		http.Error(w, "live stream unavailable", http.StatusNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, ch := s.b.Subscribe(4)
	defer s.b.Unsubscribe(id)

	// Drain client frames so pings/closes are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
