/* ws.go
 * Contains the WebSocket endpoint that hands the competition broadcast stream to a
 * connected viewer. Each connection is one broker subscriber; a missed frame is
 * recovered by re-querying the REST endpoints, never replayed here
 */

package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"livescore/api/notify"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers connect from whatever origin serves the front end
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SubscribeHandler upgrades the connection and streams competition messages as JSON
// frames of the form {"event": kind, "data": payload} until the client disconnects.
func (s *Server) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}

	messages, cancel := s.notifier.Subscribe(notify.TopicCompetition)
	defer cancel()

	// Reader: discard client frames, notice the disconnect
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
