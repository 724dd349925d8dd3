package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// orientationHub fans out orientation updates to any number of connected
// WebSocket clients. Grounded on the teacher's WebSocketManager
// register/unregister/broadcast goroutine, trimmed to this daemon's one
// stream (no access levels or event-type filters: every client here
// wants the same orientation feed).
type orientationHub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	logger  *logrus.Logger
}

func newOrientationHub(logger *logrus.Logger) *orientationHub {
	return &orientationHub{clients: make(map[chan []byte]struct{}), logger: logger}
}

func (h *orientationHub) register() chan []byte {
	ch := make(chan []byte, wsSendBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *orientationHub) unregister(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *orientationHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("api: websocket client buffer full, dropping orientation update")
		}
	}
}

// serveOrientationWS upgrades the connection and streams orientation
// updates published to the hub until the client disconnects.
func (h *orientationHub) serveOrientationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("api: websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := h.register()
	defer h.unregister(ch)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type orientationJSON struct {
	BearingRad float64 `json:"bearing_rad"`
	DecRad     float64 `json:"dec_rad"`
}

func marshalOrientation(bearingRad, decRad float64) []byte {
	data, _ := json.Marshal(orientationJSON{BearingRad: bearingRad, DecRad: decRad})
	return data
}
