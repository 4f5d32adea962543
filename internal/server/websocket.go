package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tablesight/tablesight/internal/recognition"
)

const (
	wsReadDeadline  = 60 * time.Second
	wsPingInterval  = 30 * time.Second
	wsWriteDeadline = 10 * time.Second
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Preview consumers run from file:// or other local ports;
		// origin is not restricted.
		return true
	},
}

// frameWebSocketHandler upgrades the connection and streams each newly
// published frame at the configured push cadence.
func (s *Server) frameWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.pushFrames(conn)
	slog.Debug("WebSocket connection closed", "remote_addr", r.RemoteAddr)
}

// pushFrames streams frames until the peer goes away. A read loop runs
// beside the push loop to service pong replies and detect the close.
func (s *Server) pushFrames(conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Error("WebSocket error", "error", err)
				}
				return
			}
			websocketMessagesTotal.WithLabelValues("received").Inc()
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()
	pushTicker := time.NewTicker(s.pushInterval)
	defer pushTicker.Stop()

	// A fresh connection gets the current frame immediately.
	var lastSent *recognition.Frame
	if frame, ok := s.source.Peek(); ok {
		if s.sendFrame(conn, frame) != nil {
			return
		}
		lastSent = frame
	}

	for {
		select {
		case <-done:
			return
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(wsWriteDeadline)); err != nil {
				return
			}
		case <-pushTicker.C:
			// Frames are immutable and republished wholesale; pointer
			// equality means nothing new since the last push.
			frame, ok := s.source.Peek()
			if !ok || frame == lastSent {
				continue
			}
			if err := s.sendFrame(conn, frame); err != nil {
				return
			}
			lastSent = frame
		}
	}
}

// sendFrame marshals and writes one frame message.
func (s *Server) sendFrame(conn *websocket.Conn, frame *recognition.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to marshal frame for WebSocket", "error", err)
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("Failed to send WebSocket frame", "error", err)
		return err
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
	framesServedTotal.WithLabelValues("websocket").Inc()
	return nil
}
