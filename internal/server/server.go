// Package server is the live viewer: an HTTP page that shows the globe
// frames and status line pushed over a websocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// MessageKind tells frames from status updates.
type MessageKind string

const (
	KindFrame  MessageKind = "frame"
	KindStatus MessageKind = "status"
)

// Message is one websocket message. Frames are sent as binary PNG data,
// status updates as JSON text.
type Message struct {
	Kind MessageKind
	Data []byte
}

type statusPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const writeWait = 5 * time.Second

// Server publishes frames and status lines to websocket clients.
type Server struct {
	router  *mux.Router
	source  chan Message
	hub     Broadcaster[Message]
	dropped atomic.Int64
}

// New returns a Server with its routes registered.
func New() *Server {
	s := &Server{source: make(chan Message, 16)}
	s.hub = NewBroadcaster[Message]("viewer", s.source,
		WithReplay(func(m Message) string { return string(m.Kind) }),
	)

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int { return s.hub.Listeners() }

// Dropped returns how many messages were dropped because the hub was
// behind.
func (s *Server) Dropped() int64 { return s.dropped.Load() }

// SetStatus publishes a status line.
func (s *Server) SetStatus(text string) {
	data, err := json.Marshal(statusPayload{Type: string(KindStatus), Text: text})
	if err != nil {
		slog.Error("encoding status", "error", err)
		return
	}
	s.publish(Message{Kind: KindStatus, Data: data})
}

// PublishFrame encodes img as PNG and publishes it.
func (s *Server) PublishFrame(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	s.publish(Message{Kind: KindFrame, Data: buf.Bytes()})
	return nil
}

// publish never blocks the caller: the scene runs on the timeline and must
// not wait for slow clients.
func (s *Server) publish(m Message) {
	select {
	case s.source <- m:
	default:
		s.dropped.Add(1)
	}
}

// Close disconnects all clients.
func (s *Server) Close() {
	s.hub.Close()
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("viewer listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 65536,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	slog.Info("viewer connected", "remote", r.RemoteAddr)

	sub := s.hub.Subscribe()
	done := make(chan struct{})
	go s.reader(conn, done)
	s.writer(conn, sub, done)
	s.hub.CancelSubscription(sub)
	_ = conn.Close()
	slog.Info("viewer disconnected", "remote", r.RemoteAddr)
}

// reader discards client messages and closes done when the connection
// ends.
func (s *Server) reader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}
	}
}

func (s *Server) writer(conn *websocket.Conn, sub <-chan Message, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case m, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
					time.Now().Add(writeWait))
				return
			}
			kind := websocket.TextMessage
			if m.Kind == KindFrame {
				kind = websocket.BinaryMessage
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(kind, m.Data); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>circuitglobe</title>
<style>
body { background: #111; color: #eee; font-family: sans-serif; text-align: center; }
#status { margin-top: 1em; }
</style>
</head>
<body>
<img id="globe" alt="globe">
<div id="status"></div>
<script>
const img = document.getElementById("globe");
const status = document.getElementById("status");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
  if (typeof ev.data === "string") {
    const msg = JSON.parse(ev.data);
    if (msg.type === "status") status.textContent = msg.text;
    return;
  }
  const url = URL.createObjectURL(ev.data);
  img.onload = () => URL.revokeObjectURL(url);
  img.src = url;
};
</script>
</body>
</html>
`
