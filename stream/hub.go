package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/herd/config"
	"github.com/pthm-cable/herd/game"
)

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 3 * time.Second
)

// Status is the JSON body served at GET /.
type Status struct {
	Tick       uint64 `json:"tick"`
	LiveSheep  int    `json:"live_sheep"`
	TotalSheep int    `json:"total_sheep"`
	Clients    int    `json:"clients"`
	Published  uint64 `json:"published"`
	Dropped    uint64 `json:"dropped"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans published frames out to websocket clients. A client whose buffer
// is full misses the frame rather than stalling the simulation.
type Hub struct {
	publishEvery int
	clientBuffer int
	upgrader     websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	last      Status
	published uint64
	dropped   uint64
}

// NewHub creates a hub from stream settings. Non-positive values fall back to 1.
func NewHub(cfg config.StreamConfig) *Hub {
	return &Hub{
		publishEvery: max(cfg.PublishEvery, 1),
		clientBuffer: max(cfg.ClientBuffer, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish sends a frame of w when its tick is due. It never blocks.
func (h *Hub) Publish(w *game.World) {
	if w.Tick()%uint64(h.publishEvery) != 0 {
		return
	}
	h.PublishFrame(NewFrame(w))
}

// PublishFrame encodes f once and queues it for every client.
func (h *Hub) PublishFrame(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Error("failed to encode frame", "tick", f.Tick, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last.Tick = f.Tick
	h.last.LiveSheep = f.LiveSheep
	h.last.TotalSheep = f.TotalSheep
	h.published++
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

// Status returns the latest published counters.
func (h *Hub) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.last
	s.Clients = len(h.clients)
	s.Published = h.published
	s.Dropped = h.dropped
	return s
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, h.clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// CloseClients sends a going-away close frame to every client and closes its
// connection. Each handler then unregisters its client as its read fails.
func (h *Hub) CloseClients() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(writeWait)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
		c.conn.Close()
	}
}

// Router returns the HTTP routes: GET / for status and GET /ws for frames.
func (h *Hub) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", h.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/ws", h.handleWebsocket).Methods(http.MethodGet)
	return router
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(h.Status())
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := h.register(conn)
	slog.Info("spectator connected", "remote", r.RemoteAddr, "clients", h.ClientCount())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for data := range c.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	// Reads only detect the close; spectators send nothing meaningful
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(c)
	<-done
	conn.Close()
	slog.Info("spectator disconnected", "remote", r.RemoteAddr, "clients", h.ClientCount())
}

// Serve listens on addr until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stream listen: %w", err)
	}
	return h.serve(ctx, ln)
}

// serve owns ln. On cancel it shuts the server down and then closes the
// websocket connections, which Shutdown does not track once hijacked.
func (h *Hub) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("stream listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("stream server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		h.CloseClients()
		if err != nil {
			return fmt.Errorf("stream shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stream server: %w", err)
		}
		return nil
	}
}
