package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 32
)

// StreamHub fans swap snapshots out to websocket subscribers. It is a
// service.Reporter, so it can be fed directly by the orchestrator or by a
// Redis event subscription.
type StreamHub struct {
	upgrader websocket.Upgrader
	current  func() (model.SwapRecord, bool)

	mu      sync.RWMutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	send chan model.SwapRecord
}

// NewStreamHub takes the source of the current snapshot, which is replayed to
// every new subscriber. It may be nil.
func NewStreamHub(current func() (model.SwapRecord, bool)) *StreamHub {
	return &StreamHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		current: current,
		clients: make(map[*streamClient]struct{}),
	}
}

// Report broadcasts rec. Subscribers that cannot keep up are disconnected.
func (h *StreamHub) Report(_ context.Context, rec model.SwapRecord) {
	h.mu.RLock()
	var slow []*streamClient
	for cl := range h.clients {
		select {
		case cl.send <- rec:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		logger.Warn("dropping slow stream subscriber", "remote", cl.conn.RemoteAddr().String())
		h.remove(cl)
	}
}

func (h *StreamHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *StreamHub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := &streamClient{conn: conn, send: make(chan model.SwapRecord, clientSendSize)}
	if h.current != nil {
		if rec, ok := h.current(); ok {
			cl.send <- rec
		}
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(cl)
	h.readLoop(cl)
}

func (h *StreamHub) remove(cl *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// readLoop only services control frames; subscribers never send data.
func (h *StreamHub) readLoop(cl *streamClient) {
	defer func() {
		h.remove(cl)
		cl.conn.Close()
	}()
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHub) writeLoop(cl *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case rec, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(rec); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
