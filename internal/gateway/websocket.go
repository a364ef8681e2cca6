package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/riftforge/moba-server/internal/transport"
)

const (
	maxConnectionsTotal = 2000
	maxConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return isAllowedOrigin(r.Header.Get("Origin"))
	},
}

// isAllowedOrigin accepts every origin; no origin allow-list is
// configured.
func isAllowedOrigin(origin string) bool {
	return true
}

// wsConn adapts a gorilla/websocket connection to transport.Conn. Per
// gorilla's concurrency contract (one reader, one writer at a time),
// Send serializes writers with a mutex and Recv is only ever called
// from the connection's own read-pump goroutine.
type wsConn struct {
	conn     *websocket.Conn
	playerID string
	ip       string

	writeMu sync.Mutex
}

// IP returns the connection's source address, used to release its
// per-IP connection-count slot on close.
func (c *wsConn) IP() string { return c.ip }

func (c *wsConn) PlayerID() string { return c.playerID }

func (c *wsConn) Send(f transport.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Recv(ctx context.Context) (transport.Frame, error) {
	if err := ctx.Err(); err != nil {
		return transport.Frame{}, err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return transport.Frame{}, io.EOF
		}
		return transport.Frame{}, err
	}
	var f transport.Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return transport.Frame{}, err
	}
	return f, nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// WSTransport implements transport.Transport over an http.Handler that
// the gateway's router mounts at /ws; Accept hands off each upgraded
// connection as it arrives.
type WSTransport struct {
	limiter *IPRateLimiter

	mu        sync.Mutex
	perIP     map[string]int
	total     int
	accepted  chan *wsConn
	closed    chan struct{}
	closeOnce sync.Once
}

func NewWSTransport(limiter *IPRateLimiter) *WSTransport {
	return &WSTransport{
		limiter:  limiter,
		perIP:    make(map[string]int),
		accepted: make(chan *wsConn),
		closed:   make(chan struct{}),
	}
}

var errTransportClosed = errors.New("gateway: transport closed")

func (t *WSTransport) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case c := <-t.accepted:
		return c, nil
	case <-t.closed:
		return nil, errTransportClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *WSTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

// ServeHTTP upgrades an inbound request and publishes the resulting
// connection to Accept; it is mounted at /ws by the router.
func (t *WSTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)

	t.mu.Lock()
	if t.total >= maxConnectionsTotal {
		t.mu.Unlock()
		recordConnectionRejected("ws_total_limit")
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	if t.perIP[ip] >= maxConnectionsPerIP {
		t.mu.Unlock()
		recordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many connections from your IP", http.StatusTooManyRequests)
		return
	}
	t.total++
	t.perIP[ip]++
	t.mu.Unlock()
	setWSConnections(t.total)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.release(ip)
		return
	}

	c := &wsConn{conn: conn, ip: ip}
	select {
	case t.accepted <- c:
	case <-t.closed:
		conn.Close()
		t.release(ip)
	}
}

// release must be called exactly once per successfully counted
// connection once it closes, from the gateway's connection-handling
// goroutine.
func (t *WSTransport) release(ip string) {
	t.mu.Lock()
	t.total--
	t.perIP[ip]--
	if t.perIP[ip] <= 0 {
		delete(t.perIP, ip)
	}
	total := t.total
	t.mu.Unlock()
	setWSConnections(total)
}

// Release exposes release to the server's per-connection goroutine,
// which knows the connection's source IP from the original request.
func (t *WSTransport) Release(ip string) { t.release(ip) }

// Connections reports the current total connection count, for the
// health endpoint.
func (t *WSTransport) Connections() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
