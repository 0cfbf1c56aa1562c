package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/foxseedlab/voicesatellite/internal/pipeline"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 64 * 1024
)

type WebSocketConfig struct {
	URL        string
	Token      string
	SampleRate int
}

type WebSocketClient struct {
	cfg    WebSocketConfig
	dialer *websocket.Dialer

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func NewWebSocketClient(cfg WebSocketConfig) *WebSocketClient {
	return &WebSocketClient{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

func (c *WebSocketClient) Connect(ctx context.Context) error {
	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return fmt.Errorf("dial pipeline control channel: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	prev := c.conn
	c.conn = conn
	c.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.Info("pipeline control channel connected", "url", c.cfg.URL, "remote_addr", conn.RemoteAddr().String())
	return nil
}

func (c *WebSocketClient) RequestStart(ctx context.Context) error {
	return c.write(ctx, message{Type: messageTypeRequestStart, SampleRate: c.cfg.SampleRate})
}

func (c *WebSocketClient) NotifyStop(ctx context.Context) error {
	return c.write(ctx, message{Type: messageTypeStop})
}

func (c *WebSocketClient) Serve(ctx context.Context, handler pipeline.Handler) error {
	conn := c.current()
	if conn == nil {
		return pipeline.ErrNotConnected
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.pingLoop(serveCtx, conn)
	go func() {
		<-serveCtx.Done()
		_ = conn.Close()
	}()

	for {
		frameType, data, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read pipeline control channel: %w", err)
		}
		msg, err := decodeMessage(frameType, data)
		if err != nil {
			slog.Warn("ignoring malformed pipeline message", "error", err, "bytes", len(data))
			continue
		}
		c.dispatch(ctx, conn, msg, handler)
	}
}

func (c *WebSocketClient) Close() error {
	conn := c.current()
	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	c.writeMu.Unlock()
	c.drop(conn)
	return nil
}

func (c *WebSocketClient) dispatch(ctx context.Context, conn *websocket.Conn, msg message, handler pipeline.Handler) {
	switch msg.Type {
	case messageTypeStart:
		addr := startAddress(msg.Address, conn.RemoteAddr())
		handler.Start(addr, msg.Port)
	case messageTypeEvent:
		handler.HandleEvent(ctx, msg.record())
	default:
		slog.Debug("ignoring pipeline message", "type", msg.Type)
	}
}

// startAddress prefers an explicit address from the server and falls back to
// the host the control channel is connected to.
func startAddress(explicit string, remote net.Addr) netip.Addr {
	if explicit != "" {
		addr, err := netip.ParseAddr(explicit)
		if err != nil {
			slog.Warn("pipeline sent unparsable address", "address", explicit, "error", err)
			return netip.Addr{}
		}
		return addr
	}
	if tcp, ok := remote.(*net.TCPAddr); ok {
		return tcp.AddrPort().Addr().Unmap()
	}
	return netip.Addr{}
}

func (c *WebSocketClient) write(ctx context.Context, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn := c.current()
	if conn == nil {
		return pipeline.ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(writeDeadline(ctx, time.Now())); err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s message: %w", msg.Type, err)
	}
	return nil
}

// writeDeadline is writeWait from now, or the caller's deadline when that
// comes first.
func writeDeadline(ctx context.Context, now time.Time) time.Time {
	deadline := now.Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *WebSocketClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				slog.Debug("pipeline ping failed", "error", err)
				return
			}
		}
	}
}

func (c *WebSocketClient) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *WebSocketClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()
}
