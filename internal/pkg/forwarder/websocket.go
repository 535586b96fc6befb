package forwarder

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	wh "github.com/nexpay/payhook/internal/pkg/webhook"
)

// WebsocketForwarder pushes normalized events over a persistent websocket
// connection. The connection is dialed lazily on first use and redialed after
// a write failure.
type WebsocketForwarder struct {
	url    string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebsocketForwarder creates a forwarder that connects to url on demand.
func NewWebsocketForwarder(url string) *WebsocketForwarder {
	return &WebsocketForwarder{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Forward writes the event as a JSON text message. A failed write drops the
// connection and retries once on a fresh one before giving up.
func (f *WebsocketForwarder) Forward(ctx context.Context, ev *wh.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.writeLocked(ctx, ev); err == nil {
		return nil
	}
	f.closeLocked()
	if err := f.writeLocked(ctx, ev); err != nil {
		f.closeLocked()
		return &ForwardError{Err: err}
	}
	return nil
}

// Close shuts the underlying connection down.
func (f *WebsocketForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
	return nil
}

func (f *WebsocketForwarder) writeLocked(ctx context.Context, ev *wh.Event) error {
	if f.conn == nil {
		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			return err
		}
		f.conn = conn
	}
	if deadline, ok := ctx.Deadline(); ok {
		f.conn.SetWriteDeadline(deadline)
	} else {
		f.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}
	return f.conn.WriteJSON(ev)
}

func (f *WebsocketForwarder) closeLocked() {
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}
