package forwarder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wh "github.com/nexpay/payhook/internal/pkg/webhook"
)

func newWebsocketSink(t *testing.T) (*httptest.Server, chan wh.Event) {
	t.Helper()
	events := make(chan wh.Event, 8)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var ev wh.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			events <- ev
		}
	}))
	t.Cleanup(srv.Close)
	return srv, events
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketForwarderDeliversEvents(t *testing.T) {
	t.Parallel()

	srv, events := newWebsocketSink(t)
	f := NewWebsocketForwarder(wsURL(srv))
	defer f.Close()

	require.NoError(t, f.Forward(context.Background(), testEvent()))
	require.NoError(t, f.Forward(context.Background(), testEvent()))

	for i := 0; i < 2; i++ {
		ev := <-events
		assert.Equal(t, "tx123", ev.TransactionID)
		assert.Equal(t, wh.StatusPaid, ev.Status)
	}
}

func TestWebsocketForwarderUnreachableSink(t *testing.T) {
	t.Parallel()

	srv, _ := newWebsocketSink(t)
	url := wsURL(srv)
	srv.Close()

	f := NewWebsocketForwarder(url)
	err := f.Forward(context.Background(), testEvent())

	var fwdErr *ForwardError
	assert.ErrorAs(t, err, &fwdErr)
}
