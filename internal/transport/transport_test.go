package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades the request and echoes every text frame back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer func() { _ = ws.Close() }()

		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSendReceive(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	received := make(chan []byte, 10)
	ch, err := Dial(context.Background(), wsURL(srv), func(data []byte) {
		received <- data
	})
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	require.NoError(t, ch.Send([]byte("hello")))

	select {
	case data := <-received:
		assert.Equal(t, "hello", string(data))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for echo")
	}
}

func TestFramesDeliveredInOrder(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	received := make(chan string, 100)
	ch, err := Dial(context.Background(), wsURL(srv), func(data []byte) {
		received <- string(data)
	})
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, ch.Send([]byte(fmt.Sprintf("frame-%d", i))))
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-received:
			assert.Equal(t, fmt.Sprintf("frame-%d", i), got)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for frame %d", i)
		}
	}
}

func TestSendAfterCloseIsLoggedNotFatal(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	ch, err := Dial(context.Background(), wsURL(srv), func([]byte) {})
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	// Must return an error, never panic.
	assert.Error(t, ch.Send([]byte("too late")))
}

func TestDoneClosesOnServerDisconnect(t *testing.T) {
	srv := echoServer(t)

	ch, err := Dial(context.Background(), wsURL(srv), func([]byte) {})
	require.NoError(t, err)

	srv.CloseClientConnections()
	srv.Close()

	select {
	case <-ch.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after server disconnect")
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := Dial(ctx, "ws://127.0.0.1:1/ws", func([]byte) {})
	assert.Error(t, err)
}

type fakeConn struct {
	frames  chan []byte
	written [][]byte
	closed  bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.frames
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return websocket.TextMessage, data, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	if f.closed {
		return errors.New("write on closed connection")
	}
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) Close() error {
	if !f.closed {
		f.closed = true
		close(f.frames)
	}
	return nil
}

func TestReadPumpStopsOnError(t *testing.T) {
	conn := &fakeConn{frames: make(chan []byte, 1)}

	var got []string
	ch := start(conn, func(data []byte) { got = append(got, string(data)) })

	conn.frames <- []byte("one")
	_ = conn.Close()

	select {
	case <-ch.Done():
	case <-time.After(time.Second):
		t.Fatal("read pump did not stop")
	}
	assert.Equal(t, []string{"one"}, got)
}
