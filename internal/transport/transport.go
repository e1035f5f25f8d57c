// Package transport owns the duplex websocket connection. It exposes a send
// function and a single inbound dispatch callback; reconnection policy, if
// any, belongs to the caller.
package transport

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// wsConn is the subset of *websocket.Conn the channel uses, split out so
// tests can substitute a fake.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Channel is one logical connection for the lifetime of the component.
// Inbound frames are delivered to the onMessage callback in transport order,
// from a single goroutine, with no reordering and no dedup.
type Channel struct {
	conn      wsConn
	onMessage func([]byte)

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool

	done chan struct{}
}

// Dial connects to url and starts the read pump. onMessage is the sole
// inbound dispatch point and must not be nil.
func Dial(ctx context.Context, url string, onMessage func([]byte)) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return start(conn, onMessage), nil
}

func start(conn wsConn, onMessage func([]byte)) *Channel {
	c := &Channel{
		conn:      conn,
		onMessage: onMessage,
		done:      make(chan struct{}),
	}
	go c.readPump()
	return c
}

// Send writes one frame. Failures on a closed or broken connection are
// logged and reported, never panicked, so a stale send cannot take down the
// caller.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		log.Printf("transport: send on closed channel dropped")
		return websocket.ErrCloseSent
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("transport: send failed: %v", err)
		return err
	}
	return nil
}

// Close tears down the connection and waits for the read pump to stop. It is
// safe to call more than once and after the connection has already dropped.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

// Done is closed when the read pump exits, whether by Close or by a
// connection error.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

func (c *Channel) readPump() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.closed = true
			c.mu.Unlock()

			if !closed && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("transport: connection lost: %v", err)
			}
			return
		}
		c.onMessage(data)
	}
}
