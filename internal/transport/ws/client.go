// Package ws is the websocket transport to the simulator.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("ws: client closed")
	// ErrQueueFull is returned when the outbound queue cannot take another
	// message.
	ErrQueueFull = errors.New("ws: outbound queue full")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultQueueSize    = 256
)

// Options tunes a Client.
type Options struct {
	// WriteTimeout bounds every write. Defaults to 5s.
	WriteTimeout time.Duration
	// QueueSize is the outbound queue capacity. Defaults to 256.
	QueueSize int
	Dialer    *websocket.Dialer
	Header    http.Header
	Logger    *slog.Logger
}

type inbound struct {
	data []byte
	err  error
}

// Client is a websocket connection with a reader goroutine feeding
// ReadMessage and a writer goroutine draining a bounded outbound queue.
type Client struct {
	conn         *websocket.Conn
	logger       *slog.Logger
	writeTimeout time.Duration

	in  chan inbound
	out chan []byte

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
	err    error
}

// Dial connects to url.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}
	return newClient(conn, opts), nil
}

func newClient(conn *websocket.Conn, opts Options) *Client {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Client{
		conn:         conn,
		logger:       opts.Logger,
		writeTimeout: opts.WriteTimeout,
		in:           make(chan inbound),
		out:          make(chan []byte, opts.QueueSize),
		stop:         make(chan struct{}),
	}
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()
	return c
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	for {
		_, data, err := c.conn.ReadMessage()
		select {
		case c.in <- inbound{data: data, err: err}:
		case <-c.stop:
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.fail(fmt.Errorf("ws: write: %w", err))
				return
			}
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
		c.logger.Warn("websocket failed", slog.Any("error", err))
	}
}

// ReadMessage returns the next inbound message. Read failures, including
// the peer closing the connection, are returned as errors and are final.
func (c *Client) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.stop:
		return nil, ErrClosed
	case m := <-c.in:
		if m.err != nil {
			return nil, fmt.Errorf("ws: read: %w", m.err)
		}
		return m.data, nil
	}
}

// WriteMessage queues data for the writer goroutine. It never blocks; a
// full queue or an earlier write failure is reported as an error.
func (c *Client) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.err != nil {
		return c.err
	}
	select {
	case c.out <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close sends a close frame, closes the connection and waits for both
// goroutines. Queued messages that were not yet written are dropped.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stop)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}
