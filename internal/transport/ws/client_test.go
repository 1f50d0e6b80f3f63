package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// echoServer echoes text messages; a message "bye" closes the connection.
func echoServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(data) == "bye" {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func read(t *testing.T, c *Client) ([]byte, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.ReadMessage(ctx)
}

func TestClient_RoundTrip(t *testing.T) {
	t.Parallel()

	c := dial(t, echoServer(t))
	require.NoError(t, c.WriteMessage([]byte(`{"type":"action","content":"mf"}`)))
	require.NoError(t, c.WriteMessage([]byte(`{"type":"action","content":"nt"}`)))

	got, err := read(t, c)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"action","content":"mf"}`, string(got))
	got, err = read(t, c)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"action","content":"nt"}`, string(got))
}

func TestClient_PeerCloseIsAReadError(t *testing.T) {
	t.Parallel()

	c := dial(t, echoServer(t))
	require.NoError(t, c.WriteMessage([]byte("bye")))
	_, err := read(t, c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClosed)
}

func TestClient_ReadHonoursContext(t *testing.T) {
	t.Parallel()

	c := dial(t, echoServer(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ReadMessage(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c := dial(t, echoServer(t))
	_ = c.Close()
	assert.NoError(t, c.Close())

	require.ErrorIs(t, c.WriteMessage([]byte("x")), ErrClosed)
	_, err := c.ReadMessage(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestClient_QueueFull(t *testing.T) {
	t.Parallel()

	c := &Client{out: make(chan []byte, 1), stop: make(chan struct{})}
	require.NoError(t, c.WriteMessage([]byte("a")))
	require.ErrorIs(t, c.WriteMessage([]byte("b")), ErrQueueFull)
}

func TestDial_Fails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), Options{})
	require.Error(t, err)
}
