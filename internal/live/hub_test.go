package live

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

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func fakeClient(h *Hub, room string, buffer int) *Client {
	return &Client{hub: h, room: room, send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHub_JoinLeave(t *testing.T) {
	h := startHub(t)
	c := fakeClient(h, "s1", 1)

	require.True(t, h.join(c))
	assert.Equal(t, 1, h.Subscribers("s1"))

	h.leave(c)
	require.Eventually(t, func() bool { return h.Subscribers("s1") == 0 }, time.Second, time.Millisecond)

	_, open := <-c.send
	assert.False(t, open, "leaving closes the send channel")
}

func TestHub_BroadcastScopedToRoom(t *testing.T) {
	h := startHub(t)
	a := fakeClient(h, "s1", 4)
	b := fakeClient(h, "s1", 4)
	other := fakeClient(h, "s2", 4)
	for _, c := range []*Client{a, b, other} {
		require.True(t, h.join(c))
	}

	require.True(t, h.Broadcast("s1", []byte(`{"n":1}`)))

	assert.Equal(t, `{"n":1}`, string(receive(t, a)))
	assert.Equal(t, `{"n":1}`, string(receive(t, b)))
	select {
	case msg := <-other.send:
		t.Fatalf("unexpected message in other room: %s", msg)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := fakeClient(h, "s1", 1)
	require.True(t, h.join(slow))

	require.True(t, h.Broadcast("s1", []byte("1")))
	require.True(t, h.Broadcast("s1", []byte("2")))

	require.Eventually(t, func() bool { return h.Subscribers("s1") == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, "1", string(<-slow.send))
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	c := fakeClient(h, "s1", 1)
	require.True(t, h.join(c))

	cancel()
	require.NoError(t, <-done)

	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, h.join(fakeClient(h, "s1", 1)), "join after stop fails")
}

func TestHub_Serve(t *testing.T) {
	h := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Serve(w, r, "s1", []byte("hello")); err != nil {
			t.Errorf("serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg))

	require.Eventually(t, func() bool { return h.Subscribers("s1") == 1 }, time.Second, time.Millisecond)
	require.True(t, h.Broadcast("s1", []byte("update")))

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "update", string(msg))
}
