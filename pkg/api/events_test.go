package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialEvents(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(url, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestBroadcasterAddRemove(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	assert.Equal(t, 0, b.Count())

	// Removing an unknown client is a no-op.
	b.Remove("nope")
	assert.Equal(t, 0, b.Count())
}

func TestEventsReceiveBroadcast(t *testing.T) {
	server, ts := newTestServer(t, &stubProvider{})

	conn := dialEvents(t, ts.URL)

	require.Eventually(t, func() bool {
		return server.broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	server.broadcaster.Broadcast("history.cleared", map[string]interface{}{"sessions": 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg EventMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "history.cleared", msg.Event)
	assert.Equal(t, int64(1), msg.Seq)
	assert.NotZero(t, msg.Timestamp)
}

func TestEventsSequenceIncrements(t *testing.T) {
	server, ts := newTestServer(t, &stubProvider{})

	conn := dialEvents(t, ts.URL)
	require.Eventually(t, func() bool {
		return server.broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	server.broadcaster.Broadcast("first", nil)
	server.broadcaster.Broadcast("second", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first, second EventMessage
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &first))

	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &second))

	assert.Equal(t, first.Seq+1, second.Seq)
}

func TestEventsAskEmitsEvent(t *testing.T) {
	server, ts := newTestServer(t, &stubProvider{})

	conn := dialEvents(t, ts.URL)
	require.Eventually(t, func() bool {
		return server.broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	resp, err := http.Post(ts.URL+"/ask", "application/json",
		bytes.NewBufferString(`{"question": "q", "session_id": "s1"}`))
	require.NoError(t, err)
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg EventMessage
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "question.answered", msg.Event)
}

func TestEventsClientDisconnect(t *testing.T) {
	server, ts := newTestServer(t, &stubProvider{})

	conn := dialEvents(t, ts.URL)
	require.Eventually(t, func() bool {
		return server.broadcaster.Count() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return server.broadcaster.Count() == 0
	}, time.Second, 10*time.Millisecond)
}
