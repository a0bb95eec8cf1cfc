package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/api/ws/:topic", hub.ServeTopic)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return hub, ts
}

func wsURL(ts *httptest.Server, topic string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/" + topic
}

func TestPublishReachesTopicSubscribers(t *testing.T) {
	hub, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, TopicShowers), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(TopicShowers) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount(TopicQueue))

	hub.Publish(TopicQueue, "guest_added", nil)
	hub.Publish(TopicShowers, "shower_assigned", map[string]string{"shower_id": "1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "shower_assigned", ev.EventType)
	assert.Equal(t, TopicShowers, ev.Topic)
	assert.NotEmpty(t, ev.EventID)
}

func TestUnknownTopicRejected(t *testing.T) {
	_, ts := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "nope"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, TopicQueue), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount(TopicQueue) == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(TopicQueue) == 0 }, 2*time.Second, 10*time.Millisecond)
}
