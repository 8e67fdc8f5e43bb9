package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversOnlyToAddressedUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	alice, _, err := websocket.DefaultDialer.Dial(base+"?user=alice", nil)
	require.NoError(t, err)
	defer alice.Close()
	bob, _, err := websocket.DefaultDialer.Dial(base+"?user=bob", nil)
	require.NoError(t, err)
	defer bob.Close()

	require.Eventually(t, func() bool {
		return hub.Connections("alice") == 1 && hub.Connections("bob") == 1
	}, time.Second, 10*time.Millisecond)

	assert.True(t, hub.Publish("alice", Event{Type: "notification", Data: map[string]string{"title": "Complaint Update"}}))

	_ = alice.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := alice.ReadMessage()
	require.NoError(t, err)
	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "Complaint Update", got.Data["title"])

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub([]string{"https://portal.example"}, nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "alice")
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublishWithoutSubscribersIsHarmless(t *testing.T) {
	var nilHub *Hub
	assert.False(t, nilHub.Publish("alice", Event{Type: "x"}))
	hub := NewHub(nil, nil)
	assert.False(t, hub.Publish("", Event{Type: "x"}))
}
