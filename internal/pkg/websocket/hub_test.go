package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campus/internal/app/models/dto"
)

func TestSeatFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		initial := dto.SeatUpdate{SectionID: 5, Enrolled: 1, Capacity: 2, Available: 1}
		assert.NoError(t, hub.Serve(w, r, 5, 99, initial))
	}))
	defer srv.Close()

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var got dto.SeatUpdate
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 1, got.Available)

	require.Eventually(t, func() bool { return hub.ClientsCount(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishSeats(dto.SeatUpdate{SectionID: 6, Enrolled: 1, Capacity: 1})
	hub.PublishSeats(dto.SeatUpdate{SectionID: 5, Enrolled: 2, Capacity: 2, Available: 0})

	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, int64(5), got.SectionID, "updates of other sections are not delivered")
	assert.Equal(t, 2, got.Enrolled)
	assert.Equal(t, 0, got.Available)
}

func TestHubShutdownReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		hub.Run(ctx)
	}()

	served := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- hub.Serve(w, r, 7, 1, nil)
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, <-served)
	require.Eventually(t, func() bool { return hub.ClientsCount(7) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.ClientsCount(7))

	// The peer is closed by the hub, so its read fails.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	// A client leaving after shutdown does not block.
	left := make(chan struct{})
	go func() {
		defer close(left)
		hub.leave(&Client{hub: hub, sectionID: 7})
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after shutdown")
	}

	// New subscriptions are refused.
	late, _, err := gws.DefaultDialer.Dial(url, nil)
	if err == nil {
		defer late.Close()
	}
	assert.ErrorIs(t, <-served, ErrHubStopped)
}
