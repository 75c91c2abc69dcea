package sync

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeDeliversEventsUntilCancelled(t *testing.T) {
	hub := NewHub(nil)
	srv := NewServer("", hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan RecordEvent, 4)
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, ln.Addr().String(), func(ev RecordEvent) { events <- ev })
	}()

	require.Eventually(t, func() bool { return hub.Stats().TCPClients == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.BroadcastJSON(RecordEvent{Type: RecordDeleted, RecordID: 9})

	select {
	case ev := <-events:
		assert.Equal(t, RecordDeleted, ev.Type)
		assert.EqualValues(t, 9, ev.RecordID)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("subscribe did not return")
	}
}

func TestSubscribeDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	err = Subscribe(context.Background(), addr, func(RecordEvent) {})
	assert.Error(t, err)
}
