package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPClientReceivesRecordEvents(t *testing.T) {
	hub := NewHub(nil)
	srv := NewServer("", hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	welcome, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, welcome, `"type":"welcome"`)
	assert.Contains(t, welcome, `"clients":1`)

	require.Eventually(t, func() bool { return hub.Stats().TCPClients == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.BroadcastJSON(RecordEvent{Type: RecordUpdated, RecordID: 3, ChaptersRead: 12})

	line, err := r.ReadString('\n')
	require.NoError(t, err)

	var ev RecordEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, RecordUpdated, ev.Type)
	assert.EqualValues(t, 3, ev.RecordID)
	assert.Equal(t, 12, ev.ChaptersRead)

	require.NoError(t, srv.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestWebSocketClientReceivesRecordEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)

	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	ts := httptest.NewServer(r)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, welcome, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(welcome), "websocket")

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.BroadcastJSON(RecordEvent{Type: RecordDeleted, RecordID: 9})

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"record.deleted"`)
	assert.Contains(t, string(msg), `"record_id":9`)
}

func TestWebSocketClientsJoinDuringBroadcasts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)

	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	ts := httptest.NewServer(r)
	defer ts.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.BroadcastJSON(RecordEvent{Type: RecordUpdated, RecordID: 1})
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()
	defer func() {
		close(stop)
		wg.Wait()
	}()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conns := make([]*websocket.Conn, 0, 50)
	defer func() {
		for _, ws := range conns {
			_ = ws.Close()
		}
	}()

	for i := 0; i < 50; i++ {
		ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		conns = append(conns, ws)
		_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

		// the welcome always arrives first and intact
		_, first, err := ws.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(first), `"type":"welcome"`)
	}
}

func TestCloseAllDropsClients(t *testing.T) {
	hub := NewHub(nil)
	a, b := net.Pipe()
	defer b.Close()

	hub.Add(a)
	assert.Equal(t, 1, hub.Stats().TCPClients)

	hub.CloseAll()
	assert.Equal(t, Stats{}, hub.Stats())
}
