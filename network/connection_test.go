package network

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closingServer upgrades each request, queues frames and closes straight away.
func closingServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewWSConnection(ws, 8)
		for _, f := range frames {
			_ = c.Send([]byte(f))
		}
		_ = c.Close()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWSConnection_FlushesQueueOnClose(t *testing.T) {
	frames := []string{`{"type":"system_message","data":"server_shutdown"}`, `{"type":"system_message","data":"bye"}`}
	srv := closingServer(t, frames...)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	for i := 0; i < 20; i++ {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			client, _, err := websocket.DefaultDialer.Dial(url, nil)
			require.NoError(t, err)
			defer client.Close()

			for _, want := range frames {
				_, data, err := client.ReadMessage()
				require.NoError(t, err)
				assert.Equal(t, want, string(data))
			}
			_, _, err = client.ReadMessage()
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
		})
	}
}

func TestWSConnection_SendAfterClose(t *testing.T) {
	done := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			done <- err
			return
		}
		c := NewWSConnection(ws, 1)
		_ = c.Close()
		done <- c.Send([]byte("late"))
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()
	assert.ErrorIs(t, <-done, ErrConnectionClosed)
}
