package monitor

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor("nightfall_test")

	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	m.SetActiveRooms(3)
	m.IncMessagesReceived("vote")
	m.IncMessagesReceived("vote")
	m.IncMessagesReceived("day_chat")
	m.IncGamesFinished("citizens")
	m.ObserveMessageLatency(2 * time.Millisecond)

	metrics := m.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OnlinePlayers))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ActiveRooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesReceived.WithLabelValues("vote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesReceived.WithLabelValues("day_chat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GamesFinished.WithLabelValues("citizens")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.MessageLatency))
}

func TestMonitor_SeparateRegistries(t *testing.T) {
	a := NewMonitor("nightfall_test")
	b := NewMonitor("nightfall_test")

	a.SetActiveRooms(5)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Metrics().ActiveRooms))
}

func TestMonitor_Handler(t *testing.T) {
	m := NewMonitor("nightfall_test")
	m.SetActiveRooms(2)
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "nightfall_test_active_rooms 2")

	resp, err = http.Get(srv.URL + "/debug/vars")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"uptime"`)
}
