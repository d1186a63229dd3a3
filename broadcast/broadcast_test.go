package broadcast

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/nightfall/network"
	"github.com/wfunc/nightfall/session"
)

type MockConnection struct {
	mu   sync.Mutex
	sent []string
}

func (m *MockConnection) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, string(data))
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) frames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func setup(t *testing.T, ids ...string) (*ChannelBroadcaster, map[string]*MockConnection) {
	t.Helper()
	sessions := session.NewManager()
	conns := make(map[string]*MockConnection, len(ids))
	for _, id := range ids {
		conns[id] = &MockConnection{}
		sessions.Add(session.NewSession(id, conns[id]))
	}
	return NewChannelBroadcaster(sessions), conns
}

func TestBroadcastToRoom_OnlyMembers(t *testing.T) {
	b, conns := setup(t, "a", "b", "c")
	b.Join("ROOM", "a")
	b.Join("ROOM", "b")

	require.NoError(t, b.BroadcastToRoom("ROOM", network.MsgSystemMessage, "kill"))

	assert.Len(t, conns["a"].frames(), 1)
	assert.Len(t, conns["b"].frames(), 1)
	assert.Empty(t, conns["c"].frames())
	assert.JSONEq(t, `{"type":"system_message","data":"kill"}`, conns["a"].frames()[0])
}

func TestLeave_DropsEmptyChannel(t *testing.T) {
	b, _ := setup(t, "a")
	b.Join("ROOM", "a")
	b.Leave("ROOM", "a")
	b.Leave("ROOM", "a")

	assert.Empty(t, b.Members("ROOM"))
	assert.ErrorIs(t, b.BroadcastToRoom("ROOM", network.MsgSystemMessage, "x"), ErrRoomNotFound)
}

func TestSendToSession(t *testing.T) {
	b, conns := setup(t, "a", "b")

	require.NoError(t, b.SendToSession("a", network.MsgRoleAssignment, network.RoleAssignment{Role: "DOCTOR"}))
	assert.Len(t, conns["a"].frames(), 1)
	assert.Empty(t, conns["b"].frames())

	assert.ErrorIs(t, b.SendToSession("ghost", network.MsgRoleAssignment, nil), ErrSessionNotFound)
}

func TestBroadcastToAll(t *testing.T) {
	b, conns := setup(t, "a", "b")
	require.NoError(t, b.BroadcastToAll(network.MsgSystemMessage, "maintenance"))
	assert.Len(t, conns["a"].frames(), 1)
	assert.Len(t, conns["b"].frames(), 1)
}
