package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/nightfall/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent [][]byte
}

func (m *MockConnection) Send(data []byte) error {
	m.sent = append(m.sent, data)
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	// Test Add
	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("session1", &MockConnection{}))
	manager.Add(NewSession("session2", &MockConnection{}))

	if got := len(manager.All()); got != 2 {
		t.Errorf("Expected 2 sessions, got %d", got)
	}
}

func TestSession_RoomCode(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	if sess.RoomCode() != "" {
		t.Fatalf("Expected a new session to be outside any room, got %q", sess.RoomCode())
	}

	sess.SetRoomCode("ABCD")
	if sess.RoomCode() != "ABCD" {
		t.Errorf("Expected room code ABCD, got %q", sess.RoomCode())
	}
}

func TestSession_Send(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)

	if err := sess.Send([]byte("hello")); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(conn.sent) != 1 || string(conn.sent[0]) != "hello" {
		t.Errorf("Expected the frame to reach the connection, got %q", conn.sent)
	}
}
