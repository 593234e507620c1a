package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/mahjongtable/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	Sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.Sent = append(m.Sent, msgID)
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

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByUsername(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.SetUsername("alice")
	sess2 := NewSession("session2", &MockConnection{})
	sess2.SetUsername("CPU-2")

	manager.Add(sess1)
	manager.Add(sess2)

	found, ok := manager.GetByUsername("alice")
	if !ok || found != sess1 {
		t.Errorf("Expected to find alice's session, got %v", found)
	}
	if _, ok := manager.GetByUsername("bob"); ok {
		t.Error("Should not find a session for an unknown player")
	}
	if len(manager.All()) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(manager.All()))
	}
}

func TestSession_SendAndActivity(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("test_session", conn)
	before := sess.LastActive()

	time.Sleep(time.Millisecond)
	if err := sess.SendJSON(network.MsgTypeJoinGame, map[string]string{"username": "alice"}); err != nil {
		t.Fatalf("SendJSON failed: %v", err)
	}
	if len(conn.Sent) != 1 || conn.Sent[0] != network.MsgTypeJoinGame {
		t.Errorf("Unexpected sent packets: %v", conn.Sent)
	}
	if !sess.LastActive().After(before) {
		t.Error("Send should refresh LastActive")
	}

	sess.Received()
	sess.Received()
	if sess.ReceivedCount() != 2 {
		t.Errorf("Expected 2 received packets, got %d", sess.ReceivedCount())
	}
}
