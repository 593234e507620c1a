// session/session.go
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/mahjongtable/network"
)

// Session 是一条状态同步连接，服务端与客户端共用
type Session struct {
	ID         string
	Conn       network.Connection
	username   string
	CreatedAt  time.Time
	lastActive time.Time
	received   int64
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

// SendJSON marshals v and sends it as one packet.
func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(msgID, data)
}

// Touch marks the session active now.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

// Received counts one inbound packet.
func (s *Session) Received() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.received++
	s.lastActive = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) ReceivedCount() int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.received
}

func (s *Session) SetUsername(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.username = name
}

func (s *Session) GetUsername() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.username
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByUsername finds the session a player joined with, used for reconnects.
func (m *Manager) GetByUsername(name string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, session := range m.sessions {
		if session.GetUsername() == name {
			return session, true
		}
	}
	return nil, false
}

// All returns a snapshot of every session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
