// persistence/memory.go
package persistence

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/mahjongtable/models"
)

// Memory 内存实现，未配置数据库时使用
type Memory struct {
	records map[string]models.SessionRecord
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.SessionRecord)}
}

func (m *Memory) SaveSession(record *models.SessionRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r := *record
	r.UpdatedAt = time.Now()
	m.records[r.SessionID] = r
	return nil
}

func (m *Memory) LoadSession(sessionID string) (*models.SessionRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, ok := m.records[sessionID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &r, nil
}

func (m *Memory) RecentSessions(limit int) ([]models.SessionRecord, error) {
	m.mutex.RLock()
	records := make([]models.SessionRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	m.mutex.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *Memory) Close() error {
	return nil
}
