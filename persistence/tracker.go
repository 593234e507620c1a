// persistence/tracker.go
package persistence

import (
	"sync"
	"time"

	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/models"
)

// SessionTracker 把一次观看会话的进展写入 Database。
// 它同时作为状态同步的 Listener 和场景的 Observer 使用。
type SessionTracker struct {
	db     Database
	record models.SessionRecord
	mutex  sync.Mutex
}

func NewSessionTracker(db Database, sessionID, username string) *SessionTracker {
	t := &SessionTracker{
		db: db,
		record: models.SessionRecord{
			SessionID: sessionID,
			Username:  username,
			StartedAt: time.Now(),
		},
	}
	t.save()
	return t
}

// EventHandled counts one inbound event.
func (t *SessionTracker) EventHandled(name string, at time.Time, lifecycle string) {
	t.mutex.Lock()
	t.record.EventsReceived++
	t.record.LastEvent = name
	t.mutex.Unlock()
	t.save()
}

func (t *SessionTracker) SceneBuilt(wallTiles, handTiles int) {
	t.mutex.Lock()
	now := time.Now()
	t.record.InitializedAt = &now
	t.record.WallTiles = wallTiles
	t.record.HandTiles = handTiles
	t.mutex.Unlock()
	t.save()
}

func (t *SessionTracker) SceneFailed()  {}
func (t *SessionTracker) SceneIgnored() {}

func (t *SessionTracker) Record() models.SessionRecord {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.record
}

// save 失败只记录日志，不影响场景
func (t *SessionTracker) save() {
	record := t.Record()
	if err := t.db.SaveSession(&record); err != nil {
		logger.Log.Warnf("Failed to save session %s: %v", record.SessionID, err)
	}
}
