// services/session_service.go
package services

import (
	"time"

	"github.com/wfunc/mahjongtable/models"
	"github.com/wfunc/mahjongtable/persistence"
)

const DefaultRecentLimit = 20

type SessionService struct {
	db persistence.Database
}

func NewSessionService(db persistence.Database) *SessionService {
	return &SessionService{db: db}
}

func (s *SessionService) Get(sessionID string) (*models.SessionRecord, error) {
	return s.db.LoadSession(sessionID)
}

// Recent 最近的会话，limit <= 0 时使用默认值
func (s *SessionService) Recent(limit int) ([]models.SessionRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.db.RecentSessions(limit)
}

// Summary 汇总最近会话的建场情况
func (s *SessionService) Summary(limit int) (models.SessionSummary, error) {
	records, err := s.Recent(limit)
	if err != nil {
		return models.SessionSummary{}, err
	}

	var (
		summary models.SessionSummary
		latency time.Duration
	)
	summary.Sessions = len(records)
	for i := range records {
		summary.EventsReceived += records[i].EventsReceived
		if records[i].Initialized() {
			summary.Initialized++
			latency += records[i].InitLatency()
		}
	}
	if summary.Initialized > 0 {
		summary.AvgInitLatency = latency / time.Duration(summary.Initialized)
	}
	return summary, nil
}
