// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/mahjongtable/models"
)

// Database 会话记录存储接口
type Database interface {
	SaveSession(record *models.SessionRecord) error
	LoadSession(sessionID string) (*models.SessionRecord, error)
	RecentSessions(limit int) ([]models.SessionRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
