// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormSessionRecord 会话记录表
type GormSessionRecord struct {
	gorm.Model
	SessionID      string `gorm:"uniqueIndex;not null"`
	Username       string `gorm:"index"`
	StartedAt      time.Time
	InitializedAt  *time.Time
	WallTiles      int    `gorm:"default:0"`
	HandTiles      int    `gorm:"default:0"`
	EventsReceived int64  `gorm:"default:0"`
	LastEvent      string `gorm:"size:64"`
}

func (GormSessionRecord) TableName() string {
	return "view_sessions"
}

func (g *GormSessionRecord) Record() SessionRecord {
	return SessionRecord{
		SessionID:      g.SessionID,
		Username:       g.Username,
		StartedAt:      g.StartedAt,
		InitializedAt:  g.InitializedAt,
		WallTiles:      g.WallTiles,
		HandTiles:      g.HandTiles,
		EventsReceived: g.EventsReceived,
		LastEvent:      g.LastEvent,
		UpdatedAt:      g.UpdatedAt,
	}
}

// Apply copies the mutable fields of r onto the model.
func (g *GormSessionRecord) Apply(r *SessionRecord) {
	g.SessionID = r.SessionID
	g.Username = r.Username
	g.StartedAt = r.StartedAt
	g.InitializedAt = r.InitializedAt
	g.WallTiles = r.WallTiles
	g.HandTiles = r.HandTiles
	g.EventsReceived = r.EventsReceived
	g.LastEvent = r.LastEvent
}
