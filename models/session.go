// models/session.go
package models

import (
	"time"
)

// SessionRecord 一次观看会话的记录
type SessionRecord struct {
	SessionID      string     `json:"session_id"`
	Username       string     `json:"username"`
	StartedAt      time.Time  `json:"started_at"`
	InitializedAt  *time.Time `json:"initialized_at,omitempty"`
	WallTiles      int        `json:"wall_tiles"`
	HandTiles      int        `json:"hand_tiles"`
	EventsReceived int64      `json:"events_received"`
	LastEvent      string     `json:"last_event"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Initialized reports whether the scene was built during the session.
func (r *SessionRecord) Initialized() bool {
	return r.InitializedAt != nil
}

// InitLatency is the time from session start to the scene build, zero when
// the scene was never built.
func (r *SessionRecord) InitLatency() time.Duration {
	if r.InitializedAt == nil {
		return 0
	}
	return r.InitializedAt.Sub(r.StartedAt)
}

// SessionSummary 汇总最近的会话
type SessionSummary struct {
	Sessions       int           `json:"sessions"`
	Initialized    int           `json:"initialized"`
	EventsReceived int64         `json:"events_received"`
	AvgInitLatency time.Duration `json:"avg_init_latency"`
}
