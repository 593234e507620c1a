package rpc

import (
	"net/rpc"
	"testing"
	"time"

	"github.com/wfunc/mahjongtable/models"
	"github.com/wfunc/mahjongtable/persistence"
	"github.com/wfunc/mahjongtable/scene"
	"github.com/wfunc/mahjongtable/services"
)

// MockStats is a test double for StatsSource.
type MockStats struct {
	Value scene.Stats
}

func (m *MockStats) Stats() scene.Stats { return m.Value }

func TestSceneService_OverTCP(t *testing.T) {
	db := persistence.NewMemory()
	db.SaveSession(&models.SessionRecord{SessionID: "s1", StartedAt: time.Now(), EventsReceived: 4})

	source := &MockStats{Value: scene.Stats{Lifecycle: "initialized", WallTiles: 136, HandTiles: 10}}
	server, err := NewServer("127.0.0.1:0", NewSceneService(source, services.NewSessionService(db)))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	go server.Start()
	defer server.Stop()

	client, err := rpc.Dial("tcp", server.Addr())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	var status StatusReply
	if err := client.Call("SceneService.Status", &StatusArgs{Caller: "test"}, &status); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Stats.Lifecycle != "initialized" || status.Stats.WallTiles != 136 {
		t.Errorf("Unexpected status %+v", status.Stats)
	}

	var sessions SessionsReply
	if err := client.Call("SceneService.Sessions", &SessionsArgs{Limit: 5}, &sessions); err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions.Records) != 1 || sessions.Summary.EventsReceived != 4 {
		t.Errorf("Unexpected sessions reply %+v", sessions)
	}
}
