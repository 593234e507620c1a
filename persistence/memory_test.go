package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/wfunc/mahjongtable/models"
)

func TestMemory_SaveLoad(t *testing.T) {
	db := NewMemory()

	if _, err := db.LoadSession("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}

	record := &models.SessionRecord{SessionID: "s1", Username: "alice", StartedAt: time.Now()}
	if err := db.SaveSession(record); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	record.EventsReceived = 3
	db.SaveSession(record)

	loaded, err := db.LoadSession("s1")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.EventsReceived != 3 || loaded.Username != "alice" {
		t.Errorf("Unexpected record %+v", loaded)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set on save")
	}
}

func TestMemory_RecentSessions(t *testing.T) {
	db := NewMemory()
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		db.SaveSession(&models.SessionRecord{SessionID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	records, _ := db.RecentSessions(2)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].SessionID != "c" || records[1].SessionID != "b" {
		t.Errorf("Expected newest first, got %s, %s", records[0].SessionID, records[1].SessionID)
	}

	all, _ := db.RecentSessions(0)
	if len(all) != 3 {
		t.Errorf("Expected all 3 records with no limit, got %d", len(all))
	}
}

// failingDB rejects every write.
type failingDB struct {
	*Memory
}

func (f *failingDB) SaveSession(record *models.SessionRecord) error {
	return errors.New("connection refused")
}

func TestSessionTracker(t *testing.T) {
	db := NewMemory()
	tracker := NewSessionTracker(db, "s1", "alice")

	if _, err := db.LoadSession("s1"); err != nil {
		t.Fatalf("Tracker should save on creation: %v", err)
	}

	tracker.EventHandled("player_joined", time.Now(), "uninitialized")
	tracker.SceneBuilt(136, 10)
	tracker.EventHandled("game_state_update", time.Now(), "initialized")

	loaded, _ := db.LoadSession("s1")
	if loaded.EventsReceived != 2 || loaded.LastEvent != "game_state_update" {
		t.Errorf("Unexpected event fields %+v", loaded)
	}
	if !loaded.Initialized() || loaded.WallTiles != 136 || loaded.HandTiles != 10 {
		t.Errorf("Unexpected scene fields %+v", loaded)
	}
	if loaded.InitLatency() < 0 {
		t.Errorf("Negative init latency %v", loaded.InitLatency())
	}
}

func TestSessionTracker_SaveErrorsAreAbsorbed(t *testing.T) {
	tracker := NewSessionTracker(&failingDB{NewMemory()}, "s1", "alice")
	tracker.EventHandled("game_state_update", time.Now(), "initialized")
	if tracker.Record().EventsReceived != 1 {
		t.Errorf("Expected the in-memory record to advance, got %+v", tracker.Record())
	}
}
