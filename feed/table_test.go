package feed

import (
	"errors"
	"testing"

	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/statesync"
)

// fixedDice returns the given rolls in order.
func fixedDice(rolls ...int) func() int {
	i := 0
	return func() int {
		r := rolls[i%len(rolls)]
		i++
		return r
	}
}

func TestTable_JoinAndReconnect(t *testing.T) {
	table := NewTable()

	isNew, err := table.Join("alice", "sid-1")
	if err != nil || !isNew {
		t.Fatalf("Expected new player, got new=%v err=%v", isNew, err)
	}
	isNew, err = table.Join("alice", "sid-2")
	if err != nil || isNew {
		t.Fatalf("Expected reconnect, got new=%v err=%v", isNew, err)
	}
	if table.PlayerCount() != 1 {
		t.Errorf("Expected 1 player, got %d", table.PlayerCount())
	}
	if table.sessions[0] != "sid-2" {
		t.Errorf("Expected seat rebound to sid-2, got %s", table.sessions[0])
	}
}

func TestTable_Full(t *testing.T) {
	table := NewTable()
	table.Join("alice", "sid-1")
	added := table.FillWithBots()
	if len(added) != 3 || added[0] != "CPU-2" {
		t.Fatalf("Expected CPU-2..CPU-4, got %v", added)
	}
	if _, err := table.Join("bob", "sid-5"); !errors.Is(err, ErrTableFull) {
		t.Errorf("Expected ErrTableFull, got %v", err)
	}
	if more := table.FillWithBots(); len(more) != 0 {
		t.Errorf("Expected no more bots, got %v", more)
	}
}

func TestTable_StartNeedsFourPlayers(t *testing.T) {
	table := NewTable()
	table.Join("alice", "sid-1")
	if _, err := table.Start(); !errors.Is(err, ErrNotEnough) {
		t.Errorf("Expected ErrNotEnough, got %v", err)
	}
}

func TestTable_DealerSelection(t *testing.T) {
	table := NewTable()
	table.Join("alice", "sid-1")
	table.FillWithBots()
	// totals: 5, 9, 9, 4; seat 1 wins the tie with seat 2
	table.roll = fixedDice(2, 3, 4, 5, 6, 3, 1, 3)

	sel, err := table.Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if sel.DealerIndex != 1 || sel.DealerName != "CPU-2" {
		t.Errorf("Expected CPU-2 at seat 1, got %s at %d", sel.DealerName, sel.DealerIndex)
	}
	if len(sel.Rolls) != Seats || sel.Rolls[1].Total != 9 {
		t.Errorf("Unexpected rolls %+v", sel.Rolls)
	}

	gs := table.State()
	if !gs.GameStarted || gs.RoundWind != "東" || gs.RoundNumber != 1 {
		t.Errorf("Unexpected round state %+v", gs)
	}
	if gs.TurnPlayerName != "CPU-2" {
		t.Errorf("Expected dealer to act first, got %s", gs.TurnPlayerName)
	}
	winds := []int{3, 0, 1, 2}
	for i, p := range gs.Players {
		if p.Wind != winds[i] {
			t.Errorf("Seat %d: expected wind %d, got %d", i, winds[i], p.Wind)
		}
	}
	if gs.RemainingTiles != layout.WallTileCount-14-13*Seats {
		t.Errorf("Unexpected remaining tiles %d", gs.RemainingTiles)
	}

	if _, err := table.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}

func TestTable_StateIsSnapshot(t *testing.T) {
	table := NewTable()
	table.Join("alice", "sid-1")
	gs := table.State()
	gs.Players[0].Name = "mallory"
	if table.State().Players[0].Name != "alice" {
		t.Error("State should not alias table players")
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != layout.WallTileCount {
		t.Fatalf("Expected %d tiles, got %d", layout.WallTileCount, len(deck))
	}
	counts := make(map[statesync.Tile]int)
	for _, tile := range deck {
		counts[tile]++
	}
	if len(counts) != 34 {
		t.Errorf("Expected 34 distinct tiles, got %d", len(counts))
	}
	for tile, n := range counts {
		if n != 4 {
			t.Errorf("Expected 4 copies of %+v, got %d", tile, n)
		}
	}
}

func TestTable_StartDealsHands(t *testing.T) {
	table := NewTable()
	table.Join("alice", "sid-1")
	table.FillWithBots()
	table.roll = fixedDice(6, 6, 1, 1, 1, 1, 1, 1)

	if table.Hands() != nil {
		t.Fatal("Hands should be nil before the game starts")
	}
	if _, err := table.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	hands := table.Hands()
	if len(hands) != Seats {
		t.Fatalf("Expected %d hands, got %d", Seats, len(hands))
	}
	if hands[0].SessionID != "sid-1" || !hands[0].Update.MyTurn {
		t.Errorf("Expected alice as dealer on turn, got %+v", hands[0])
	}
	seen := 0
	for i, seat := range hands {
		if len(seat.Update.Hand) != 13 {
			t.Errorf("Seat %d: expected 13 tiles, got %d", i, len(seat.Update.Hand))
		}
		if i > 0 && seat.Update.MyTurn {
			t.Errorf("Seat %d should not be on turn", i)
		}
		hand := seat.Update.Hand
		for j := 1; j < len(hand); j++ {
			a, b := hand[j-1], hand[j]
			if suitOrder[a.Suit] > suitOrder[b.Suit] || (a.Suit == b.Suit && a.Value > b.Value) {
				t.Errorf("Seat %d: hand not sorted at %d: %+v then %+v", i, j, a, b)
			}
		}
		seen += len(hand)
	}

	gs := table.State()
	if len(gs.Dora) != 1 {
		t.Errorf("Expected one dora indicator, got %v", gs.Dora)
	}
	if seen+14+gs.RemainingTiles != layout.WallTileCount {
		t.Errorf("Tiles do not add up: %d dealt, %d remaining", seen, gs.RemainingTiles)
	}
}
