// feed/table.go
package feed

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/statesync"
)

const (
	Seats          = 4
	StartingScore  = 25000
	deadWallTiles  = 14
	initialHandLen = 13
)

var (
	ErrTableFull      = errors.New("table is full")
	ErrNotEnough      = errors.New("table needs four players")
	ErrAlreadyStarted = errors.New("game already started")
)

var suitOrder = map[string]int{"man": 0, "pin": 1, "sou": 2, "honors": 3}

// NewDeck returns the 136 tiles in suit order: man, pin and sou 1-9 and
// honors 1-7, four copies each.
func NewDeck() []statesync.Tile {
	deck := make([]statesync.Tile, 0, layout.WallTileCount)
	for _, suit := range []string{"man", "pin", "sou"} {
		for value := 1; value <= 9; value++ {
			for i := 0; i < 4; i++ {
				deck = append(deck, statesync.Tile{Suit: suit, Value: value})
			}
		}
	}
	for value := 1; value <= 7; value++ {
		for i := 0; i < 4; i++ {
			deck = append(deck, statesync.Tile{Suit: "honors", Value: value})
		}
	}
	return deck
}

func sortHand(hand []statesync.Tile) {
	sort.SliceStable(hand, func(i, j int) bool {
		if suitOrder[hand[i].Suit] != suitOrder[hand[j].Suit] {
			return suitOrder[hand[i].Suit] < suitOrder[hand[j].Suit]
		}
		return hand[i].Value < hand[j].Value
	})
}

// SeatHand is the private hand_update for one seat.
type SeatHand struct {
	SessionID string
	Update    statesync.HandUpdate
}

// Table 开发用的牌桌状态，只做发牌，不含出牌与计分规则
type Table struct {
	players     []statesync.PlayerState
	sessions    []string
	hands       [][]statesync.Tile
	deck        []statesync.Tile
	dora        []statesync.Tile
	started     bool
	dealer      int
	turn        int
	roundWind   string
	roundNumber int
	remaining   int
	roll        func() int
	shuffle     func(deck []statesync.Tile)
	mutex       sync.Mutex
}

func NewTable() *Table {
	return &Table{
		roundWind:   "東",
		roundNumber: 1,
		remaining:   layout.WallTileCount,
		roll:        func() int { return rand.Intn(6) + 1 },
		shuffle: func(deck []statesync.Tile) {
			rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		},
	}
}

// Join seats a player, or rebinds the seat when the name is already seated.
// It reports whether the player was new.
func (t *Table) Join(name, sessionID string) (bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for i, p := range t.players {
		if p.Name == name {
			t.sessions[i] = sessionID
			return false, nil
		}
	}
	if len(t.players) >= Seats {
		return false, ErrTableFull
	}
	t.players = append(t.players, statesync.PlayerState{Name: name, Score: StartingScore, Discards: []statesync.Tile{}})
	t.sessions = append(t.sessions, sessionID)
	return true, nil
}

// FillWithBots adds CPU players until every seat is taken and returns their names.
func (t *Table) FillWithBots() []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var added []string
	for len(t.players) < Seats {
		n := len(t.players) + 1
		name := fmt.Sprintf("CPU-%d", n)
		t.players = append(t.players, statesync.PlayerState{Name: name, Score: StartingScore, Discards: []statesync.Tile{}})
		t.sessions = append(t.sessions, fmt.Sprintf("bot_sid_%d", n))
		added = append(added, name)
	}
	return added
}

func (t *Table) PlayerCount() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.players)
}

// Start rolls two dice per seat, makes the highest total dealer (first seat
// wins ties) and assigns winds relative to the dealer. It then shuffles the
// deck, sets aside the dead wall with its first tile as dora indicator and
// deals 13 tiles to every seat.
func (t *Table) Start() (statesync.DealerSelection, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.started {
		return statesync.DealerSelection{}, ErrAlreadyStarted
	}
	if len(t.players) < Seats {
		return statesync.DealerSelection{}, ErrNotEnough
	}

	sel := statesync.DealerSelection{}
	best := -1
	for i := range t.players {
		d1, d2 := t.roll(), t.roll()
		sel.Rolls = append(sel.Rolls, statesync.DiceRoll{D1: d1, D2: d2, Total: d1 + d2})
		if d1+d2 > best {
			best = d1 + d2
			sel.DealerIndex = i
		}
	}
	sel.DealerName = t.players[sel.DealerIndex].Name

	t.dealer = sel.DealerIndex
	t.turn = t.dealer
	for i := range t.players {
		t.players[i].Wind = (i - t.dealer + Seats) % Seats
	}
	t.deal()
	t.started = true
	return sel, nil
}

// deal 从牌堆末尾摸牌，与实体牌墙的顺序无关
func (t *Table) deal() {
	t.deck = NewDeck()
	t.shuffle(t.deck)

	dead := t.draw(deadWallTiles)
	t.dora = []statesync.Tile{dead[0]}

	t.hands = make([][]statesync.Tile, len(t.players))
	for round := 0; round < initialHandLen; round++ {
		for i := range t.players {
			t.hands[i] = append(t.hands[i], t.draw(1)...)
		}
	}
	for _, hand := range t.hands {
		sortHand(hand)
	}
	t.remaining = len(t.deck)
}

func (t *Table) draw(n int) []statesync.Tile {
	drawn := make([]statesync.Tile, n)
	for i := 0; i < n; i++ {
		drawn[i] = t.deck[len(t.deck)-1]
		t.deck = t.deck[:len(t.deck)-1]
	}
	return drawn
}

// Hands returns one hand_update per seat, nil before the game starts.
func (t *Table) Hands() []SeatHand {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.started {
		return nil
	}
	result := make([]SeatHand, len(t.players))
	for i := range t.players {
		result[i] = SeatHand{
			SessionID: t.sessions[i],
			Update: statesync.HandUpdate{
				Hand:   append([]statesync.Tile(nil), t.hands[i]...),
				MyTurn: i == t.turn,
			},
		}
	}
	return result
}

// State returns the public snapshot broadcast as game_state_update.
func (t *Table) State() statesync.GameState {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	gs := statesync.GameState{
		GameStarted:     t.started,
		RoundWind:       t.roundWind,
		RoundNumber:     t.roundNumber,
		RemainingTiles:  t.remaining,
		Dora:            append([]statesync.Tile{}, t.dora...),
		Players:         append([]statesync.PlayerState(nil), t.players...),
		TurnPlayerIndex: t.turn,
	}
	if t.turn < len(t.players) {
		gs.TurnPlayerName = t.players[t.turn].Name
	}
	return gs
}
