// statesync/bridge.go
package statesync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/state"
	"github.com/wfunc/mahjongtable/ui"
)

// Initializer is the part of the scene controller the bridge drives.
type Initializer interface {
	Initialize() error
	Lifecycle() state.Lifecycle
}

// Recorder receives per-event metrics.
type Recorder interface {
	IncEvent(name string)
	ObserveEventLatency(d time.Duration)
}

// Listener is notified after every handled event.
type Listener interface {
	EventHandled(name string, at time.Time, lifecycle string)
}

// Handler consumes inbound events, one at a time.
type Handler interface {
	Handle(ev Event) error
}

// Bridge 把状态同步事件转换为场景生命周期动作
type Bridge struct {
	scene     Initializer
	switcher  ui.Switcher
	recorder  Recorder
	listeners []Listener
}

type Option func(*Bridge)

func WithRecorder(r Recorder) Option {
	return func(b *Bridge) { b.recorder = r }
}

func WithListener(l Listener) Option {
	return func(b *Bridge) { b.listeners = append(b.listeners, l) }
}

func NewBridge(scene Initializer, switcher ui.Switcher, opts ...Option) *Bridge {
	b := &Bridge{scene: scene, switcher: switcher}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle processes one event. For a qualifying event it shows the in-game
// view and asks the scene to initialize, which is a no-op once it is built;
// if that build fails the lobby is shown again and the error is returned so
// the caller can wait for the next update to retry.
func (b *Bridge) Handle(ev Event) error {
	start := time.Now()
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = start
	}
	if b.recorder != nil {
		b.recorder.IncEvent(ev.Name)
		defer func() { b.recorder.ObserveEventLatency(time.Since(start)) }()
	}

	var err error
	switch ev.Name {
	case EventGameStateUpdate:
		var gs GameState
		if decodeErr := decode(ev, &gs); decodeErr == nil {
			logger.Log.Infof("Game state: started=%v round=%s%d remaining=%d players=%d turn=%s",
				gs.GameStarted, gs.RoundWind, gs.RoundNumber, gs.RemainingTiles, len(gs.Players), gs.TurnPlayerName)
		}
	case EventHandUpdate:
		var hand HandUpdate
		if decodeErr := decode(ev, &hand); decodeErr == nil {
			logger.Log.Infof("Hand update: %d tiles, my turn %v", len(hand.Hand), hand.MyTurn)
		}
	case EventPlayerJoined:
		var joined PlayerJoined
		if decodeErr := decode(ev, &joined); decodeErr == nil {
			logger.Log.Infof("Player %s joined (%d/4)", joined.Username, joined.CurrentPlayers)
		}
	case EventDealerSelection:
		var sel DealerSelection
		if decodeErr := decode(ev, &sel); decodeErr == nil {
			logger.Log.Infof("Dealer selected: %s (seat %d)", sel.DealerName, sel.DealerIndex)
		}
	case EventErrorMessage:
		var msg ErrorMessage
		if decodeErr := decode(ev, &msg); decodeErr == nil {
			logger.Log.Warnf("Server error: %s", msg.Msg)
		}
	default:
		logger.Log.Debugf("Ignoring event %s", ev.Name)
	}

	if ev.Qualifying() {
		err = b.enterGame()
	}

	for _, l := range b.listeners {
		l.EventHandled(ev.Name, ev.ReceivedAt, string(b.scene.Lifecycle()))
	}
	return err
}

// enterGame 切到对局界面并请求建场；已建好的场景由控制器自己忽略
func (b *Bridge) enterGame() error {
	b.switcher.SetMode(ui.ModeInGame)

	if err := b.scene.Initialize(); err != nil {
		b.switcher.SetMode(ui.ModeLobby)
		return fmt.Errorf("initialize scene: %w", err)
	}
	return nil
}

// decode 解析负载；负载不影响场景，解析失败只记日志
func decode(ev Event, v interface{}) error {
	if len(ev.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", ev.Name)
	}
	if err := json.Unmarshal(ev.Payload, v); err != nil {
		logger.Log.Warnf("Malformed %s payload: %v", ev.Name, err)
		return err
	}
	return nil
}
