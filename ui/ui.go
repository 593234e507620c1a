// Package ui tracks which presentation container is visible.
package ui

import (
	"sync"

	"github.com/wfunc/mahjongtable/logger"
)

type Mode string

const (
	ModeLobby  Mode = "lobby"
	ModeInGame Mode = "in-game"
)

// Switcher toggles between the lobby and in-game containers.
type Switcher interface {
	SetMode(mode Mode)
	Mode() Mode
}

// Presenter 记录当前界面模式，并在切换时输出日志
type Presenter struct {
	mode     Mode
	switches int
	mutex    sync.RWMutex
}

func NewPresenter() *Presenter {
	return &Presenter{mode: ModeLobby}
}

func (p *Presenter) SetMode(mode Mode) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.mode == mode {
		return
	}
	logger.Log.Infof("UI mode %s -> %s", p.mode, mode)
	p.mode = mode
	p.switches++
}

func (p *Presenter) Mode() Mode {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.mode
}

// Switches returns how many actual mode changes happened.
func (p *Presenter) Switches() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.switches
}
