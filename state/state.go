package state

import (
	"errors"
	"sync"
)

// Lifecycle 场景生命周期状态
type Lifecycle string

const (
	Uninitialized Lifecycle = "uninitialized"
	Initialized   Lifecycle = "initialized"
)

// Decision is what the controller should do with a qualifying event.
type Decision int

const (
	DecisionIgnore Decision = iota
	DecisionInitialize
)

func (d Decision) String() string {
	if d == DecisionInitialize {
		return "initialize"
	}
	return "ignore"
}

// Decide is the pure transition function for a qualifying event: build only
// from Uninitialized and only when no build is already running.
func Decide(current Lifecycle, inProgress bool) Decision {
	if current == Uninitialized && !inProgress {
		return DecisionInitialize
	}
	return DecisionIgnore
}

// 状态机接口
type StateMachine interface {
	ChangeState(to Lifecycle) error
	GetCurrentState() Lifecycle
	AddTransition(from, to Lifecycle, condition func() bool) error
	OnEnter(state Lifecycle, hook func())
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// 基础状态机实现，只允许显式注册过的转换
type BaseStateMachine struct {
	currentState Lifecycle
	transitions  map[Lifecycle]map[Lifecycle]func() bool // fromState -> toState -> condition
	enterHooks   map[Lifecycle][]func()
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState Lifecycle) *BaseStateMachine {
	return &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[Lifecycle]map[Lifecycle]func() bool),
		enterHooks:   make(map[Lifecycle][]func()),
	}
}

// NewSceneMachine returns a machine starting Uninitialized whose only edge is
// the one-way Uninitialized -> Initialized transition.
func NewSceneMachine() *BaseStateMachine {
	sm := NewBaseStateMachine(Uninitialized)
	sm.AddTransition(Uninitialized, Initialized, nil)
	return sm
}

func (sm *BaseStateMachine) ChangeState(newState Lifecycle) error {
	sm.mutex.Lock()

	conditions, exists := sm.transitions[sm.currentState]
	if !exists {
		sm.mutex.Unlock()
		return ErrTransitionNotAllowed
	}
	condition, exists := conditions[newState]
	if !exists || (condition != nil && !condition()) {
		sm.mutex.Unlock()
		return ErrTransitionNotAllowed
	}

	sm.currentState = newState
	hooks := append([]func(){}, sm.enterHooks[newState]...)
	sm.mutex.Unlock()

	for _, hook := range hooks {
		hook()
	}
	return nil
}

func (sm *BaseStateMachine) GetCurrentState() Lifecycle {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from, to Lifecycle, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[Lifecycle]func() bool)
	}

	sm.transitions[from][to] = condition
	return nil
}

// OnEnter registers a hook run after the machine enters state.
func (sm *BaseStateMachine) OnEnter(state Lifecycle, hook func()) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.enterHooks[state] = append(sm.enterHooks[state], hook)
}
