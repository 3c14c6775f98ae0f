package client

import (
	"sync"

	"github.com/ytparty/server/pkg/party"
)

// StateDefiner computes the current snapshot. It returns nil while there is
// no player to read from.
type StateDefiner func() *party.State

// StateManager holds the last known playback snapshot. Values go in and out
// as copies, so callers never share memory with it.
type StateManager struct {
	mu       sync.Mutex
	state    *party.State
	definer  StateDefiner
	onChange listeners[*party.State]
}

func NewStateManager(definer StateDefiner) *StateManager {
	return &StateManager{definer: definer}
}

func (m *StateManager) State() *party.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Clone()
}

// SetState stores a copy of state and notifies every subscriber.
func (m *StateManager) SetState(state *party.State) {
	m.mu.Lock()
	m.state = state.Clone()
	m.mu.Unlock()

	m.notify(state)
}

// UpdateState recomputes the snapshot from the definer and notifies.
func (m *StateManager) UpdateState() *party.State {
	state := m.definer()
	m.SetState(state)

	return state.Clone()
}

// OnChange subscribes fn to every change. Each call gets its own copy.
func (m *StateManager) OnChange(fn func(*party.State)) func() {
	return m.onChange.add(func(state *party.State) {
		fn(state.Clone())
	})
}

func (m *StateManager) notify(state *party.State) {
	m.onChange.emit(state.Clone())
}
