// Package view owns which dashboard panel is visible. Selection is pure
// state: switching tabs never fetches data and never touches the snapshot.
package view

import (
	"fmt"
	"sync"
)

// Tab identifies one content panel of the dashboard.
type Tab string

const (
	TabOverview Tab = "overview"
	TabTrending Tab = "trending"
	TabRugcheck Tab = "rugcheck"
	TabWhales   Tab = "whales"
	TabTrades   Tab = "trades"
	TabUsers    Tab = "users"
	TabPayments Tab = "payments"
)

// Tabs lists every panel in display order.
var Tabs = []Tab{
	TabOverview,
	TabTrending,
	TabRugcheck,
	TabWhales,
	TabTrades,
	TabUsers,
	TabPayments,
}

// ParseTab maps a raw tab name onto the closed tab set.
func ParseTab(raw string) (Tab, error) {
	switch Tab(raw) {
	case TabOverview, TabTrending, TabRugcheck, TabWhales, TabTrades, TabUsers, TabPayments:
		return Tab(raw), nil
	default:
		return "", fmt.Errorf("unknown tab '%s'", raw)
	}
}

// State is the tab-scoped view state. ActiveTab always holds exactly one
// member of Tabs; PrefillAddress carries an address handed from the trending
// panel into the rug-check form.
type State struct {
	ActiveTab      Tab
	PrefillAddress string
}

// Machine serialises transitions on the view state. It is long-lived and has
// no terminal state.
type Machine struct {
	mu    sync.RWMutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: State{ActiveTab: TabOverview}}
}

// Select activates a tab unconditionally. No guard, no side effect, no
// refetch.
func (m *Machine) Select(tab Tab) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.ActiveTab = tab
	return m.state
}

// InspectToken is the one special-cased transition: initiating a risk check
// from the trending panel jumps straight to the rug-check panel with the
// selected token's address pre-filled.
func (m *Machine) InspectToken(address string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.ActiveTab = TabRugcheck
	m.state.PrefillAddress = address
	return m.state
}

// State returns the current view state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
