package service

import (
	"log/slog"
	"slices"

	"github.com/spiffcs/ghaudit/internal/log"
)

// State is a step of the per-request analysis lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateFetchingProfile  State = "fetching_profile"
	StateCacheCheck       State = "cache_check"
	StateInsufficientData State = "insufficient_data"
	StateGrowth           State = "growth"
	StateAnalyzing        State = "analyzing"
	StateDone             State = "done"
	StateError            State = "error"
)

var transitions = map[State][]State{
	StateIdle:             {StateFetchingProfile, StateError},
	StateFetchingProfile:  {StateCacheCheck, StateError},
	StateCacheCheck:       {StateDone, StateGrowth, StateInsufficientData, StateAnalyzing, StateError},
	StateGrowth:           {StateDone, StateError},
	StateAnalyzing:        {StateDone, StateInsufficientData, StateError},
	StateInsufficientData: {StateDone},
}

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// machine tracks the state of a single request.
type machine struct {
	state  State
	logger *slog.Logger
}

func newMachine(logger *slog.Logger) *machine {
	return &machine{state: StateIdle, logger: logger}
}

func (m *machine) to(next State) {
	if !CanTransition(m.state, next) {
		m.logger.Error("invalid state transition", "from", m.state, "to", next)
	} else if log.IsDebug() {
		m.logger.Debug("state transition", "from", m.state, "to", next)
	}
	m.state = next
}

func (m *machine) current() State {
	return m.state
}
