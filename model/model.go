// Package model defines the decoded payloads of the jasm debug protocol: the
// machine description sent by a debugged process and the state-change notices
// that follow it.
package model

import (
	"encoding/json"
	"fmt"
)

// TransitionInfo describes one outgoing transition of a state. Immutable once
// parsed.
type TransitionInfo struct {
	EndPointID    string `json:"endPointId"`
	IsHistory     bool   `json:"isHistory"`
	IsDeepHistory bool   `json:"isDeepHistory"`
	IsToFinal     bool   `json:"isToFinal"`
}

// StateInfo describes one state of a machine. Children holds one nested
// machine per sub-chart of a composite state.
type StateInfo struct {
	Name           string           `json:"name"`
	ID             string           `json:"id"`
	Transitions    []TransitionInfo `json:"transitions"`
	Children       []FsmInfo        `json:"children"`
	IsInitial      bool             `json:"isInitial"`
	IsFinal        bool             `json:"isFinal"`
	HasHistory     bool             `json:"hasHistory"`
	HasDeepHistory bool             `json:"hasDeepHistory"`
}

// HasChildren reports whether the state owns nested machines.
func (s *StateInfo) HasChildren() bool {
	return len(s.Children) > 0
}

// FsmInfo is a complete machine description.
type FsmInfo struct {
	Name   string      `json:"name"`
	States []StateInfo `json:"states"`
}

// NormalStates returns the states excluding the initial and final
// pseudo-states, in declaration order.
func (f *FsmInfo) NormalStates() []StateInfo {
	normal := make([]StateInfo, 0, len(f.States))
	for _, s := range f.States {
		if !s.IsInitial && !s.IsFinal {
			normal = append(normal, s)
		}
	}
	return normal
}

// InitialState returns the machine's initial pseudo-state, or nil if absent.
func (f *FsmInfo) InitialState() *StateInfo {
	for i := range f.States {
		if f.States[i].IsInitial {
			return &f.States[i]
		}
	}
	return nil
}

// FinalState returns the machine's final pseudo-state, or nil if absent.
func (f *FsmInfo) FinalState() *StateInfo {
	for i := range f.States {
		if f.States[i].IsFinal {
			return &f.States[i]
		}
	}
	return nil
}

// StateChangedInfo is an ephemeral state-change notice.
type StateChangedInfo struct {
	MachineName  string `json:"machineName"`
	OldStateName string `json:"oldStateName"`
	OldStateID   string `json:"oldStateId"`
	NewStateName string `json:"newStateName"`
	NewStateID   string `json:"newStateId"`
}

// ParseMachine decodes and validates a set-machine payload. The description
// must carry exactly one initial state and at most one final state, enforced
// recursively for the children of composite states.
func ParseMachine(payload []byte) (*FsmInfo, error) {
	var fsm FsmInfo
	if err := json.Unmarshal(payload, &fsm); err != nil {
		return nil, fmt.Errorf("decoding machine description: %w", err)
	}
	if err := validateMachine(&fsm); err != nil {
		return nil, err
	}
	return &fsm, nil
}

func validateMachine(fsm *FsmInfo) error {
	initials := 0
	finals := 0
	for i := range fsm.States {
		s := &fsm.States[i]
		if s.IsInitial {
			initials++
		}
		if s.IsFinal {
			finals++
		}
		for j := range s.Children {
			if err := validateMachine(&s.Children[j]); err != nil {
				return fmt.Errorf("state %q: %w", s.ID, err)
			}
		}
	}
	if initials != 1 {
		return fmt.Errorf("machine %q: expected exactly one initial state, got %d", fsm.Name, initials)
	}
	if finals > 1 {
		return fmt.Errorf("machine %q: expected at most one final state, got %d", fsm.Name, finals)
	}
	return nil
}

// ParseStateChange decodes a state-changed payload.
func ParseStateChange(payload []byte) (*StateChangedInfo, error) {
	var info StateChangedInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decoding state change: %w", err)
	}
	return &info, nil
}
