// Package domain defines the workflow aggregate edited by a designer session.
package domain

import "slices"

// State is a named node of the workflow graph.
type State struct {
	ID    string `json:"id"    cbor:"id"    yaml:"id"    validate:"machinename"`
	Label string `json:"label" cbor:"label" yaml:"label"`
}

// Transition is a labeled edge from one or more states into a single state.
type Transition struct {
	ID         string   `json:"id"         cbor:"id"         yaml:"id"         validate:"machinename"`
	Label      string   `json:"label"      cbor:"label"      yaml:"label"`
	FromStates []string `json:"fromStates" cbor:"fromStates" yaml:"fromStates" validate:"min=1,dive,required"`
	ToState    string   `json:"toState"    cbor:"toState"    yaml:"toState"    validate:"required"`
}

// Role groups the transitions its holders may execute.
type Role struct {
	ID          string   `json:"id"          cbor:"id"          yaml:"id"          validate:"machinename"`
	Label       string   `json:"label"       cbor:"label"       yaml:"label"`
	Permissions []string `json:"permissions" cbor:"permissions" yaml:"permissions"`
}

// HasPermission reports whether the role may execute the transition.
func (r Role) HasPermission(transitionID string) bool {
	return slices.Contains(r.Permissions, transitionID)
}

// Workflow is the aggregate root: ordered states, transitions and roles.
// Order only matters for display.
type Workflow struct {
	States      []State      `json:"states"      cbor:"states"      yaml:"states"      validate:"unique=ID,dive"`
	Transitions []Transition `json:"transitions" cbor:"transitions" yaml:"transitions" validate:"unique=ID,dive"`
	Roles       []Role       `json:"roles"       cbor:"roles"       yaml:"roles"       validate:"unique=ID,dive"`
}

// Empty reports whether the workflow holds no entity at all.
func (w Workflow) Empty() bool {
	return len(w.States) == 0 && len(w.Transitions) == 0 && len(w.Roles) == 0
}

// Clone returns a deep copy that shares no slice with w.
func (w Workflow) Clone() Workflow {
	out := Workflow{
		States:      make([]State, len(w.States)),
		Transitions: make([]Transition, len(w.Transitions)),
		Roles:       make([]Role, len(w.Roles)),
	}
	copy(out.States, w.States)
	for i, t := range w.Transitions {
		out.Transitions[i] = t.clone()
	}
	for i, r := range w.Roles {
		out.Roles[i] = r.clone()
	}
	return out
}

// Normalize replaces nil collections with empty ones so that decoded,
// stored and freshly built workflows compare equal.
func (w *Workflow) Normalize() {
	if w.States == nil {
		w.States = []State{}
	}
	if w.Transitions == nil {
		w.Transitions = []Transition{}
	}
	if w.Roles == nil {
		w.Roles = []Role{}
	}
	for i := range w.Transitions {
		if w.Transitions[i].FromStates == nil {
			w.Transitions[i].FromStates = []string{}
		}
	}
	for i := range w.Roles {
		if w.Roles[i].Permissions == nil {
			w.Roles[i].Permissions = []string{}
		}
	}
}

func (w Workflow) StateByID(id string) (State, bool) {
	i := slices.IndexFunc(w.States, func(s State) bool { return s.ID == id })
	if i < 0 {
		return State{}, false
	}
	return w.States[i], true
}

func (w Workflow) TransitionByID(id string) (Transition, bool) {
	i := slices.IndexFunc(w.Transitions, func(t Transition) bool { return t.ID == id })
	if i < 0 {
		return Transition{}, false
	}
	return w.Transitions[i].clone(), true
}

func (w Workflow) RoleByID(id string) (Role, bool) {
	i := slices.IndexFunc(w.Roles, func(r Role) bool { return r.ID == id })
	if i < 0 {
		return Role{}, false
	}
	return w.Roles[i].clone(), true
}

// StateLabel returns the display label of a state, falling back to the id
// for unknown states or blank labels.
func (w Workflow) StateLabel(id string) string {
	if s, ok := w.StateByID(id); ok && s.Label != "" {
		return s.Label
	}
	return id
}

// References reports whether the transition starts at or leads to stateID.
func (t Transition) References(stateID string) bool {
	return t.ToState == stateID || slices.Contains(t.FromStates, stateID)
}

func (t Transition) clone() Transition {
	t.FromStates = slices.Clone(t.FromStates)
	if t.FromStates == nil {
		t.FromStates = []string{}
	}
	return t
}

func (r Role) clone() Role {
	r.Permissions = slices.Clone(r.Permissions)
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return r
}
