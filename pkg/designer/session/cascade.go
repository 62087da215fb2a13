package session

import (
	"slices"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/machinename"
)

// Grant is one role permission on one transition.
type Grant struct {
	RoleID       string `json:"roleId"`
	TransitionID string `json:"transitionId"`
}

// Cascade lists what a removal took with it besides the removed entities.
type Cascade struct {
	States      []string `json:"states"`
	Transitions []string `json:"transitions"`
	Grants      []Grant  `json:"grants"`
}

// Empty reports whether the removal affected nothing else.
func (c Cascade) Empty() bool {
	return len(c.Transitions) == 0 && len(c.Grants) == 0
}

// draft is a private working copy; mutations build one and commit it only
// when every step succeeded.
type draft struct {
	workflow domain.Workflow
	selected []string
	hidden   []string
}

func missing(before, after []string) []string {
	var out []string
	for _, id := range before {
		if !slices.Contains(after, id) {
			out = append(out, id)
		}
	}
	return out
}

func checkIDs(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !machinename.Valid(id) {
			return domain.NewValidationError("id", domain.MsgInvalidID)
		}
		if seen[id] {
			return domain.NewValidationError("id", domain.MsgDuplicateID)
		}
		seen[id] = true
	}
	return nil
}

func stateIDs(states []domain.State) []string {
	ids := make([]string, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}
	return ids
}

func transitionIDs(ts []domain.Transition) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}

func roleIDs(roles []domain.Role) []string {
	ids := make([]string, len(roles))
	for i, r := range roles {
		ids[i] = r.ID
	}
	return ids
}

// replaceStates installs the new state list and removes every transition
// touching a dropped state, the permissions on those transitions and the
// dropped ids from the hidden set.
func (d *draft) replaceStates(states []domain.State) (Cascade, error) {
	next := stateIDs(states)
	if err := checkIDs(next); err != nil {
		return Cascade{}, err
	}
	removed := missing(stateIDs(d.workflow.States), next)
	d.workflow.States = slices.Clone(states)

	kept := slices.DeleteFunc(slices.Clone(d.workflow.Transitions), func(t domain.Transition) bool {
		return slices.ContainsFunc(removed, t.References)
	})

	cascade, err := d.replaceTransitions(kept)
	if err != nil {
		return Cascade{}, err
	}
	cascade.States = removed
	d.hidden = slices.DeleteFunc(d.hidden, func(id string) bool { return slices.Contains(removed, id) })
	return cascade, nil
}

// replaceTransitions installs the new transition list and strips every
// dropped transition from role permissions.
func (d *draft) replaceTransitions(transitions []domain.Transition) (Cascade, error) {
	next := transitionIDs(transitions)
	if err := checkIDs(next); err != nil {
		return Cascade{}, err
	}
	removed := missing(transitionIDs(d.workflow.Transitions), next)
	d.workflow.Transitions = domain.Workflow{Transitions: transitions}.Clone().Transitions

	cascade := Cascade{Transitions: removed}
	for i, r := range d.workflow.Roles {
		kept := make([]string, 0, len(r.Permissions))
		for _, p := range r.Permissions {
			if slices.Contains(removed, p) {
				cascade.Grants = append(cascade.Grants, Grant{RoleID: r.ID, TransitionID: p})
				continue
			}
			kept = append(kept, p)
		}
		d.workflow.Roles[i].Permissions = kept
	}
	return cascade, nil
}

// replaceRoles installs the new role list, drops removed roles from the
// selection and selects roles that were not there before.
func (d *draft) replaceRoles(roles []domain.Role) (Cascade, error) {
	next := roleIDs(roles)
	if err := checkIDs(next); err != nil {
		return Cascade{}, err
	}
	before := roleIDs(d.workflow.Roles)
	removed := missing(before, next)
	added := missing(next, before)
	d.workflow.Roles = domain.Workflow{Roles: roles}.Clone().Roles

	d.selected = slices.DeleteFunc(d.selected, func(id string) bool { return slices.Contains(removed, id) })
	for _, id := range added {
		if !slices.Contains(d.selected, id) {
			d.selected = append(d.selected, id)
		}
	}
	return Cascade{}, nil
}
