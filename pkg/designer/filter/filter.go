// Package filter derives role-annotated and state-pruned views of a
// workflow. Every function is pure: inputs are never mutated and results
// never share slices with them.
package filter

import (
	"slices"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// AnnotatedTransition is a transition together with the roles allowed to
// execute it under the current role selection.
type AnnotatedTransition struct {
	domain.Transition
	AllowedRoles []string `json:"allowedRoles"`
}

// Accessible reports whether at least one selected role may execute the transition.
func (t AnnotatedTransition) Accessible() bool {
	return len(t.AllowedRoles) > 0
}

// View is the renderable form of a workflow.
type View struct {
	States      []domain.State        `json:"states"`
	Transitions []AnnotatedTransition `json:"transitions"`
	Roles       []domain.Role         `json:"roles"`
}

// AnnotateByRoles computes AllowedRoles for every transition: the ids of
// roles, in role order, that hold the permission. A non-empty selection
// restricts the result to selected roles; an empty selection means every
// role is shown.
func AnnotateByRoles(w domain.Workflow, selectedRoleIDs []string) View {
	src := w.Clone()
	view := View{
		States:      src.States,
		Transitions: make([]AnnotatedTransition, 0, len(src.Transitions)),
		Roles:       src.Roles,
	}
	for _, t := range src.Transitions {
		allowed := []string{}
		for _, r := range src.Roles {
			if !r.HasPermission(t.ID) {
				continue
			}
			if len(selectedRoleIDs) > 0 && !slices.Contains(selectedRoleIDs, r.ID) {
				continue
			}
			allowed = append(allowed, r.ID)
		}
		view.Transitions = append(view.Transitions, AnnotatedTransition{Transition: t, AllowedRoles: allowed})
	}
	return view
}

// Plain annotates the workflow with no role filter applied.
func Plain(w domain.Workflow) View {
	return AnnotateByRoles(w, nil)
}

// InaccessibleTransitions returns the transitions none of the selected roles
// may execute. Without a selection nothing is inaccessible.
func InaccessibleTransitions(w domain.Workflow, selectedRoleIDs []string) []domain.Transition {
	out := []domain.Transition{}
	if len(selectedRoleIDs) == 0 {
		return out
	}
	for _, t := range w.Clone().Transitions {
		accessible := slices.ContainsFunc(selectedRoleIDs, func(roleID string) bool {
			r, ok := w.RoleByID(roleID)
			return ok && r.HasPermission(t.ID)
		})
		if !accessible {
			out = append(out, t)
		}
	}
	return out
}

// PruneByHiddenStates drops hidden states and every transition that starts
// at or leads to one. Roles are kept as they are; permissions on pruned
// transitions simply never match a rendered edge.
func PruneByHiddenStates(w domain.Workflow, hiddenStateIDs []string) domain.Workflow {
	out := w.Clone()
	if len(hiddenStateIDs) == 0 {
		return out
	}
	out.States = slices.DeleteFunc(out.States, func(s domain.State) bool {
		return slices.Contains(hiddenStateIDs, s.ID)
	})
	out.Transitions = slices.DeleteFunc(out.Transitions, func(t domain.Transition) bool {
		return slices.ContainsFunc(hiddenStateIDs, t.References)
	})
	return out
}
