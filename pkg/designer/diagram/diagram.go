// Package diagram renders a workflow view as a Mermaid flowchart.
package diagram

import (
	"fmt"
	"strings"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/filter"
)

const (
	header = "flowchart LR\n"
	indent = "    "

	inaccessibleKey   = "inaccessible"
	roleEdgeStyle     = "stroke:%s,stroke-width:2px"
	inaccessibleStyle = "stroke:" + InaccessibleColor + ",stroke-width:1px,stroke-dasharray:5 5,opacity:0.5"
)

// keywords cannot be used verbatim as flowchart node ids. Machine names are
// lower case, so the upper-cased form never clashes with another state.
var keywords = map[string]bool{
	"end": true, "graph": true, "flowchart": true, "subgraph": true, "style": true,
	"class": true, "classdef": true, "click": true, "call": true, "href": true,
	"callback": true, "default": true, "interpolate": true, "direction": true,
	"linkstyle": true,
}

func nodeID(stateID string) string {
	if keywords[stateID] {
		return strings.ToUpper(stateID)
	}
	return stateID
}

// edgeKeys hands out the from-to-role edge ids, suffixing repeats so that
// two transitions over the same pair still get distinct ids.
type edgeKeys map[string]int

func (k edgeKeys) next(from, to, role string) string {
	key := from + "-" + to + "-" + role
	k[key]++
	if n := k[key]; n > 1 {
		return fmt.Sprintf("%s-%d", key, n)
	}
	return key
}

// Generate renders the view. Every transition yields one solid edge per
// from-state and allowed role, or one dotted edge per from-state when no
// role is allowed. Every state is declared exactly once, whether or not an
// edge touches it. Output is deterministic: transitions, then states, in
// list order.
func Generate(v filter.View) (string, error) {
	if err := checkView(v); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(header)

	keys := edgeKeys{}
	var styles []string
	for _, t := range v.Transitions {
		label := SanitizeLabel(t.Label)
		for _, from := range t.FromStates {
			if !t.Accessible() {
				writeEdge(&sb, from, keys.next(from, t.ToState, inaccessibleKey), "-.->", label, t.ToState)
				styles = append(styles, inaccessibleStyle)
				continue
			}
			for _, roleID := range t.AllowedRoles {
				writeEdge(&sb, from, keys.next(from, t.ToState, roleID), "-->", label, t.ToState)
				styles = append(styles, fmt.Sprintf(roleEdgeStyle, RoleColor(roleID)))
			}
		}
	}

	for _, s := range v.States {
		label := s.Label
		if label == "" {
			label = s.ID
		}
		fmt.Fprintf(&sb, "%s%s(\"%s\")\n", indent, nodeID(s.ID), SanitizeLabel(label))
	}

	for i, style := range styles {
		fmt.Fprintf(&sb, "%slinkStyle %d %s\n", indent, i, style)
	}

	return sb.String(), nil
}

func writeEdge(sb *strings.Builder, from, edgeID, arrow, label, to string) {
	if label == "" {
		fmt.Fprintf(sb, "%s%s %s@%s %s\n", indent, nodeID(from), edgeID, arrow, nodeID(to))
		return
	}
	fmt.Fprintf(sb, "%s%s %s@%s|%s| %s\n", indent, nodeID(from), edgeID, arrow, label, nodeID(to))
}

func checkView(v filter.View) error {
	w := domain.Workflow{
		States:      v.States,
		Transitions: make([]domain.Transition, len(v.Transitions)),
		Roles:       v.Roles,
	}
	for i, t := range v.Transitions {
		w.Transitions[i] = t.Transition
	}
	if err := domain.CheckShape(w); err != nil {
		return fmt.Errorf("generate diagram: %w", err)
	}
	return nil
}

// GenerateWorkflow prunes hidden states, annotates by the role selection
// and renders the result.
func GenerateWorkflow(w domain.Workflow, selectedRoleIDs, hiddenStateIDs []string) (string, error) {
	return Generate(filter.AnnotateByRoles(filter.PruneByHiddenStates(w, hiddenStateIDs), selectedRoleIDs))
}
