// Package session holds the single workflow being edited and exposes its
// mutation API. Every mutation is atomic: it works on a private copy and
// replaces the session state only when all dependent updates succeeded.
//
// A Session does no locking. Hosts that share one between goroutines must
// serialize access themselves.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/diagram"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/filter"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/machinename"
)

// Collection names a reorderable list of the workflow.
type Collection string

const (
	CollectionStates      Collection = "states"
	CollectionTransitions Collection = "transitions"
	CollectionRoles       Collection = "roles"
)

type Session struct {
	workflow domain.Workflow
	selected []string // role filter; empty shows every role
	hidden   []string // states left out of the diagram

	store      Store
	key        string
	logger     *slog.Logger
	persistErr error
}

// New starts a session on a copy of initial. Every role starts selected and
// no state is hidden.
func New(initial domain.Workflow, opts ...Option) *Session {
	s := &Session{
		workflow: initial.Clone(),
		logger:   slog.Default(),
	}
	s.selected = roleIDs(s.workflow.Roles)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open starts a session backed by store. With reset the stored document is
// overwritten by initial; otherwise the stored workflow is used when present.
// Store failures are logged and fall back to initial.
func Open(ctx context.Context, store Store, key string, initial domain.Workflow, reset bool, opts ...Option) *Session {
	s := New(initial, append(opts, WithStore(store, key))...)
	if reset {
		s.logger.InfoContext(ctx, "Resetting stored workflow", "key", key)
		s.persist(ctx)
		return s
	}

	stored, err := store.Load(ctx, key)
	if err != nil {
		s.persistErr = domain.NewStoreError("Load", key, err)
		s.logger.ErrorContext(ctx, "Failed to load stored workflow, using initial", "key", key, "error", err)
		return s
	}
	if stored == nil {
		s.logger.InfoContext(ctx, "No stored workflow, using initial", "key", key)
		return s
	}
	if err := domain.CheckShape(*stored); err != nil {
		s.logger.WarnContext(ctx, "Stored workflow is malformed, using initial", "key", key, "error", err)
		return s
	}
	s.workflow = stored.Clone()
	s.selected = roleIDs(s.workflow.Roles)
	s.logger.InfoContext(ctx, "Loaded stored workflow", "key", key,
		"states", len(s.workflow.States), "transitions", len(s.workflow.Transitions), "roles", len(s.workflow.Roles))
	return s
}

func (s *Session) begin() *draft {
	return &draft{
		workflow: s.workflow.Clone(),
		selected: slices.Clone(s.selected),
		hidden:   slices.Clone(s.hidden),
	}
}

func (s *Session) commit(ctx context.Context, d *draft) {
	s.workflow = d.workflow
	s.selected = d.selected
	s.hidden = d.hidden
	s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.key, s.workflow.Clone()); err != nil {
		s.persistErr = domain.NewStoreError("Save", s.key, err)
		s.logger.ErrorContext(ctx, "Failed to persist workflow", "key", s.key, "error", err)
		return
	}
	s.persistErr = nil
}

// Clear empties the workflow and the filter state. A store that implements
// Deleter drops the stored document; any other store saves the empty
// workflow.
func (s *Session) Clear(ctx context.Context) {
	s.workflow = domain.Workflow{}.Clone()
	s.selected = []string{}
	s.hidden = []string{}
	deleter, ok := s.store.(Deleter)
	if !ok {
		s.persist(ctx)
		return
	}
	if err := deleter.Delete(ctx, s.key); err != nil {
		s.persistErr = domain.NewStoreError("Delete", s.key, err)
		s.logger.ErrorContext(ctx, "Failed to delete stored workflow", "key", s.key, "error", err)
		return
	}
	s.persistErr = nil
	s.logger.InfoContext(ctx, "Cleared workflow", "key", s.key)
}

// PersistStatus returns the last persistence failure, or nil once a save
// succeeded. It never affects the in-memory workflow.
func (s *Session) PersistStatus() error {
	return s.persistErr
}

// newID trims the label and derives its machine name, reporting blank
// labels with requiredMsg.
func newID(label, requiredMsg string) (string, string, error) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", "", domain.NewValidationError("label", requiredMsg)
	}
	id := machinename.FromLabel(trimmed)
	if !machinename.Valid(id) {
		return "", "", domain.NewValidationError("id", domain.MsgInvalidID)
	}
	return id, trimmed, nil
}

func (s *Session) AddState(ctx context.Context, label string) (domain.State, error) {
	id, trimmed, err := newID(label, domain.MsgStateLabelRequired)
	if err != nil {
		return domain.State{}, err
	}
	if _, ok := s.workflow.StateByID(id); ok {
		return domain.State{}, domain.NewValidationError("id", domain.MsgDuplicateID)
	}

	state := domain.State{ID: id, Label: trimmed}
	d := s.begin()
	if _, err := d.replaceStates(append(d.workflow.States, state)); err != nil {
		return domain.State{}, err
	}
	s.commit(ctx, d)
	s.logger.DebugContext(ctx, "Added state", "id", id)
	return state, nil
}

// RemoveState removes the state together with every transition that starts
// at or leads to it and every permission on those transitions.
func (s *Session) RemoveState(ctx context.Context, stateID string) (Cascade, error) {
	d, cascade, err := s.removeState(stateID)
	if err != nil {
		return Cascade{}, err
	}
	s.commit(ctx, d)
	s.logger.DebugContext(ctx, "Removed state", "id", stateID, "transitions", cascade.Transitions)
	return cascade, nil
}

// PreviewRemoveState reports what RemoveState would take with it, without
// changing anything. Callers use it to ask for confirmation.
func (s *Session) PreviewRemoveState(stateID string) (Cascade, error) {
	_, cascade, err := s.removeState(stateID)
	return cascade, err
}

func (s *Session) removeState(stateID string) (*draft, Cascade, error) {
	if _, ok := s.workflow.StateByID(stateID); !ok {
		return nil, Cascade{}, domain.NewNotFoundError("state", stateID)
	}
	d := s.begin()
	kept := slices.DeleteFunc(slices.Clone(d.workflow.States), func(st domain.State) bool { return st.ID == stateID })
	cascade, err := d.replaceStates(kept)
	if err != nil {
		return nil, Cascade{}, err
	}
	return d, cascade, nil
}

// AddTransition appends a transition. Referenced states are not required to
// exist.
func (s *Session) AddTransition(ctx context.Context, label string, fromStates []string, toState string) (domain.Transition, error) {
	if strings.TrimSpace(label) == "" {
		return domain.Transition{}, domain.NewValidationError("label", domain.MsgTransitionLabelRequired)
	}
	from := make([]string, 0, len(fromStates))
	for _, st := range fromStates {
		if st == "" {
			return domain.Transition{}, domain.NewValidationError("fromStates", domain.MsgFromStatesRequired)
		}
		if !slices.Contains(from, st) {
			from = append(from, st)
		}
	}
	if len(from) == 0 {
		return domain.Transition{}, domain.NewValidationError("fromStates", domain.MsgFromStatesRequired)
	}
	if toState == "" {
		return domain.Transition{}, domain.NewValidationError("toState", domain.MsgToStateRequired)
	}
	id, trimmed, err := newID(label, domain.MsgTransitionLabelRequired)
	if err != nil {
		return domain.Transition{}, err
	}
	if _, ok := s.workflow.TransitionByID(id); ok {
		return domain.Transition{}, domain.NewValidationError("id", domain.MsgDuplicateID)
	}

	t := domain.Transition{ID: id, Label: trimmed, FromStates: from, ToState: toState}
	d := s.begin()
	if _, err := d.replaceTransitions(append(d.workflow.Transitions, t)); err != nil {
		return domain.Transition{}, err
	}
	s.commit(ctx, d)
	s.logger.DebugContext(ctx, "Added transition", "id", id, "from", from, "to", toState)
	return t, nil
}

// RemoveTransition removes the transition and every permission on it.
func (s *Session) RemoveTransition(ctx context.Context, transitionID string) (Cascade, error) {
	if _, ok := s.workflow.TransitionByID(transitionID); !ok {
		return Cascade{}, domain.NewNotFoundError("transition", transitionID)
	}
	d := s.begin()
	kept := slices.DeleteFunc(slices.Clone(d.workflow.Transitions), func(t domain.Transition) bool { return t.ID == transitionID })
	cascade, err := d.replaceTransitions(kept)
	if err != nil {
		return Cascade{}, err
	}
	s.commit(ctx, d)
	return cascade, nil
}

// AddRole appends a role with no permissions and selects it.
func (s *Session) AddRole(ctx context.Context, label string) (domain.Role, error) {
	id, trimmed, err := newID(label, domain.MsgRoleLabelRequired)
	if err != nil {
		return domain.Role{}, err
	}
	if _, ok := s.workflow.RoleByID(id); ok {
		return domain.Role{}, domain.NewValidationError("id", domain.MsgDuplicateID)
	}

	role := domain.Role{ID: id, Label: trimmed, Permissions: []string{}}
	d := s.begin()
	if _, err := d.replaceRoles(append(d.workflow.Roles, role)); err != nil {
		return domain.Role{}, err
	}
	s.commit(ctx, d)
	s.logger.DebugContext(ctx, "Added role", "id", id)
	return role, nil
}

// RemoveRole removes the role and drops it from the role selection.
func (s *Session) RemoveRole(ctx context.Context, roleID string) error {
	if _, ok := s.workflow.RoleByID(roleID); !ok {
		return domain.NewNotFoundError("role", roleID)
	}
	d := s.begin()
	kept := slices.DeleteFunc(slices.Clone(d.workflow.Roles), func(r domain.Role) bool { return r.ID == roleID })
	if _, err := d.replaceRoles(kept); err != nil {
		return err
	}
	s.commit(ctx, d)
	return nil
}

// TogglePermission grants the transition to the role, or revokes it when
// already granted. It returns whether the role holds the permission after
// the call.
func (s *Session) TogglePermission(ctx context.Context, roleID, transitionID string) (bool, error) {
	if _, ok := s.workflow.RoleByID(roleID); !ok {
		return false, domain.NewNotFoundError("role", roleID)
	}
	if _, ok := s.workflow.TransitionByID(transitionID); !ok {
		return false, domain.NewNotFoundError("transition", transitionID)
	}

	d := s.begin()
	roles := d.workflow.Roles
	i := slices.IndexFunc(roles, func(r domain.Role) bool { return r.ID == roleID })
	granted := !roles[i].HasPermission(transitionID)
	if granted {
		roles[i].Permissions = append(roles[i].Permissions, transitionID)
	} else {
		roles[i].Permissions = slices.DeleteFunc(roles[i].Permissions, func(p string) bool { return p == transitionID })
	}
	if _, err := d.replaceRoles(roles); err != nil {
		return false, err
	}
	s.commit(ctx, d)
	return granted, nil
}

// Reorder rearranges a collection to follow ids. Ids must name existing
// entities; entities left out are removed with the usual cascades.
func (s *Session) Reorder(ctx context.Context, collection Collection, ids []string) (Cascade, error) {
	if err := checkIDs(ids); err != nil {
		return Cascade{}, err
	}
	d := s.begin()
	var (
		cascade Cascade
		err     error
	)
	switch collection {
	case CollectionStates:
		next := make([]domain.State, 0, len(ids))
		for _, id := range ids {
			st, ok := d.workflow.StateByID(id)
			if !ok {
				return Cascade{}, domain.NewNotFoundError("state", id)
			}
			next = append(next, st)
		}
		cascade, err = d.replaceStates(next)
	case CollectionTransitions:
		next := make([]domain.Transition, 0, len(ids))
		for _, id := range ids {
			t, ok := d.workflow.TransitionByID(id)
			if !ok {
				return Cascade{}, domain.NewNotFoundError("transition", id)
			}
			next = append(next, t)
		}
		cascade, err = d.replaceTransitions(next)
	case CollectionRoles:
		next := make([]domain.Role, 0, len(ids))
		for _, id := range ids {
			r, ok := d.workflow.RoleByID(id)
			if !ok {
				return Cascade{}, domain.NewNotFoundError("role", id)
			}
			next = append(next, r)
		}
		cascade, err = d.replaceRoles(next)
	default:
		return Cascade{}, domain.NewNotFoundError("collection", string(collection))
	}
	if err != nil {
		return Cascade{}, err
	}
	s.commit(ctx, d)
	return cascade, nil
}

// ReplaceStates installs a whole new state list. Dropped states cascade as
// in RemoveState.
func (s *Session) ReplaceStates(ctx context.Context, states []domain.State) (Cascade, error) {
	d := s.begin()
	cascade, err := d.replaceStates(states)
	if err != nil {
		return Cascade{}, err
	}
	s.commit(ctx, d)
	return cascade, nil
}

// ReplaceTransitions installs a whole new transition list. Dropped
// transitions lose their permissions.
func (s *Session) ReplaceTransitions(ctx context.Context, transitions []domain.Transition) (Cascade, error) {
	if err := checkIDs(transitionIDs(transitions)); err != nil {
		return Cascade{}, err
	}
	if err := domain.CheckShape(domain.Workflow{Transitions: transitions}); err != nil {
		return Cascade{}, fmt.Errorf("replace transitions: %w", err)
	}
	d := s.begin()
	cascade, err := d.replaceTransitions(transitions)
	if err != nil {
		return Cascade{}, err
	}
	s.commit(ctx, d)
	return cascade, nil
}

// ReplaceRoles installs a whole new role list. New roles are selected,
// dropped roles leave the selection.
func (s *Session) ReplaceRoles(ctx context.Context, roles []domain.Role) error {
	d := s.begin()
	if _, err := d.replaceRoles(roles); err != nil {
		return err
	}
	s.commit(ctx, d)
	return nil
}

// Replace loads a whole workflow, as when opening a shared link. The role
// selection is reset to every role and no state is hidden.
func (s *Session) Replace(ctx context.Context, w domain.Workflow) error {
	if err := domain.CheckShape(w); err != nil {
		return fmt.Errorf("replace workflow: %w", err)
	}
	d := &draft{workflow: w.Clone()}
	d.selected = roleIDs(d.workflow.Roles)
	s.commit(ctx, d)
	s.logger.InfoContext(ctx, "Replaced workflow", "states", len(w.States), "transitions", len(w.Transitions), "roles", len(w.Roles))
	return nil
}

// Workflow returns a copy of the current workflow.
func (s *Session) Workflow() domain.Workflow {
	return s.workflow.Clone()
}

// SelectedRoles returns the role filter in workflow role order.
func (s *Session) SelectedRoles() []string {
	out := make([]string, 0, len(s.selected))
	for _, r := range s.workflow.Roles {
		if slices.Contains(s.selected, r.ID) {
			out = append(out, r.ID)
		}
	}
	return out
}

// ToggleRoleSelection flips one role in the filter and returns whether it is
// selected afterwards.
func (s *Session) ToggleRoleSelection(roleID string) (bool, error) {
	if _, ok := s.workflow.RoleByID(roleID); !ok {
		return false, domain.NewNotFoundError("role", roleID)
	}
	if slices.Contains(s.selected, roleID) {
		s.selected = slices.DeleteFunc(s.selected, func(id string) bool { return id == roleID })
		return false, nil
	}
	s.selected = append(s.selected, roleID)
	return true, nil
}

// SetSelectedRoles replaces the role filter. Ids that name no role are
// dropped.
func (s *Session) SetSelectedRoles(roleIDs []string) {
	next := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if _, ok := s.workflow.RoleByID(id); ok && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	s.selected = next
}

// HiddenStates returns the states left out of the diagram in workflow state
// order.
func (s *Session) HiddenStates() []string {
	out := make([]string, 0, len(s.hidden))
	for _, st := range s.workflow.States {
		if slices.Contains(s.hidden, st.ID) {
			out = append(out, st.ID)
		}
	}
	return out
}

// SetStateHidden hides or shows one state in the diagram. Hiding never
// changes the workflow itself.
func (s *Session) SetStateHidden(stateID string, hidden bool) error {
	if _, ok := s.workflow.StateByID(stateID); !ok {
		return domain.NewNotFoundError("state", stateID)
	}
	has := slices.Contains(s.hidden, stateID)
	switch {
	case hidden && !has:
		s.hidden = append(s.hidden, stateID)
	case !hidden && has:
		s.hidden = slices.DeleteFunc(s.hidden, func(id string) bool { return id == stateID })
	}
	return nil
}

// View annotates the visible part of the workflow with the selected roles.
func (s *Session) View() filter.View {
	visible := filter.PruneByHiddenStates(s.workflow, s.hidden)
	return filter.AnnotateByRoles(visible, s.selected)
}

// Diagram renders the current view as Mermaid source.
func (s *Session) Diagram() (string, error) {
	return diagram.Generate(s.View())
}

// RoleColors maps every role id to its diagram color.
func (s *Session) RoleColors() map[string]string {
	return diagram.RoleColors(s.workflow)
}

// InaccessibleTransitions lists transitions no selected role may fire.
func (s *Session) InaccessibleTransitions() []domain.Transition {
	return filter.InaccessibleTransitions(s.workflow, s.selected)
}
