package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

type MockStore struct {
	LoadFunc func(ctx context.Context, key string) (*domain.Workflow, error)
	SaveFunc func(ctx context.Context, key string, w domain.Workflow) error
	saved    []domain.Workflow
}

func (m *MockStore) Load(ctx context.Context, key string) (*domain.Workflow, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	return nil, nil
}

func (m *MockStore) Save(ctx context.Context, key string, w domain.Workflow) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, key, w)
	}
	m.saved = append(m.saved, w)
	return nil
}

type MockDeletingStore struct {
	MockStore
	DeleteFunc func(ctx context.Context, key string) error
	deleted    []string
}

func (m *MockDeletingStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.deleted = append(m.deleted, key)
	return nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func publishing() domain.Workflow {
	return domain.Workflow{
		States: []domain.State{
			{ID: "draft", Label: "Draft"},
			{ID: "review", Label: "Review"},
			{ID: "published", Label: "Published"},
		},
		Transitions: []domain.Transition{
			{ID: "submit", Label: "Submit", FromStates: []string{"draft"}, ToState: "review"},
			{ID: "publish", Label: "Publish", FromStates: []string{"review"}, ToState: "published"},
			{ID: "retract", Label: "Retract", FromStates: []string{"review", "published"}, ToState: "draft"},
		},
		Roles: []domain.Role{
			{ID: "writer", Label: "Writer", Permissions: []string{"submit", "retract"}},
			{ID: "editor", Label: "Editor", Permissions: []string{"publish", "retract"}},
		},
	}
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Message
}

func TestNewSelectsEveryRole(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))
	assert.Equal(t, []string{"writer", "editor"}, s.SelectedRoles())
	assert.Empty(t, s.HiddenStates())
}

func TestNewCopiesInitial(t *testing.T) {
	w := publishing()
	s := New(w)
	w.States[0].Label = "changed"
	assert.Equal(t, "Draft", s.Workflow().States[0].Label)

	got := s.Workflow()
	got.Roles[0].Permissions[0] = "changed"
	assert.Equal(t, "submit", s.Workflow().Roles[0].Permissions[0])
}

func TestAddState(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Workflow{}, WithLogger(quiet))

	st, err := s.AddState(ctx, "  In Review  ")
	require.NoError(t, err)
	assert.Equal(t, domain.State{ID: "in_review", Label: "In Review"}, st)
	assert.Len(t, s.Workflow().States, 1)
}

func TestAddStateValidation(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Workflow{}, WithLogger(quiet))

	_, err := s.AddState(ctx, "   ")
	assert.Equal(t, domain.MsgStateLabelRequired, validationMessage(t, err))

	_, err = s.AddState(ctx, "!!!")
	assert.Equal(t, domain.MsgInvalidID, validationMessage(t, err))

	assert.Empty(t, s.Workflow().States)
}

func TestAddStateDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Workflow{}, WithLogger(quiet))

	_, err := s.AddState(ctx, "Draft")
	require.NoError(t, err)
	_, err = s.AddState(ctx, "Draft")
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, domain.MsgDuplicateID, validationMessage(t, err))
	assert.Len(t, s.Workflow().States, 1)
}

func TestRemoveStateCascades(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))
	require.NoError(t, s.SetStateHidden("review", true))

	cascade, err := s.RemoveState(ctx, "review")
	require.NoError(t, err)

	assert.Equal(t, []string{"review"}, cascade.States)
	assert.ElementsMatch(t, []string{"submit", "publish", "retract"}, cascade.Transitions)
	assert.ElementsMatch(t, []Grant{
		{RoleID: "writer", TransitionID: "submit"},
		{RoleID: "writer", TransitionID: "retract"},
		{RoleID: "editor", TransitionID: "publish"},
		{RoleID: "editor", TransitionID: "retract"},
	}, cascade.Grants)

	w := s.Workflow()
	for _, tr := range w.Transitions {
		assert.False(t, tr.References("review"), tr.ID)
	}
	for _, r := range w.Roles {
		for _, p := range r.Permissions {
			assert.NotContains(t, cascade.Transitions, p)
		}
	}
	assert.Empty(t, s.HiddenStates())
}

func TestRemoveStateKeepsUnrelatedTransitions(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	cascade, err := s.RemoveState(ctx, "published")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"publish", "retract"}, cascade.Transitions)

	w := s.Workflow()
	require.Len(t, w.Transitions, 1)
	assert.Equal(t, "submit", w.Transitions[0].ID)
	assert.Equal(t, []string{"submit"}, w.Roles[0].Permissions)
	assert.Empty(t, w.Roles[1].Permissions)
}

func TestRemoveStateUnknown(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))
	_, err := s.RemoveState(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, publishing(), s.Workflow())
}

func TestPreviewRemoveStateChangesNothing(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))

	cascade, err := s.PreviewRemoveState("draft")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"submit", "retract"}, cascade.Transitions)
	assert.False(t, cascade.Empty())
	assert.Equal(t, publishing(), s.Workflow())
}

func TestAddTransition(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	tr, err := s.AddTransition(ctx, "Send Back", []string{"review", "review", "published"}, "draft")
	require.NoError(t, err)
	assert.Equal(t, "send_back", tr.ID)
	assert.Equal(t, []string{"review", "published"}, tr.FromStates)

	// Dangling references are accepted.
	_, err = s.AddTransition(ctx, "Archive", []string{"published"}, "archived")
	require.NoError(t, err)
	assert.Len(t, s.Workflow().Transitions, 5)
}

func TestAddTransitionValidationOrder(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	tests := []struct {
		name  string
		label string
		from  []string
		to    string
		msg   string
	}{
		{"blank label wins", " ", nil, "", domain.MsgTransitionLabelRequired},
		{"no from states", "Go", nil, "", domain.MsgFromStatesRequired},
		{"blank from state", "Go", []string{""}, "draft", domain.MsgFromStatesRequired},
		{"no to state", "Go", []string{"draft"}, "", domain.MsgToStateRequired},
		{"invalid id", "???", []string{"draft"}, "review", domain.MsgInvalidID},
		{"duplicate id", "Submit", []string{"draft"}, "review", domain.MsgDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTransition(ctx, tt.label, tt.from, tt.to)
			assert.Equal(t, tt.msg, validationMessage(t, err))
		})
	}
	assert.Equal(t, publishing(), s.Workflow())
}

func TestRemoveTransitionStripsPermissions(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	cascade, err := s.RemoveTransition(ctx, "retract")
	require.NoError(t, err)
	assert.Equal(t, []string{"retract"}, cascade.Transitions)
	assert.Len(t, cascade.Grants, 2)

	w := s.Workflow()
	assert.Equal(t, []string{"submit"}, w.Roles[0].Permissions)
	assert.Equal(t, []string{"publish"}, w.Roles[1].Permissions)

	_, err = s.RemoveTransition(ctx, "retract")
	assert.True(t, domain.IsNotFound(err))
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	r, err := s.AddRole(ctx, "Admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", r.ID)
	assert.NotNil(t, r.Permissions)
	assert.Equal(t, []string{"writer", "editor", "admin"}, s.SelectedRoles())

	_, err = s.AddRole(ctx, "")
	assert.Equal(t, domain.MsgRoleLabelRequired, validationMessage(t, err))

	require.NoError(t, s.RemoveRole(ctx, "writer"))
	assert.Equal(t, []string{"editor", "admin"}, s.SelectedRoles())
	assert.Len(t, s.Workflow().Roles, 2)

	assert.ErrorIs(t, s.RemoveRole(ctx, "writer"), domain.ErrNotFound)
}

func TestTogglePermission(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	granted, err := s.TogglePermission(ctx, "writer", "publish")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, []string{"submit", "retract", "publish"}, s.Workflow().Roles[0].Permissions)

	granted, err = s.TogglePermission(ctx, "writer", "submit")
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, []string{"retract", "publish"}, s.Workflow().Roles[0].Permissions)

	_, err = s.TogglePermission(ctx, "ghost", "submit")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.TogglePermission(ctx, "writer", "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	s := New(publishing(), WithLogger(quiet))

	_, err := s.Reorder(ctx, CollectionStates, []string{"published", "draft", "review"})
	require.NoError(t, err)
	assert.Equal(t, "published", s.Workflow().States[0].ID)

	_, err = s.Reorder(ctx, CollectionRoles, []string{"editor", "writer"})
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "writer"}, s.SelectedRoles())

	cascade, err := s.Reorder(ctx, CollectionTransitions, []string{"publish", "submit"})
	require.NoError(t, err)
	assert.Equal(t, []string{"retract"}, cascade.Transitions)

	_, err = s.Reorder(ctx, CollectionStates, []string{"draft", "draft"})
	assert.Equal(t, domain.MsgDuplicateID, validationMessage(t, err))

	_, err = s.Reorder(ctx, CollectionStates, []string{"nowhere"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Reorder(ctx, Collection("widgets"), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplaceStatesRejectsInvalidIDs(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))
	_, err := s.ReplaceStates(context.Background(), []domain.State{{ID: "Bad Id", Label: "x"}})
	assert.Equal(t, domain.MsgInvalidID, validationMessage(t, err))
	assert.Equal(t, publishing(), s.Workflow())
}

func TestReplaceTransitionsRejectsMissingTarget(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))
	_, err := s.ReplaceTransitions(context.Background(), []domain.Transition{
		{ID: "go", Label: "Go", FromStates: []string{"draft"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, publishing(), s.Workflow())
}

func TestReplaceResetsSelection(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Workflow{}, WithLogger(quiet))

	require.NoError(t, s.Replace(ctx, publishing()))
	assert.Equal(t, publishing(), s.Workflow())
	assert.Equal(t, []string{"writer", "editor"}, s.SelectedRoles())

	bad := publishing()
	bad.States = append(bad.States, domain.State{ID: "draft", Label: "Again"})
	assert.ErrorIs(t, s.Replace(ctx, bad), domain.ErrInvalidArgument)
}

func TestSelectionAndViews(t *testing.T) {
	s := New(publishing(), WithLogger(quiet))

	selected, err := s.ToggleRoleSelection("editor")
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, []string{"writer"}, s.SelectedRoles())

	inaccessible := s.InaccessibleTransitions()
	require.Len(t, inaccessible, 1)
	assert.Equal(t, "publish", inaccessible[0].ID)

	s.SetSelectedRoles([]string{"ghost", "editor", "editor"})
	assert.Equal(t, []string{"editor"}, s.SelectedRoles())

	s.SetSelectedRoles(nil)
	assert.Empty(t, s.InaccessibleTransitions())

	require.NoError(t, s.SetStateHidden("published", true))
	v := s.View()
	assert.Len(t, v.States, 2)
	require.Len(t, v.Transitions, 1)
	assert.Equal(t, []string{"writer"}, v.Transitions[0].AllowedRoles)
	assert.Len(t, s.Workflow().States, 3)

	out, err := s.Diagram()
	require.NoError(t, err)
	assert.Contains(t, out, `draft("Draft")`)
	assert.NotContains(t, out, "published")

	require.NoError(t, s.SetStateHidden("published", false))
	assert.Empty(t, s.HiddenStates())
	assert.ErrorIs(t, s.SetStateHidden("ghost", true), domain.ErrNotFound)

	assert.Equal(t, map[string]string{"writer": "#FB8500", "editor": "#88498F"}, s.RoleColors())
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}
	s := New(domain.Workflow{}, WithLogger(quiet), WithStore(store, "workflow"))

	_, err := s.AddState(ctx, "Draft")
	require.NoError(t, err)
	_, err = s.AddState(ctx, "Draft")
	require.Error(t, err)
	_, err = s.AddRole(ctx, "Writer")
	require.NoError(t, err)

	require.Len(t, store.saved, 2)
	assert.Len(t, store.saved[1].States, 1)
	assert.Len(t, store.saved[1].Roles, 1)
	assert.NoError(t, s.PersistStatus())
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{SaveFunc: func(ctx context.Context, key string, w domain.Workflow) error {
		return errors.New("disk full")
	}}
	s := New(domain.Workflow{}, WithLogger(quiet), WithStore(store, "workflow"))

	_, err := s.AddState(ctx, "Draft")
	require.NoError(t, err)
	assert.Len(t, s.Workflow().States, 1)
	assert.ErrorIs(t, s.PersistStatus(), domain.ErrStore)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("uses stored workflow", func(t *testing.T) {
		stored := publishing()
		store := &MockStore{LoadFunc: func(ctx context.Context, key string) (*domain.Workflow, error) {
			assert.Equal(t, "workflow", key)
			return &stored, nil
		}}
		s := Open(ctx, store, "workflow", domain.Workflow{}, false, WithLogger(quiet))
		assert.Equal(t, publishing(), s.Workflow())
		assert.Equal(t, []string{"writer", "editor"}, s.SelectedRoles())
	})

	t.Run("falls back when missing", func(t *testing.T) {
		s := Open(ctx, &MockStore{}, "workflow", publishing(), false, WithLogger(quiet))
		assert.Equal(t, publishing(), s.Workflow())
	})

	t.Run("falls back on load error", func(t *testing.T) {
		store := &MockStore{LoadFunc: func(ctx context.Context, key string) (*domain.Workflow, error) {
			return nil, errors.New("connection refused")
		}}
		s := Open(ctx, store, "workflow", publishing(), false, WithLogger(quiet))
		assert.Equal(t, publishing(), s.Workflow())
		assert.ErrorIs(t, s.PersistStatus(), domain.ErrStore)
	})

	t.Run("reset overwrites stored", func(t *testing.T) {
		store := &MockStore{LoadFunc: func(ctx context.Context, key string) (*domain.Workflow, error) {
			t.Fatal("load must not be called on reset")
			return nil, nil
		}}
		s := Open(ctx, store, "workflow", publishing(), true, WithLogger(quiet))
		assert.Equal(t, publishing(), s.Workflow())
		require.Len(t, store.saved, 1)
		assert.Equal(t, publishing(), store.saved[0])
	})
}

func TestClearDeletesStoredDocument(t *testing.T) {
	ctx := context.Background()
	store := &MockDeletingStore{}
	s := New(publishing(), WithLogger(quiet), WithStore(store, "workflow"))
	require.NoError(t, s.SetStateHidden("draft", true))

	s.Clear(ctx)

	assert.Equal(t, []string{"workflow"}, store.deleted)
	assert.Empty(t, store.saved)
	assert.True(t, s.Workflow().Empty())
	assert.NotNil(t, s.Workflow().States)
	assert.Empty(t, s.SelectedRoles())
	assert.Empty(t, s.HiddenStates())
	assert.NoError(t, s.PersistStatus())
}

func TestClearSavesEmptyWithoutDeleter(t *testing.T) {
	store := &MockStore{}
	s := New(publishing(), WithLogger(quiet), WithStore(store, "workflow"))

	s.Clear(context.Background())

	require.Len(t, store.saved, 1)
	assert.True(t, store.saved[0].Empty())
}

func TestClearReportsDeleteFailure(t *testing.T) {
	store := &MockDeletingStore{DeleteFunc: func(ctx context.Context, key string) error {
		return errors.New("connection reset")
	}}
	s := New(publishing(), WithLogger(quiet), WithStore(store, "workflow"))

	s.Clear(context.Background())

	assert.True(t, s.Workflow().Empty())
	assert.ErrorIs(t, s.PersistStatus(), domain.ErrStore)
}
