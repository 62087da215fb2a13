package models

import "github.com/RealZimboGuy/gopherflow-designer/pkg/designer/filter"

type LabelRequest struct {
	Label string `json:"label"`
}

type CreateTransitionRequest struct {
	Label      string   `json:"label"`
	FromStates []string `json:"fromStates"`
	ToState    string   `json:"toState"`
}

type SetHiddenRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

type SetHiddenResponse struct {
	HiddenStates []string `json:"hiddenStates"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" validate:"dive,required"`
}

type TogglePermissionResponse struct {
	RoleID       string `json:"roleId"`
	TransitionID string `json:"transitionId"`
	Granted      bool   `json:"granted"`
}

type ToggleSelectionResponse struct {
	RoleID        string   `json:"roleId"`
	Selected      bool     `json:"selected"`
	SelectedRoles []string `json:"selectedRoles"`
}

// ViewResponse is the filtered, renderable workflow with the current
// selection state.
type ViewResponse struct {
	filter.View
	SelectedRoles []string `json:"selectedRoles"`
	HiddenStates  []string `json:"hiddenStates"`
	// PersistError is the last storage failure, empty once a save succeeds.
	PersistError string `json:"persistError,omitempty"`
}

type SetSelectedRolesRequest struct {
	RoleIDs []string `json:"roleIds" validate:"dive,required"`
}

type SelectedRolesResponse struct {
	SelectedRoles []string `json:"selectedRoles"`
}

type ShareResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// ImportRequest carries either a full share URL or the bare token.
type ImportRequest struct {
	URL   string `json:"url" validate:"required_without=Token"`
	Token string `json:"token" validate:"required_without=URL"`
}
