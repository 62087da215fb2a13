package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/RealZimboGuy/gopherflow-designer/internal/models"
	"github.com/RealZimboGuy/gopherflow-designer/internal/util"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/session"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

// DesignerController exposes the editing session over JSON. All handlers
// share one session, so every access goes through WithSession.
type DesignerController struct {
	AuthController
	mu           sync.Mutex
	session      *session.Session
	shareBaseURL string
}

func NewDesignerController(s *session.Session, auth AuthController, shareBaseURL string) *DesignerController {
	return &DesignerController{session: s, AuthController: auth, shareBaseURL: shareBaseURL}
}

// WithSession runs fn while holding the session lock.
func (c *DesignerController) WithSession(fn func(s *session.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.session)
}

// ShareBaseURL returns the configured base, or the root of the host the
// request came in on.
func (c *DesignerController) ShareBaseURL(r *http.Request) string {
	if c.shareBaseURL != "" {
		return c.shareBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: "/"}).String()
}

func decodeRequest[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	req, err := util.DecodeJSONBody[T](r)
	if err != nil {
		badRequest(w, r, "invalid JSON payload")
		return req, false
	}
	if err := domain.Validator().Struct(req); err != nil {
		badRequest(w, r, err.Error())
		return req, false
	}
	return req, true
}

func (c *DesignerController) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	_ = c.WithSession(func(s *session.Session) error {
		wf = s.Workflow()
		return nil
	})
	util.WriteJSONResponse(w, http.StatusOK, wf)
}

func (c *DesignerController) handleReplaceWorkflow(w http.ResponseWriter, r *http.Request) {
	req, err := util.DecodeJSONBody[domain.Workflow](r)
	if err != nil {
		badRequest(w, r, "invalid JSON payload")
		return
	}
	req.Normalize()
	err = c.WithSession(func(s *session.Session) error {
		return s.Replace(r.Context(), req)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, req)
}

func (c *DesignerController) handleClearWorkflow(w http.ResponseWriter, r *http.Request) {
	_ = c.WithSession(func(s *session.Session) error {
		s.Clear(r.Context())
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (c *DesignerController) handleGetView(w http.ResponseWriter, r *http.Request) {
	var resp models.ViewResponse
	_ = c.WithSession(func(s *session.Session) error {
		resp = models.ViewResponse{View: s.View(), SelectedRoles: s.SelectedRoles(), HiddenStates: s.HiddenStates()}
		if err := s.PersistStatus(); err != nil {
			resp.PersistError = err.Error()
		}
		return nil
	})
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *DesignerController) handleAddState(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.LabelRequest](w, r)
	if !ok {
		return
	}
	var state domain.State
	err := c.WithSession(func(s *session.Session) (err error) {
		state, err = s.AddState(r.Context(), req.Label)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, state)
}

func (c *DesignerController) handleRemoveState(w http.ResponseWriter, r *http.Request) {
	var cascade session.Cascade
	err := c.WithSession(func(s *session.Session) (err error) {
		cascade, err = s.RemoveState(r.Context(), r.PathValue("id"))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, cascade)
}

func (c *DesignerController) handlePreviewRemoveState(w http.ResponseWriter, r *http.Request) {
	var cascade session.Cascade
	err := c.WithSession(func(s *session.Session) (err error) {
		cascade, err = s.PreviewRemoveState(r.PathValue("id"))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, cascade)
}

func (c *DesignerController) handleSetStateHidden(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.SetHiddenRequest](w, r)
	if !ok {
		return
	}
	var resp models.SetHiddenResponse
	err := c.WithSession(func(s *session.Session) error {
		if err := s.SetStateHidden(r.PathValue("id"), *req.Hidden); err != nil {
			return err
		}
		resp.HiddenStates = s.HiddenStates()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *DesignerController) handleAddTransition(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.CreateTransitionRequest](w, r)
	if !ok {
		return
	}
	var t domain.Transition
	err := c.WithSession(func(s *session.Session) (err error) {
		t, err = s.AddTransition(r.Context(), req.Label, req.FromStates, req.ToState)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, t)
}

func (c *DesignerController) handleRemoveTransition(w http.ResponseWriter, r *http.Request) {
	var cascade session.Cascade
	err := c.WithSession(func(s *session.Session) (err error) {
		cascade, err = s.RemoveTransition(r.Context(), r.PathValue("id"))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, cascade)
}

func (c *DesignerController) handleAddRole(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.LabelRequest](w, r)
	if !ok {
		return
	}
	var role domain.Role
	err := c.WithSession(func(s *session.Session) (err error) {
		role, err = s.AddRole(r.Context(), req.Label)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusCreated, role)
}

func (c *DesignerController) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	err := c.WithSession(func(s *session.Session) error {
		return s.RemoveRole(r.Context(), r.PathValue("id"))
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DesignerController) handleTogglePermission(w http.ResponseWriter, r *http.Request) {
	resp := models.TogglePermissionResponse{RoleID: r.PathValue("id"), TransitionID: r.PathValue("transitionId")}
	err := c.WithSession(func(s *session.Session) (err error) {
		resp.Granted, err = s.TogglePermission(r.Context(), resp.RoleID, resp.TransitionID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *DesignerController) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	resp := models.ToggleSelectionResponse{RoleID: r.PathValue("id")}
	err := c.WithSession(func(s *session.Session) (err error) {
		resp.Selected, err = s.ToggleRoleSelection(resp.RoleID)
		resp.SelectedRoles = s.SelectedRoles()
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *DesignerController) handleSetSelectedRoles(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.SetSelectedRolesRequest](w, r)
	if !ok {
		return
	}
	var resp models.SelectedRolesResponse
	_ = c.WithSession(func(s *session.Session) error {
		s.SetSelectedRoles(req.RoleIDs)
		resp.SelectedRoles = s.SelectedRoles()
		return nil
	})
	util.WriteJSONResponse(w, http.StatusOK, resp)
}

func (c *DesignerController) handleReorder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.ReorderRequest](w, r)
	if !ok {
		return
	}
	var cascade session.Cascade
	err := c.WithSession(func(s *session.Session) (err error) {
		cascade, err = s.Reorder(r.Context(), session.Collection(r.PathValue("collection")), req.IDs)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, cascade)
}

func (c *DesignerController) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var out string
	err := c.WithSession(func(s *session.Session) (err error) {
		out, err = s.Diagram()
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, out)
}

func (c *DesignerController) handleColors(w http.ResponseWriter, r *http.Request) {
	var colors map[string]string
	_ = c.WithSession(func(s *session.Session) error {
		colors = s.RoleColors()
		return nil
	})
	util.WriteJSONResponse(w, http.StatusOK, colors)
}

func (c *DesignerController) handleShare(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	_ = c.WithSession(func(s *session.Session) error {
		wf = s.Workflow()
		return nil
	})
	if wf.Empty() {
		badRequest(w, r, "an empty workflow cannot be shared")
		return
	}
	token, err := share.Encode(wf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	link, err := share.BuildShareURL(wf, c.ShareBaseURL(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	util.WriteJSONResponse(w, http.StatusOK, models.ShareResponse{URL: link, Token: token})
}

func (c *DesignerController) handleImport(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[models.ImportRequest](w, r)
	if !ok {
		return
	}
	var (
		wf  *domain.Workflow
		err error
	)
	if req.Token != "" {
		wf, err = share.Decode(req.Token)
	} else {
		wf, err = share.ExtractFromURL(req.URL)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if wf == nil {
		badRequest(w, r, "url has no "+share.QueryParam+" parameter")
		return
	}
	err = c.WithSession(func(s *session.Session) error {
		return s.Replace(r.Context(), *wf)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Imported shared workflow", "states", len(wf.States), "transitions", len(wf.Transitions), "roles", len(wf.Roles))
	util.WriteJSONResponse(w, http.StatusOK, wf)
}
