package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"github.com/RealZimboGuy/gopherflow-designer/internal/controllers"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/diagram"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/session"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

//go:embed templates
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/index.html"))

type WebController struct {
	designer *controllers.DesignerController
}

type legendRow struct {
	Label     string
	Color     template.CSS
	ClassName string
	Selected  bool
}

type pageData struct {
	Title        string
	Empty        bool
	Diagram      string
	Roles        []legendRow
	HiddenStates []string
	ShareURL     string
	PersistError string
}

func NewWebController(designer *controllers.DesignerController) *WebController {
	return &WebController{designer: designer}
}

func (wc *WebController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", wc.designer.RequireAuth(wc.handler))
}

func (wc *WebController) handler(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get(share.QueryParam); token != "" {
		wc.importShared(w, r, token)
		return
	}

	data := pageData{Title: "Workflow Designer"}
	err := wc.designer.WithSession(func(s *session.Session) error {
		wf := s.Workflow()
		data.Empty = len(wf.States) == 0
		selected := s.SelectedRoles()
		for _, role := range wf.Roles {
			data.Roles = append(data.Roles, legendRow{
				Label:     role.Label,
				Color:     template.CSS(diagram.RoleColor(role.ID)),
				ClassName: diagram.RoleClassName(role.ID),
				Selected:  slices.Contains(selected, role.ID),
			})
		}
		data.HiddenStates = s.HiddenStates()
		if perr := s.PersistStatus(); perr != nil {
			data.PersistError = perr.Error()
		}
		if !wf.Empty() {
			link, err := share.BuildShareURL(wf, wc.designer.ShareBaseURL(r))
			if err != nil {
				slog.WarnContext(r.Context(), "Failed to build share url", "error", err)
			}
			data.ShareURL = link
		}
		var err error
		data.Diagram, err = s.Diagram()
		return err
	})
	if err != nil {
		slog.Error("Failed to render diagram", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, "index", data); err != nil {
		slog.Error("Failed to execute template", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// importShared loads a workflow from a share link and redirects to the same
// page without the workflow parameter.
func (wc *WebController) importShared(w http.ResponseWriter, r *http.Request, token string) {
	wf, err := share.Decode(token)
	if err != nil {
		slog.WarnContext(r.Context(), "Ignoring invalid share link", "error", err)
		http.Error(w, "invalid share link", http.StatusBadRequest)
		return
	}
	err = wc.designer.WithSession(func(s *session.Session) error {
		return s.Replace(r.Context(), *wf)
	})
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to import shared workflow", "error", err)
		http.Error(w, "invalid share link", http.StatusBadRequest)
		return
	}
	slog.InfoContext(r.Context(), "Imported shared workflow", "states", len(wf.States))

	target, ok := share.RemoveFromURL(requestURL(r))
	if !ok {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// requestURL rebuilds the absolute URL the browser asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
