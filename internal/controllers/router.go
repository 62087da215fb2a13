package controllers

import "net/http"

// RegisterRoutes wires the HTTP routes for this controller.
func (c *DesignerController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/workflow", c.RequireAuth(c.handleGetWorkflow))
	mux.HandleFunc("PUT /api/workflow", c.RequireAuth(c.handleReplaceWorkflow))
	mux.HandleFunc("DELETE /api/workflow", c.RequireAuth(c.handleClearWorkflow))
	mux.HandleFunc("GET /api/view", c.RequireAuth(c.handleGetView))
	mux.HandleFunc("POST /api/states", c.RequireAuth(c.handleAddState))
	mux.HandleFunc("DELETE /api/states/{id}", c.RequireAuth(c.handleRemoveState))
	mux.HandleFunc("GET /api/states/{id}/cascade", c.RequireAuth(c.handlePreviewRemoveState))
	mux.HandleFunc("POST /api/states/{id}/hidden", c.RequireAuth(c.handleSetStateHidden))
	mux.HandleFunc("POST /api/transitions", c.RequireAuth(c.handleAddTransition))
	mux.HandleFunc("DELETE /api/transitions/{id}", c.RequireAuth(c.handleRemoveTransition))
	mux.HandleFunc("POST /api/roles", c.RequireAuth(c.handleAddRole))
	mux.HandleFunc("DELETE /api/roles/{id}", c.RequireAuth(c.handleRemoveRole))
	mux.HandleFunc("POST /api/roles/{id}/permissions/{transitionId}", c.RequireAuth(c.handleTogglePermission))
	mux.HandleFunc("POST /api/roles/{id}/selected", c.RequireAuth(c.handleToggleSelection))
	mux.HandleFunc("PUT /api/roles/selected", c.RequireAuth(c.handleSetSelectedRoles))
	mux.HandleFunc("POST /api/reorder/{collection}", c.RequireAuth(c.handleReorder))
	mux.HandleFunc("GET /api/diagram", c.RequireAuth(c.handleDiagram))
	mux.HandleFunc("GET /api/colors", c.RequireAuth(c.handleColors))
	mux.HandleFunc("GET /api/share", c.RequireAuth(c.handleShare))
	mux.HandleFunc("POST /api/import", c.RequireAuth(c.handleImport))
}
