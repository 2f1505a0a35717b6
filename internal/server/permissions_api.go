package server

import (
	"net/http"
	"strings"

	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

type permissionUser struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Roles []roles.Descriptor `json:"roles"`
}

type permissionUsersResponse struct {
	Items  []permissionUser `json:"items"`
	Admins []permissionUser `json:"admins"`
}

type permissionSetPayload struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

type permissionRemovePayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func newPermissionUser(u roles.User) permissionUser {
	out := permissionUser{ID: u.ID, Name: u.Name, Email: u.Email, Roles: make([]roles.Descriptor, 0, len(u.Roles))}
	for _, name := range u.RoleNames() {
		out.Roles = append(out.Roles, roles.Describe(name))
	}
	return out
}

func newPermissionUsers(list []roles.User) []permissionUser {
	out := make([]permissionUser, 0, len(list))
	for _, u := range list {
		out = append(out, newPermissionUser(u))
	}
	return out
}

func handlePermissionUsersAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	users, err := deps.remote.GetUsers(r.Context(), userListTake)
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	dir := make([]roles.User, 0, len(users))
	for _, u := range users {
		dir = append(dir, u.Directory())
	}
	routing.WriteJSON(w, http.StatusOK, permissionUsersResponse{
		Items:  newPermissionUsers(roles.SearchUsers(dir, r.URL.Query().Get("q"))),
		Admins: newPermissionUsers(roles.AdminUsers(dir)),
	})
}

func handlePermissionRolesAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	catalog, err := deps.remote.GetRoles(r.Context())
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	routing.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles.Catalog(catalog)})
}

func handlePermissionEffectiveAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	perms, err := deps.remote.GetUserPermissions(r.Context(), userID)
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	if perms == nil {
		perms = []string{}
	}
	routing.WriteJSON(w, http.StatusOK, map[string]any{"user_id": userID, "permissions": perms})
}

// handlePermissionSetAPI overwrites the user's roles. Names outside the
// remote catalog are rejected before setUserRoles is called.
func handlePermissionSetAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var req permissionSetPayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "user_id required")
		return
	}

	catalog, err := deps.remote.GetRoles(r.Context())
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	names, err := roles.NormalizeAssignment(req.Roles, catalog)
	if err != nil {
		writeMutationError(w, r, deps.logger, "permissions_update_failed", httperr.NewBadRequest(err.Error()))
		return
	}
	applyRoles(w, r, deps, userID, names)
}

func handlePermissionRemoveAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var req permissionRemovePayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	role := strings.TrimSpace(req.Role)
	if userID == "" || role == "" {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "user_id and role required")
		return
	}

	user, err := deps.remote.GetUser(r.Context(), userID)
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	applyRoles(w, r, deps, userID, roles.Without(user.Directory().RoleNames(), role))
}

// applyRoles writes the role set and answers with the reloaded user. The
// acting viewer's own roles are not refreshed.
func applyRoles(w http.ResponseWriter, r *http.Request, deps *consoleDeps, userID string, names []string) {
	if err := deps.remote.SetUserRoles(r.Context(), userID, names); err != nil {
		writeMutationError(w, r, deps.logger, "permissions_update_failed", err)
		return
	}
	reloaded, err := deps.remote.GetUser(r.Context(), userID)
	if err != nil {
		writeLoadError(w, r, deps.logger, "permissions_load_failed", err)
		return
	}
	routing.WriteJSON(w, http.StatusOK, newPermissionUser(reloaded.Directory()))
}
