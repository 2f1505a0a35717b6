package server

import (
	"net/http"
	"strings"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
	"github.com/jacksonlee411/people-console/modules/personnel/services"
	"golang.org/x/sync/errgroup"
)

const (
	visibleKeysResource = "user"
	userListTake        = 1000
	exportConcurrency   = 8
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type personnelListItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Department string   `json:"department,omitempty"`
	IsActive   bool     `json:"is_active"`
	Roles      []string `json:"roles"`
}

type personnelListResponse struct {
	Total int                 `json:"total"`
	Items []personnelListItem `json:"items"`
}

type personnelDeletePayload struct {
	UserID string `json:"user_id"`
}

func personFromUser(u remoteapi.User) services.Person {
	return services.Person{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		Email:      u.Email,
		Phone:      u.Phone,
		Avatar:     u.Avatar,
		Department: u.DepartmentName(),
		IsActive:   u.IsActive,
		Values:     u.FieldValues,
	}
}

func handlePersonnelAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	users, err := deps.remote.GetUsers(r.Context(), userListTake)
	if err != nil {
		writeLoadError(w, r, deps.logger, "personnel_load_failed", err)
		return
	}

	byID := make(map[string]remoteapi.User, len(users))
	dir := make([]roles.User, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		dir = append(dir, u.Directory())
	}

	matched := roles.SearchUsers(dir, r.URL.Query().Get("q"))
	items := make([]personnelListItem, 0, len(matched))
	for _, m := range matched {
		u := byID[m.ID]
		items = append(items, personnelListItem{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Department: u.DepartmentName(),
			IsActive:   u.IsActive,
			Roles:      m.RoleNames(),
		})
	}
	routing.WriteJSON(w, http.StatusOK, personnelListResponse{Total: len(items), Items: items})
}

// handlePersonnelDetailsAPI joins the user, the viewer's visible keys for that
// user and the field definitions. Any failed leg fails the whole response.
func handlePersonnelDetailsAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	viewer, _ := currentViewer(r.Context())

	var (
		user        remoteapi.User
		visibleKeys []string
		defs        []fieldmeta.FieldDefinition
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		user, err = deps.remote.GetUser(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		visibleKeys, err = deps.remote.VisibleFieldKeys(ctx, visibleKeysResource, userID)
		return err
	})
	g.Go(func() error {
		var err error
		defs, err = deps.loadFieldDefinitions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeLoadError(w, r, deps.logger, "personnel_load_failed", err)
		return
	}

	detail := services.BuildDetail(personFromUser(user), defs, services.DetailOptions{
		ViewerRoles:   viewer.Roles,
		VisibleKeys:   visibleKeys,
		IncludeMasked: r.URL.Query().Get("include_masked") == "1",
	})
	routing.WriteJSON(w, http.StatusOK, detail)
}

// handlePersonnelExportAPI renders the requested users as an xlsx roster.
// Values pass through the masking policy per user.
func handlePersonnelExportAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	ids := dedupe(queryList(r, "user_ids"))
	if len(ids) == 0 {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", "user_ids is required")
		return
	}
	viewer, _ := currentViewer(r.Context())

	people := make([]services.Person, len(ids))
	keys := make([][]string, len(ids))
	var defs []fieldmeta.FieldDefinition

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(exportConcurrency)
	g.Go(func() error {
		var err error
		defs, err = deps.loadFieldDefinitions(ctx)
		return err
	})
	for i, id := range ids {
		g.Go(func() error {
			u, err := deps.remote.GetUser(ctx, id)
			if err != nil {
				return err
			}
			people[i] = personFromUser(u)
			return nil
		})
		g.Go(func() error {
			k, err := deps.remote.VisibleFieldKeys(ctx, visibleKeysResource, id)
			if err != nil {
				return err
			}
			keys[i] = k
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeLoadError(w, r, deps.logger, "personnel_load_failed", err)
		return
	}

	visible := make(map[string][]string, len(ids))
	for i, id := range ids {
		visible[id] = keys[i]
	}
	b, err := services.WriteXLSX(services.BuildRoster(people, defs, viewer.Roles, visible))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusInternalServerError, "personnel_export_failed", "personnel_export_failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="roster.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func handlePersonnelDeleteAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var req personnelDeletePayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "user_id required")
		return
	}

	res, err := deps.remote.DeleteUser(r.Context(), userID)
	if err != nil {
		writeMutationError(w, r, deps.logger, "personnel_delete_failed", err)
		return
	}
	if !res.Success {
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = "删除失败"
		}
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "personnel_delete_failed", msg)
		return
	}
	routing.WriteJSON(w, http.StatusOK, res)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
