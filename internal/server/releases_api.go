package server

import (
	"net/http"
	"strings"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/demand/domain/types"
	"github.com/jacksonlee411/people-console/modules/demand/services"
	"github.com/jacksonlee411/people-console/pkg/httperr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type releaseColumn struct {
	issues.Column
	Plans []types.ReleasePlan `json:"plans"`
}

type releasesResponse struct {
	ProjectID int64               `json:"project_id"`
	Versions  []string            `json:"versions"`
	Selected  string              `json:"selected"`
	Items     []issues.Issue      `json:"items"`
	Columns   []releaseColumn     `json:"columns"`
	Plans     []types.ReleasePlan `json:"plans"`
}

type releasePlanPayload struct {
	App         string `json:"app"`
	Version     string `json:"version"`
	ReleaseDate string `json:"release_date"`
}

func handleReleasesAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	switch r.Method {
	case http.MethodGet:
		listReleases(w, r, deps)
	case http.MethodPost:
		createReleasePlan(w, r, deps)
	default:
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// listReleases builds the kanban of the release project: one column per V:
// label plus 未分配, with local release plans attached by version name.
func listReleases(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var (
		loaded []issues.Issue
		plans  []types.ReleasePlan
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		loaded, err = deps.remote.GetIssues(ctx, remoteapi.IssueFilter{ProjectID: deps.releaseProjectID}, demandPoolTake)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = deps.plans.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeLoadError(w, r, deps.logger, "releases_load_failed", err)
		return
	}
	if plans == nil {
		plans = []types.ReleasePlan{}
	}

	list := issues.ReleaseProject(loaded, deps.releaseProjectID)
	versions := issues.Versions(list)
	selected, items := issues.SelectVersion(list, versions, strings.TrimSpace(r.URL.Query().Get("version")))

	byVersion := services.PlansByVersion(plans)
	board := issues.Board(list)
	columns := make([]releaseColumn, 0, len(board))
	for _, col := range board {
		p := byVersion[col.Version]
		if p == nil {
			p = []types.ReleasePlan{}
		}
		columns = append(columns, releaseColumn{Column: col, Plans: p})
	}

	routing.WriteJSON(w, http.StatusOK, releasesResponse{
		ProjectID: deps.releaseProjectID,
		Versions:  versions,
		Selected:  selected,
		Items:     items,
		Columns:   columns,
		Plans:     plans,
	})
}

func createReleasePlan(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var req releasePlanPayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	viewer, _ := currentViewer(r.Context())

	plan, err := deps.plans.Create(r.Context(), services.CreateReleasePlanRequest{
		App:         req.App,
		Version:     req.Version,
		ReleaseDate: req.ReleaseDate,
		CreatedBy:   viewer.ID,
	})
	if err != nil {
		if httperr.IsConflict(err) {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusConflict, "release_plan_exists", "release_plan_exists")
			return
		}
		if httperr.IsBadRequest(err) {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", err.Error())
			return
		}
		deps.logger.Error("create release plan", zap.Error(err))
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusInternalServerError, "release_plan_create_failed", "release_plan_create_failed")
		return
	}
	routing.WriteJSON(w, http.StatusCreated, plan)
}
