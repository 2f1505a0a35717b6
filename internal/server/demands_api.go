package server

import (
	"context"
	"net/http"
	"sort"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/demand/services"
	"github.com/jacksonlee411/people-console/pkg/dict"
	"golang.org/x/sync/errgroup"
)

const (
	demandPoolTake     = 1000
	approverCandidates = 10
)

type demandItem struct {
	issues.Issue
	Type          string `json:"type"`
	Version       string `json:"version"`
	PriorityLabel string `json:"priority_label"`
}

type demandListResponse struct {
	Counts         issues.Counts           `json:"counts"`
	Page           issues.Page[demandItem] `json:"page"`
	PriorityLabels []dict.Option           `json:"priority_labels"`
	Types          []string                `json:"types"`
	Creators       []issues.Person         `json:"creators"`
}

type demandLabels struct {
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Stage       string `json:"stage"`
	InputSource string `json:"input_source"`
	IssueType   string `json:"issue_type"`
}

type approverCandidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type demandDetailResponse struct {
	Issue     issues.Issue        `json:"issue"`
	Type      string              `json:"type"`
	Version   string              `json:"version"`
	Labels    demandLabels        `json:"labels"`
	Approvers []approverCandidate `json:"approvers"`
}

type demandApprovePayload struct {
	IssueID    string `json:"issue_id"`
	Version    string `json:"version"`
	Comment    string `json:"comment"`
	ApproverID string `json:"approver_id"`
	Level      string `json:"level"`
}

func newDemandItem(ctx context.Context, it issues.Issue) demandItem {
	return demandItem{
		Issue:         it,
		Type:          issues.TypeOf(it.GitlabLabels),
		Version:       issues.VersionOf(it.GitlabLabels),
		PriorityLabel: dict.LabelOrCode(ctx, dict.CodeIssuePriority, it.Priority),
	}
}

// handleDemandsAPI serves the demand pool. Counts cover the unfiltered list;
// the page covers the filtered one.
func handleDemandsAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	state, err := issues.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	expr, err := deps.issueExprs.Predicate(r.URL.Query().Get("expr"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	filter := issues.Filter{
		State:      state,
		Priorities: queryList(r, "priority"),
		Types:      queryList(r, "type"),
		CreatorIDs: queryList(r, "creator"),
		Expr:       expr,
	}

	all, err := deps.remote.GetIssues(r.Context(), remoteapi.IssueFilter{}, demandPoolTake)
	if err != nil {
		writeLoadError(w, r, deps.logger, "demands_load_failed", err)
		return
	}
	matched, err := issues.Apply(all, filter)
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	items := make([]demandItem, 0, len(matched))
	for _, it := range matched {
		items = append(items, newDemandItem(r.Context(), it))
	}
	priorities, err := dict.ListOptions(r.Context(), dict.CodeIssuePriority, "", 0)
	if err != nil {
		priorities = []dict.Option{}
	}

	routing.WriteJSON(w, http.StatusOK, demandListResponse{
		Counts:         issues.CountStates(all),
		Page:           issues.Paginate(items, queryPage(r), issues.PageSize),
		PriorityLabels: priorities,
		Types:          distinctTypes(all),
		Creators:       distinctCreators(all),
	})
}

func distinctTypes(list []issues.Issue) []string {
	set := map[string]struct{}{}
	for _, it := range list {
		set[issues.TypeOf(it.GitlabLabels)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// distinctCreators keeps first-seen order.
func distinctCreators(list []issues.Issue) []issues.Person {
	seen := map[string]struct{}{}
	out := make([]issues.Person, 0)
	for _, it := range list {
		if it.Creator.ID == "" {
			continue
		}
		if _, ok := seen[it.Creator.ID]; ok {
			continue
		}
		seen[it.Creator.ID] = struct{}{}
		out = append(out, it.Creator)
	}
	return out
}

func handleDemandDetailsAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	issueID, ok := requireQuery(w, r, "issue_id")
	if !ok {
		return
	}

	var (
		issue issues.Issue
		users []remoteapi.User
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		issue, err = deps.remote.GetIssue(ctx, issueID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = deps.remote.GetUsers(ctx, approverCandidates)
		return err
	})
	if err := g.Wait(); err != nil {
		writeLoadError(w, r, deps.logger, "demands_load_failed", err)
		return
	}

	if len(users) > approverCandidates {
		users = users[:approverCandidates]
	}
	approvers := make([]approverCandidate, 0, len(users))
	for _, u := range users {
		approvers = append(approvers, approverCandidate{ID: u.ID, Name: u.Name, Email: u.Email})
	}

	typeCode := issues.TypeOf(issue.GitlabLabels)
	if issue.IssueType != "" {
		typeCode = issue.IssueType
	}
	ctx = r.Context()
	routing.WriteJSON(w, http.StatusOK, demandDetailResponse{
		Issue:   issue,
		Type:    issues.TypeOf(issue.GitlabLabels),
		Version: issues.VersionOf(issue.GitlabLabels),
		Labels: demandLabels{
			Priority:    dict.LabelOrCode(ctx, dict.CodeIssuePriority, issue.Priority),
			Status:      dict.LabelOrCode(ctx, dict.CodeIssueStatus, issue.Status),
			Stage:       dict.LabelOrCode(ctx, dict.CodeIssueStage, issue.Stage),
			InputSource: dict.LabelOrCode(ctx, dict.CodeIssueInputSource, issue.InputSource),
			IssueType:   dict.LabelOrCode(ctx, dict.CodeIssueType, typeCode),
		},
		Approvers: approvers,
	})
}

func handleDemandApproveAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	var req demandApprovePayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := deps.approvals.Approve(r.Context(), services.ApprovalRequest{
		IssueID:    req.IssueID,
		Version:    req.Version,
		Comment:    req.Comment,
		ApproverID: req.ApproverID,
		Level:      req.Level,
	})
	if err != nil {
		writeMutationError(w, r, deps.logger, "demand_approve_failed", err)
		return
	}
	routing.WriteJSON(w, http.StatusOK, res)
}
