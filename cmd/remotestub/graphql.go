package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

type graphqlRequest struct {
	OperationName string          `json:"operationName"`
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   any            `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}

// errNotFound becomes a GraphQL error with the given text.
type errNotFound string

func (e errNotFound) Error() string { return string(e) }

type resolver func(s *stub, viewerID string, vars json.RawMessage) (any, error)

var resolvers = map[string]resolver{
	"Me":                    resolveMe,
	"FieldDefinitions":      resolveFieldDefinitions,
	"UpsertFieldDefinition": resolveUpsertFieldDefinition,
	"DeleteFieldDefinition": resolveDeleteFieldDefinition,
	"VisibleFieldKeys":      resolveVisibleFieldKeys,
	"User":                  resolveUser,
	"Users":                 resolveUsers,
	"DeleteUser":            resolveDeleteUser,
	"Roles":                 resolveRoles,
	"UserPermissions":       resolveUserPermissions,
	"SetUserRoles":          resolveSetUserRoles,
	"Issue":                 resolveIssue,
	"Issues":                resolveIssues,
	"ApproveIssue":          resolveApproveIssue,
}

type stub struct {
	store *store
	now   func() time.Time
}

// viewerID maps the caller's credentials to a user id. In the stub a bearer
// token or session cookie is the user id itself.
func viewerID(r *http.Request) string {
	if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := r.Cookie(remoteapi.SessionCookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

func (s *stub) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	doc, perr := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if perr != nil {
		writeGraphQL(w, graphqlResponse{Errors: []graphqlError{{Message: perr.Error()}}})
		return
	}
	op := req.OperationName
	if op == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0].Name
	}
	if doc.Operations.ForName(op) == nil {
		writeGraphQL(w, graphqlResponse{Errors: []graphqlError{{Message: "unknown operation " + op}}})
		return
	}
	resolve, ok := resolvers[op]
	if !ok {
		writeGraphQL(w, graphqlResponse{Errors: []graphqlError{{Message: "unsupported operation " + op}}})
		return
	}

	viewer := viewerID(r)
	if viewer == "" {
		http.Error(w, "missing credentials", http.StatusUnauthorized)
		return
	}
	if _, ok := s.store.viewer(viewer); !ok {
		http.Error(w, "unknown session", http.StatusUnauthorized)
		return
	}

	data, err := resolve(s, viewer, req.Variables)
	if err != nil {
		writeGraphQL(w, graphqlResponse{Errors: []graphqlError{{Message: err.Error()}}})
		return
	}
	writeGraphQL(w, graphqlResponse{Data: data})
}

func writeGraphQL(w http.ResponseWriter, resp graphqlResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeVars(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.New("invalid variables")
	}
	return nil
}

func resolveMe(s *stub, viewerID string, _ json.RawMessage) (any, error) {
	v, _ := s.store.viewer(viewerID)
	return map[string]any{"me": v}, nil
}

func resolveFieldDefinitions(s *stub, _ string, _ json.RawMessage) (any, error) {
	return map[string]any{"fieldDefinitions": s.store.fieldDefinitions()}, nil
}

func resolveUpsertFieldDefinition(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		Input remoteapi.FieldDefinitionInput `json:"input"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	if strings.TrimSpace(vars.Input.Key) == "" {
		return nil, errors.New("字段键不能为空")
	}
	return map[string]any{"upsertFieldDefinition": s.store.upsertFieldDefinition(vars.Input)}, nil
}

func resolveDeleteFieldDefinition(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		Key string `json:"key"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	if !s.store.deleteFieldDefinition(vars.Key) {
		return nil, errNotFound("字段不存在")
	}
	return map[string]any{"deleteFieldDefinition": true}, nil
}

func resolveVisibleFieldKeys(s *stub, viewerID string, raw json.RawMessage) (any, error) {
	var vars struct {
		Resource     string `json:"resource"`
		TargetUserID string `json:"targetUserId"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	return map[string]any{"visibleFieldKeys": s.store.visibleFieldKeys(viewerID, vars.TargetUserID)}, nil
}

func resolveUser(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		ID string `json:"id"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	u, ok := s.store.user(vars.ID)
	if !ok {
		return map[string]any{"user": nil}, nil
	}
	return map[string]any{"user": u}, nil
}

func resolveUsers(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		Take int `json:"take"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	list := s.store.listUsers(vars.Take)
	return map[string]any{"users": map[string]any{"total": len(list), "users": list}}, nil
}

func resolveDeleteUser(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		ID string `json:"id"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	return map[string]any{"deleteUser": s.store.deleteUser(vars.ID)}, nil
}

func resolveRoles(s *stub, _ string, _ json.RawMessage) (any, error) {
	return map[string]any{"roles": s.store.roleCatalog()}, nil
}

func resolveUserPermissions(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		UserID string `json:"userId"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	u, ok := s.store.user(vars.UserID)
	if !ok {
		return nil, errNotFound("用户不存在")
	}
	return map[string]any{"userPermissions": map[string]any{"roles": u.Directory().RoleNames()}}, nil
}

func resolveSetUserRoles(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		UserID    string   `json:"userId"`
		RoleNames []string `json:"roleNames"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	if !s.store.setUserRoles(vars.UserID, vars.RoleNames) {
		return nil, errNotFound("用户不存在")
	}
	return map[string]any{"setUserRoles": true}, nil
}

func resolveIssue(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		ID string `json:"id"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	it, ok := s.store.issue(vars.ID)
	if !ok {
		return map[string]any{"issue": nil}, nil
	}
	return map[string]any{"issue": it}, nil
}

func resolveIssues(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		Filter remoteapi.IssueFilter `json:"filter"`
		Take   int                   `json:"take"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	list := s.store.listIssues(vars.Filter, vars.Take)
	return map[string]any{"issues": map[string]any{"total": len(list), "issues": list}}, nil
}

func resolveApproveIssue(s *stub, _ string, raw json.RawMessage) (any, error) {
	var vars struct {
		IssueID    string `json:"issueId"`
		ApproverID string `json:"approverId"`
	}
	if err := decodeVars(raw, &vars); err != nil {
		return nil, err
	}
	it, ok := s.store.approveIssue(vars.IssueID, vars.ApproverID, s.now())
	if !ok {
		return nil, errNotFound("需求或审批人不存在")
	}
	return map[string]any{"approveIssue": it}, nil
}
