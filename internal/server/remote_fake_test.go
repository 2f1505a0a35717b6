package server

import (
	"context"
	"errors"
	"sync"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

// fakeRemote is an in-process stand-in for the remote API. Errors set in
// errs are returned by the operation of the same name.
type fakeRemote struct {
	mu sync.Mutex

	viewer      remoteapi.Viewer
	defs        []fieldmeta.FieldDefinition
	users       map[string]remoteapi.User
	userOrder   []string
	visibleKeys map[string][]string
	catalog     []roles.Role
	issues      []issues.Issue
	deleteRes   remoteapi.DeleteResult

	errs  map[string]error
	calls []string

	setRolesCalls [][]string
	approved      []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		viewer:      remoteapi.Viewer{ID: "viewer-1", Name: "Viewer", Roles: remoteapi.RoleNames{roles.SuperAdmin}},
		users:       map[string]remoteapi.User{},
		visibleKeys: map[string][]string{},
		catalog: []roles.Role{
			{ID: "r1", Name: roles.SuperAdmin},
			{ID: "r2", Name: roles.Admin},
			{ID: "r3", Name: roles.HRManager},
			{ID: "r4", Name: roles.ProjectManager},
			{ID: "r5", Name: roles.Member},
		},
		deleteRes: remoteapi.DeleteResult{Success: true, Message: "deleted"},
		errs:      map[string]error{},
	}
}

func (f *fakeRemote) addUser(u remoteapi.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		f.userOrder = append(f.userOrder, u.ID)
	}
	f.users[u.ID] = u
}

func (f *fakeRemote) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeRemote) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeRemote) Me(ctx context.Context) (remoteapi.Viewer, error) {
	if err := f.record("Me"); err != nil {
		return remoteapi.Viewer{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewer, nil
}

func (f *fakeRemote) FieldDefinitions(context.Context) ([]fieldmeta.FieldDefinition, error) {
	if err := f.record("FieldDefinitions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fieldmeta.FieldDefinition(nil), f.defs...), nil
}

func (f *fakeRemote) UpsertFieldDefinition(_ context.Context, def fieldmeta.FieldDefinition) (fieldmeta.FieldDefinition, error) {
	if err := f.record("UpsertFieldDefinition"); err != nil {
		return fieldmeta.FieldDefinition{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.defs {
		if d.Key == def.Key {
			f.defs[i] = def
			return def, nil
		}
	}
	f.defs = append(f.defs, def)
	return def, nil
}

func (f *fakeRemote) DeleteFieldDefinition(_ context.Context, key string) error {
	if err := f.record("DeleteFieldDefinition"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.defs[:0]
	for _, d := range f.defs {
		if d.Key != key {
			out = append(out, d)
		}
	}
	f.defs = out
	return nil
}

func (f *fakeRemote) VisibleFieldKeys(_ context.Context, _ string, targetUserID string) ([]string, error) {
	if err := f.record("VisibleFieldKeys"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visibleKeys[targetUserID], nil
}

func (f *fakeRemote) GetUser(_ context.Context, id string) (remoteapi.User, error) {
	if err := f.record("GetUser"); err != nil {
		return remoteapi.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return remoteapi.User{}, &remoteapi.RemoteError{Operation: "User", Message: "user not found"}
	}
	return u, nil
}

func (f *fakeRemote) GetUsers(_ context.Context, take int) ([]remoteapi.User, error) {
	if err := f.record("GetUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remoteapi.User, 0, len(f.userOrder))
	for _, id := range f.userOrder {
		if take > 0 && len(out) >= take {
			break
		}
		out = append(out, f.users[id])
	}
	return out, nil
}

func (f *fakeRemote) DeleteUser(context.Context, string) (remoteapi.DeleteResult, error) {
	if err := f.record("DeleteUser"); err != nil {
		return remoteapi.DeleteResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteRes, nil
}

func (f *fakeRemote) GetRoles(context.Context) ([]roles.Role, error) {
	if err := f.record("GetRoles"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]roles.Role(nil), f.catalog...), nil
}

func (f *fakeRemote) GetUserPermissions(context.Context, string) ([]string, error) {
	if err := f.record("GetUserPermissions"); err != nil {
		return nil, err
	}
	return []string{"user:read", "issue:approve"}, nil
}

func (f *fakeRemote) SetUserRoles(_ context.Context, userID string, roleNames []string) error {
	if err := f.record("SetUserRoles"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRolesCalls = append(f.setRolesCalls, append([]string(nil), roleNames...))
	u, ok := f.users[userID]
	if !ok {
		return &remoteapi.RemoteError{Operation: "SetUserRoles", Message: "user not found"}
	}
	u.Roles = u.Roles[:0:0]
	for _, n := range roleNames {
		u.Roles = append(u.Roles, roles.Role{Name: n})
	}
	f.users[userID] = u
	return nil
}

func (f *fakeRemote) GetIssue(_ context.Context, id string) (issues.Issue, error) {
	if err := f.record("GetIssue"); err != nil {
		return issues.Issue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.issues {
		if it.ID == id {
			return it, nil
		}
	}
	return issues.Issue{}, &remoteapi.RemoteError{Operation: "Issue", Message: "issue not found"}
}

func (f *fakeRemote) GetIssues(_ context.Context, filter remoteapi.IssueFilter, _ int) ([]issues.Issue, error) {
	if err := f.record("GetIssues"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]issues.Issue, 0, len(f.issues))
	for _, it := range f.issues {
		if filter.ProjectID != 0 && it.GitlabProjectID != filter.ProjectID {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeRemote) ApproveIssue(_ context.Context, issueID string, approverID string) (issues.Issue, error) {
	if err := f.record("ApproveIssue"); err != nil {
		return issues.Issue{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.issues {
		if it.ID == issueID {
			f.issues[i].Status = "APPROVED"
			f.approved = append(f.approved, issueID+":"+approverID)
			return f.issues[i], nil
		}
	}
	return issues.Issue{}, errors.New("issue not found")
}
