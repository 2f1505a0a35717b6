package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

func newTestStub(t *testing.T) (*remoteapi.Client, *stub) {
	t.Helper()

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	s := &stub{store: newSeededStore(now), now: func() time.Time { return now }}
	srv := httptest.NewServer(newStubMux(s))
	t.Cleanup(srv.Close)

	c, err := remoteapi.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return c, s
}

func as(userID string) context.Context {
	return remoteapi.WithCredentials(context.Background(), remoteapi.Credentials{Authorization: "Bearer " + userID})
}

func TestStub_Me(t *testing.T) {
	c, _ := newTestStub(t)

	me, err := c.Me(as("dev-hr"))
	if err != nil {
		t.Fatal(err)
	}
	if me.ID != "dev-hr" || len(me.Roles) != 1 || me.Roles[0] != roles.HRManager {
		t.Fatalf("me=%+v", me)
	}

	session := remoteapi.WithCredentials(context.Background(), remoteapi.Credentials{Session: "dev-member"})
	if me, err := c.Me(session); err != nil || me.ID != "dev-member" {
		t.Fatalf("me=%+v err=%v", me, err)
	}

	_, err = c.Me(as("nobody"))
	var httpErr *remoteapi.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err=%v", err)
	}
}

func TestStub_FieldDefinitions(t *testing.T) {
	c, _ := newTestStub(t)
	ctx := as("dev-admin")

	defs, err := c.FieldDefinitions(ctx)
	if err != nil || len(defs) != 5 {
		t.Fatalf("defs=%v err=%v", defs, err)
	}

	saved, err := c.UpsertFieldDefinition(ctx, fieldmeta.FieldDefinition{Key: "bank_name", Label: "开户行", Classification: fieldmeta.ClassificationConfidential})
	if err != nil || saved.Key != "bank_name" || saved.Classification != fieldmeta.ClassificationConfidential {
		t.Fatalf("saved=%+v err=%v", saved, err)
	}
	if err := c.DeleteFieldDefinition(ctx, "bank_name"); err != nil {
		t.Fatal(err)
	}

	err = c.DeleteFieldDefinition(ctx, "bank_name")
	var remoteErr *remoteapi.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Message != "字段不存在" {
		t.Fatalf("err=%v", err)
	}
}

func TestStub_VisibleFieldKeys(t *testing.T) {
	c, _ := newTestStub(t)

	keys, err := c.VisibleFieldKeys(as("dev-member"), "user", "dev-hr")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "employee_code,department,contact_phone" {
		t.Fatalf("keys=%v", keys)
	}

	keys, err = c.VisibleFieldKeys(as("dev-admin"), "user", "dev-member")
	if err != nil || len(keys) != 5 {
		t.Fatalf("keys=%v err=%v", keys, err)
	}
}

func TestStub_UsersAndRoles(t *testing.T) {
	c, _ := newTestStub(t)
	ctx := as("dev-admin")

	users, err := c.GetUsers(ctx, 2)
	if err != nil || len(users) != 2 {
		t.Fatalf("users=%d err=%v", len(users), err)
	}

	if _, err := c.GetUser(ctx, "missing"); err == nil {
		t.Fatal("expected not found")
	}

	if err := c.SetUserRoles(ctx, "dev-member", []string{roles.Admin, roles.Member}); err != nil {
		t.Fatal(err)
	}
	perms, err := c.GetUserPermissions(ctx, "dev-member")
	if err != nil || strings.Join(perms, ",") != "admin,member" {
		t.Fatalf("perms=%v err=%v", perms, err)
	}

	catalog, err := c.GetRoles(ctx)
	if err != nil || len(catalog) != 5 {
		t.Fatalf("catalog=%v err=%v", catalog, err)
	}
}

func TestStub_DeleteUser(t *testing.T) {
	c, _ := newTestStub(t)
	ctx := as("dev-admin")

	res, err := c.DeleteUser(ctx, "dev-member")
	if err != nil || res.Success || res.Message != "该用户仍有未关闭的需求" {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	res, err = c.DeleteUser(ctx, "dev-hr")
	if err != nil || !res.Success {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if _, err := c.GetUser(ctx, "dev-hr"); err == nil {
		t.Fatal("user still present")
	}
}

func TestStub_Issues(t *testing.T) {
	c, _ := newTestStub(t)
	ctx := as("dev-admin")

	all, err := c.GetIssues(ctx, remoteapi.IssueFilter{}, 0)
	if err != nil || len(all) != 5 {
		t.Fatalf("all=%d err=%v", len(all), err)
	}
	release, err := c.GetIssues(ctx, remoteapi.IssueFilter{ProjectID: 1206}, 0)
	if err != nil || len(release) != 4 {
		t.Fatalf("release=%d err=%v", len(release), err)
	}

	it, err := c.ApproveIssue(ctx, "issue-1", "dev-admin")
	if err != nil || it.Status != "APPROVED" || it.Assignee == nil || it.Assignee.ID != "dev-admin" {
		t.Fatalf("it=%+v err=%v", it, err)
	}
	reloaded, err := c.GetIssue(ctx, "issue-1")
	if err != nil || reloaded.Status != "APPROVED" {
		t.Fatalf("reloaded=%+v err=%v", reloaded, err)
	}
	if _, err := c.ApproveIssue(ctx, "issue-1", "nobody"); err == nil {
		t.Fatal("expected error for unknown approver")
	}
}

func TestStub_RejectsMalformedRequests(t *testing.T) {
	now := time.Now()
	s := &stub{store: newSeededStore(now), now: func() time.Time { return now }}
	h := newStubMux(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"query Nope { nope }"}`))
	req.Header.Set("Authorization", "Bearer dev-admin")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "unsupported operation Nope") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"query {"}`))
	h.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"errors"`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
}
