package services

import (
	"testing"

	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

func exprIssue(priority string, labels ...string) issues.Issue {
	return issues.Issue{
		ID:           "i-" + priority,
		Title:        "登录页改版",
		Priority:     priority,
		GitlabState:  issues.StateOpened,
		GitlabLabels: labels,
		Creator:      issues.Person{ID: "u1"},
	}
}

func TestIssueExprCache_Predicate(t *testing.T) {
	var c IssueExprCache

	tests := []struct {
		expr string
		in   issues.Issue
		want bool
	}{
		{expr: `issue.priority == "HIGH"`, in: exprIssue("HIGH"), want: true},
		{expr: `issue.priority == "HIGH"`, in: exprIssue("LOW"), want: false},
		{expr: `issue.type == "功能"`, in: exprIssue("LOW", "C: 功能"), want: true},
		{expr: `issue.version == "未分配"`, in: exprIssue("LOW"), want: true},
		{expr: `issue.labels.exists(l, l.startsWith("V:"))`, in: exprIssue("LOW", "V:1.2"), want: true},
		{expr: `issue.labels.size() == 0`, in: exprIssue("LOW"), want: true},
		{expr: `issue.creator_id == "u1" && issue.title.contains("登录")`, in: exprIssue("LOW"), want: true},
	}
	for _, tt := range tests {
		p, err := c.Predicate(tt.expr)
		if err != nil {
			t.Fatalf("expr=%q err=%v", tt.expr, err)
		}
		got, err := p(tt.in)
		if err != nil {
			t.Fatalf("expr=%q eval err=%v", tt.expr, err)
		}
		if got != tt.want {
			t.Fatalf("expr=%q got=%v want %v", tt.expr, got, tt.want)
		}
	}
}

func TestIssueExprCache_Blank(t *testing.T) {
	var c IssueExprCache
	p, err := c.Predicate("   ")
	if err != nil || p != nil {
		t.Fatalf("p=%v err=%v", p != nil, err)
	}
}

func TestIssueExprCache_Rejects(t *testing.T) {
	var c IssueExprCache
	for _, expr := range []string{`issue.priority ==`, `1 + 1`, `unknown == 1`} {
		if _, err := c.Predicate(expr); err == nil || !httperr.IsBadRequest(err) {
			t.Fatalf("expr=%q err=%v", expr, err)
		}
	}
}

func TestIssueExprCache_ReusesProgram(t *testing.T) {
	var c IssueExprCache
	if _, err := c.Predicate(`issue.state == "opened"`); err != nil {
		t.Fatal(err)
	}
	n := 0
	c.programs.Range(func(any, any) bool { n++; return true })
	if _, err := c.Predicate(`issue.state == "opened"`); err != nil {
		t.Fatal(err)
	}
	m := 0
	c.programs.Range(func(any, any) bool { m++; return true })
	if n != 1 || m != 1 {
		t.Fatalf("programs before=%d after=%d", n, m)
	}
}

func TestIssueExprCache_EvalErrorIsBadRequest(t *testing.T) {
	var c IssueExprCache
	p, err := c.Predicate(`issue.missing == "x"`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p(exprIssue("LOW")); err == nil || !httperr.IsBadRequest(err) {
		t.Fatalf("err=%v", err)
	}

	nonBool, err := c.Predicate(`issue.priority`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := nonBool(exprIssue("LOW")); err == nil || !httperr.IsBadRequest(err) {
		t.Fatalf("err=%v", err)
	}
}
