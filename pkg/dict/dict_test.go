package dict

import (
	"context"
	"errors"
	"testing"
)

type resolverStub struct{}

func (resolverStub) ResolveValueLabel(context.Context, string, string) (string, bool, error) {
	return "高", true, nil
}

func (resolverStub) ListOptions(context.Context, string, string, int) ([]Option, error) {
	return []Option{{Code: "HIGH", Label: "高"}}, nil
}

type nilResolver struct{}

func (*nilResolver) ResolveValueLabel(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (*nilResolver) ListOptions(context.Context, string, string, int) ([]Option, error) {
	return nil, nil
}

func resetRegistry(t *testing.T) {
	t.Helper()
	prev := current.Swap(nil)
	t.Cleanup(func() { current.Store(prev) })
}

func TestResolverRegistry(t *testing.T) {
	resetRegistry(t)

	if err := RegisterResolver(nil); err == nil {
		t.Fatal("expected error")
	}
	var typedNil *nilResolver
	if err := RegisterResolver(typedNil); err == nil {
		t.Fatal("expected typed nil error")
	}
	if _, _, err := ResolveValueLabel(context.Background(), CodeIssuePriority, "HIGH"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v", err)
	}
	if _, err := ListOptions(context.Background(), CodeIssuePriority, "", 10); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v", err)
	}
	if got := LabelOrCode(context.Background(), CodeIssuePriority, "HIGH"); got != "HIGH" {
		t.Fatalf("got=%q", got)
	}

	if err := RegisterResolver(resolverStub{}); err != nil {
		t.Fatalf("register err=%v", err)
	}
	label, ok, err := ResolveValueLabel(context.Background(), " issue_priority ", " HIGH ")
	if err != nil || !ok || label != "高" {
		t.Fatalf("label=%q ok=%v err=%v", label, ok, err)
	}
	options, err := ListOptions(context.Background(), " issue_priority ", " ", 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(options) != 1 || options[0].Code != "HIGH" {
		t.Fatalf("options=%+v", options)
	}
}

func TestStaticResolver(t *testing.T) {
	resetRegistry(t)
	if err := RegisterResolver(NewStaticResolver(ConsoleDictionaries())); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	cases := []struct {
		dict, code, want string
	}{
		{CodeIssuePriority, "URGENT", "紧急"},
		{CodeIssueStatus, "IN_PRD", "PRD中"},
		{CodeIssueStage, "FEEDBACK", "反馈池"},
		{CodeIssueInputSource, "BUG", "Bug修复"},
		{CodeIssueType, "TECHNICAL_DEBT", "技术债"},
		{CodeRole, "hr_manager", "HR管理员"},
		{CodeIssueStage, "UNKNOWN", "UNKNOWN"},
		{"no_such_dict", "X", "X"},
	}
	for _, c := range cases {
		if got := LabelOrCode(ctx, c.dict, c.code); got != c.want {
			t.Fatalf("%s/%s: got=%q want=%q", c.dict, c.code, got, c.want)
		}
	}

	all, err := ListOptions(ctx, CodeIssuePriority, "", 0)
	if err != nil || len(all) != 4 || all[0].Code != "LOW" || all[3].Code != "URGENT" {
		t.Fatalf("all=%+v err=%v", all, err)
	}
	limited, _ := ListOptions(ctx, CodeIssueStatus, "", 2)
	if len(limited) != 2 {
		t.Fatalf("limited=%+v", limited)
	}
	byLabel, _ := ListOptions(ctx, CodeIssueStatus, "中", 0)
	if len(byLabel) != 5 {
		t.Fatalf("byLabel=%+v", byLabel)
	}
	byCode, _ := ListOptions(ctx, CodeIssueType, "bug", 0)
	if len(byCode) != 1 || byCode[0].Code != "BUG_FIX" {
		t.Fatalf("byCode=%+v", byCode)
	}
}

func TestNewStaticResolver_Copies(t *testing.T) {
	src := map[string][]Option{"d": {{Code: "A", Label: "a"}}}
	r := NewStaticResolver(src)
	src["d"][0].Label = "changed"
	label, ok, _ := r.ResolveValueLabel(context.Background(), "d", "A")
	if !ok || label != "a" {
		t.Fatalf("label=%q", label)
	}
}
