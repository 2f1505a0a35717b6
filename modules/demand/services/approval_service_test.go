package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

type fakeGateway struct {
	approveErr error
	getErr     error
	approved   []string
	gets       int
}

func (g *fakeGateway) ApproveIssue(_ context.Context, issueID string, approverID string) (issues.Issue, error) {
	g.approved = append(g.approved, issueID+":"+approverID)
	if g.approveErr != nil {
		return issues.Issue{}, g.approveErr
	}
	return issues.Issue{ID: issueID}, nil
}

func (g *fakeGateway) GetIssue(_ context.Context, id string) (issues.Issue, error) {
	g.gets++
	if g.getErr != nil {
		return issues.Issue{}, g.getErr
	}
	return issues.Issue{ID: id, Status: "APPROVED"}, nil
}

func TestNormalizeApproval(t *testing.T) {
	full := ApprovalRequest{IssueID: " i1 ", Version: "1.2", Comment: "ok", ApproverID: "u2"}

	got, err := NormalizeApproval(full)
	if err != nil {
		t.Fatal(err)
	}
	if got.IssueID != "i1" || got.Level != ApprovalLevel1 {
		t.Fatalf("got=%+v", got)
	}

	for name, req := range map[string]ApprovalRequest{
		"no issue":    {Version: "1", Comment: "c", ApproverID: "u"},
		"no version":  {IssueID: "i", Comment: "c", ApproverID: "u"},
		"no comment":  {IssueID: "i", Version: "1", Comment: "  ", ApproverID: "u"},
		"no approver": {IssueID: "i", Version: "1", Comment: "c"},
		"bad level":   {IssueID: "i", Version: "1", Comment: "c", ApproverID: "u", Level: "level4"},
	} {
		if _, err := NormalizeApproval(req); !httperr.IsBadRequest(err) {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}

func TestApprovalService_Approve(t *testing.T) {
	t.Run("validation happens before remote call", func(t *testing.T) {
		g := &fakeGateway{}
		_, err := NewApprovalService(g).Approve(context.Background(), ApprovalRequest{IssueID: "i1"})
		if err == nil || err.Error() != errApprovalIncomplete {
			t.Fatalf("err=%v", err)
		}
		if len(g.approved) != 0 || g.gets != 0 {
			t.Fatalf("gateway called: %+v", g)
		}
	})

	t.Run("ok reloads issue", func(t *testing.T) {
		g := &fakeGateway{}
		res, err := NewApprovalService(g).Approve(context.Background(), ApprovalRequest{
			IssueID: "i1", Version: "1.2", Comment: "同意", ApproverID: "u2", Level: ApprovalLevel3,
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(g.approved) != 1 || g.approved[0] != "i1:u2" || g.gets != 1 {
			t.Fatalf("gateway=%+v", g)
		}
		if res.Issue.Status != "APPROVED" || res.Level != ApprovalLevel3 || res.Message != "最终评审通过，需求已移至排期管理" {
			t.Fatalf("res=%+v", res)
		}
	})

	t.Run("approve error", func(t *testing.T) {
		boom := errors.New("boom")
		g := &fakeGateway{approveErr: boom}
		if _, err := NewApprovalService(g).Approve(context.Background(), ApprovalRequest{
			IssueID: "i1", Version: "1.2", Comment: "c", ApproverID: "u2",
		}); !errors.Is(err, boom) {
			t.Fatalf("err=%v", err)
		}
		if g.gets != 0 {
			t.Fatal("unexpected reload")
		}
	})

	t.Run("reload error", func(t *testing.T) {
		boom := errors.New("boom")
		g := &fakeGateway{getErr: boom}
		if _, err := NewApprovalService(g).Approve(context.Background(), ApprovalRequest{
			IssueID: "i1", Version: "1.2", Comment: "c", ApproverID: "u2",
		}); !errors.Is(err, boom) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestApprovalMessage(t *testing.T) {
	if approvalMessage(ApprovalLevel1) != "第一级评审提交成功，已转交下一级审批人" {
		t.Fatal(approvalMessage(ApprovalLevel1))
	}
	if approvalMessage(ApprovalLevel2) != "第二级评审提交成功，已转交下一级审批人" {
		t.Fatal(approvalMessage(ApprovalLevel2))
	}
}
