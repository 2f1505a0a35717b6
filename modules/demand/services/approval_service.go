package services

import (
	"context"
	"strings"

	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

const (
	ApprovalLevel1 = "level1"
	ApprovalLevel2 = "level2"
	ApprovalLevel3 = "level3"
)

const errApprovalIncomplete = "请填写完整信息：版本、评审意见和审批人"

type IssueGateway interface {
	GetIssue(ctx context.Context, id string) (issues.Issue, error)
	ApproveIssue(ctx context.Context, issueID string, approverID string) (issues.Issue, error)
}

type ApprovalRequest struct {
	IssueID    string
	Version    string
	Comment    string
	ApproverID string
	Level      string
}

type ApprovalResult struct {
	Issue   issues.Issue `json:"issue"`
	Version string       `json:"version"`
	Comment string       `json:"comment"`
	Level   string       `json:"level"`
	Message string       `json:"message"`
}

type ApprovalService struct {
	gateway IssueGateway
}

func NewApprovalService(gateway IssueGateway) ApprovalService {
	return ApprovalService{gateway: gateway}
}

// NormalizeApproval trims the request and checks the required fields. Level
// defaults to level1.
func NormalizeApproval(req ApprovalRequest) (ApprovalRequest, error) {
	req.IssueID = strings.TrimSpace(req.IssueID)
	req.Version = strings.TrimSpace(req.Version)
	req.Comment = strings.TrimSpace(req.Comment)
	req.ApproverID = strings.TrimSpace(req.ApproverID)
	req.Level = strings.TrimSpace(req.Level)

	if req.IssueID == "" {
		return ApprovalRequest{}, httperr.NewBadRequest("issue_id is required")
	}
	if req.Version == "" || req.Comment == "" || req.ApproverID == "" {
		return ApprovalRequest{}, httperr.NewBadRequest(errApprovalIncomplete)
	}
	switch req.Level {
	case "":
		req.Level = ApprovalLevel1
	case ApprovalLevel1, ApprovalLevel2, ApprovalLevel3:
	default:
		return ApprovalRequest{}, httperr.NewBadRequest("level must be level1, level2 or level3")
	}
	return req, nil
}

// Approve records a single-level approval remotely and returns the reloaded
// issue. Version, comment and level are echoed, not persisted.
func (s ApprovalService) Approve(ctx context.Context, req ApprovalRequest) (ApprovalResult, error) {
	req, err := NormalizeApproval(req)
	if err != nil {
		return ApprovalResult{}, err
	}
	if _, err := s.gateway.ApproveIssue(ctx, req.IssueID, req.ApproverID); err != nil {
		return ApprovalResult{}, err
	}
	it, err := s.gateway.GetIssue(ctx, req.IssueID)
	if err != nil {
		return ApprovalResult{}, err
	}
	return ApprovalResult{
		Issue:   it,
		Version: req.Version,
		Comment: req.Comment,
		Level:   req.Level,
		Message: approvalMessage(req.Level),
	}, nil
}

func approvalMessage(level string) string {
	switch level {
	case ApprovalLevel3:
		return "最终评审通过，需求已移至排期管理"
	case ApprovalLevel2:
		return "第二级评审提交成功，已转交下一级审批人"
	default:
		return "第一级评审提交成功，已转交下一级审批人"
	}
}
