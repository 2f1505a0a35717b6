package dict

import (
	"context"
	"strings"
)

const (
	CodeIssuePriority    = "issue_priority"
	CodeIssueStatus      = "issue_status"
	CodeIssueStage       = "issue_stage"
	CodeIssueInputSource = "issue_input_source"
	CodeIssueType        = "issue_type"
	CodeRole             = "role"
)

// StaticResolver serves dictionaries compiled into the binary. Option order
// is preserved for listing.
type StaticResolver struct {
	dicts map[string][]Option
}

func NewStaticResolver(dicts map[string][]Option) StaticResolver {
	cp := make(map[string][]Option, len(dicts))
	for k, v := range dicts {
		cp[k] = append([]Option(nil), v...)
	}
	return StaticResolver{dicts: cp}
}

func (s StaticResolver) ResolveValueLabel(_ context.Context, dictCode string, code string) (string, bool, error) {
	for _, o := range s.dicts[dictCode] {
		if o.Code == code {
			return o.Label, true, nil
		}
	}
	return "", false, nil
}

func (s StaticResolver) ListOptions(_ context.Context, dictCode string, keyword string, limit int) ([]Option, error) {
	out := make([]Option, 0, len(s.dicts[dictCode]))
	for _, o := range s.dicts[dictCode] {
		if keyword != "" && !strings.Contains(o.Label, keyword) && !strings.Contains(o.Code, strings.ToUpper(keyword)) {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func ConsoleDictionaries() map[string][]Option {
	return map[string][]Option{
		CodeIssuePriority: {
			{Code: "LOW", Label: "低"},
			{Code: "MEDIUM", Label: "中"},
			{Code: "HIGH", Label: "高"},
			{Code: "URGENT", Label: "紧急"},
		},
		CodeIssueStatus: {
			{Code: "OPEN", Label: "待处理"},
			{Code: "IN_DISCUSSION", Label: "讨论中"},
			{Code: "APPROVED", Label: "已批准"},
			{Code: "IN_PRD", Label: "PRD中"},
			{Code: "IN_DEVELOPMENT", Label: "开发中"},
			{Code: "IN_TESTING", Label: "测试中"},
			{Code: "IN_ACCEPTANCE", Label: "验收中"},
			{Code: "COMPLETED", Label: "已完成"},
			{Code: "REJECTED", Label: "已拒绝"},
			{Code: "CANCELLED", Label: "已取消"},
		},
		CodeIssueStage: {
			{Code: "FEEDBACK", Label: "反馈池"},
			{Code: "SCHEDULED", Label: "已排期"},
			{Code: "IN_PROGRESS", Label: "进行中"},
			{Code: "RELEASED", Label: "已发布"},
			{Code: "REJECTED", Label: "已拒绝"},
			{Code: "ARCHIVED", Label: "已归档"},
		},
		CodeIssueInputSource: {
			{Code: "INTERNAL", Label: "内部", Icon: "🏢"},
			{Code: "CLIENT", Label: "客户", Icon: "👤"},
			{Code: "MARKET", Label: "市场", Icon: "📊"},
			{Code: "COMPETITOR", Label: "竞品", Icon: "⚔️"},
			{Code: "FEEDBACK", Label: "用户反馈", Icon: "💬"},
			{Code: "BUG", Label: "Bug修复", Icon: "🐛"},
		},
		CodeIssueType: {
			{Code: "FEATURE", Label: "新功能", Icon: "✨"},
			{Code: "ENHANCEMENT", Label: "功能优化", Icon: "⚡"},
			{Code: "BUG_FIX", Label: "Bug修复", Icon: "🐛"},
			{Code: "TECHNICAL_DEBT", Label: "技术债", Icon: "🔧"},
			{Code: "RESEARCH", Label: "研究", Icon: "🔬"},
			{Code: "OPTIMIZATION", Label: "性能优化", Icon: "🚀"},
		},
		CodeRole: {
			{Code: "super_admin", Label: "超级管理员"},
			{Code: "admin", Label: "管理员"},
			{Code: "hr_manager", Label: "HR管理员"},
			{Code: "project_manager", Label: "主管"},
			{Code: "member", Label: "普通成员"},
		},
	}
}
