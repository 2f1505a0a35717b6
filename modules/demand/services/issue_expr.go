package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

const issueExprCostLimit = 10000

var newIssueCELEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("issue", cel.MapType(cel.StringType, cel.DynType)))
}

// IssueExprCache compiles demand-pool filter expressions once per distinct
// source text.
type IssueExprCache struct {
	programs sync.Map
}

// Predicate compiles expr (a CEL boolean over the map variable issue) into an
// issue filter. A blank expression yields a nil predicate.
func (c *IssueExprCache) Predicate(expr string) (issues.Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	program, err := c.program(expr)
	if err != nil {
		return nil, httperr.NewBadRequest("invalid expr: " + err.Error())
	}
	return func(it issues.Issue) (bool, error) {
		out, _, err := program.Eval(map[string]any{"issue": IssueActivation(it)})
		if err != nil {
			return false, httperr.NewBadRequest("expr evaluation failed: " + err.Error())
		}
		v, ok := out.Value().(bool)
		if !ok {
			return false, httperr.BadRequestf("expr returned %T, want bool", out.Value())
		}
		return v, nil
	}, nil
}

func (c *IssueExprCache) program(expr string) (cel.Program, error) {
	if cached, ok := c.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := newIssueCELEnv()
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, errors.New("expression must be boolean")
	}
	program, err := env.Program(ast, cel.CostLimit(issueExprCostLimit))
	if err != nil {
		return nil, err
	}
	actual, _ := c.programs.LoadOrStore(expr, program)
	return actual.(cel.Program), nil
}

// IssueActivation is the view of an issue exposed to filter expressions.
func IssueActivation(it issues.Issue) map[string]any {
	labels := it.GitlabLabels
	if labels == nil {
		labels = []string{}
	}
	return map[string]any{
		"priority":   it.Priority,
		"state":      it.GitlabState,
		"type":       issues.TypeOf(it.GitlabLabels),
		"creator_id": it.Creator.ID,
		"labels":     labels,
		"title":      it.Title,
		"version":    issues.VersionOf(it.GitlabLabels),
	}
}
