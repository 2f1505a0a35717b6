package issues

import (
	"errors"
	"strings"
)

// Filter narrows the demand pool. Empty slices impose no constraint.
type Filter struct {
	State      string
	Priorities []string
	Types      []string
	CreatorIDs []string
	Expr       Predicate
}

// Predicate is an additional caller-supplied condition.
type Predicate func(Issue) (bool, error)

func ParseState(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", StateOpened:
		return StateOpened, nil
	case StateClosed:
		return StateClosed, nil
	case StateAll:
		return StateAll, nil
	default:
		return "", errors.New("state must be opened, closed or all")
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (f Filter) Match(it Issue) (bool, error) {
	if f.State != "" && f.State != StateAll && it.GitlabState != f.State {
		return false, nil
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, it.Priority) {
		return false, nil
	}
	if len(f.Types) > 0 && !contains(f.Types, TypeOf(it.GitlabLabels)) {
		return false, nil
	}
	if len(f.CreatorIDs) > 0 && !contains(f.CreatorIDs, it.Creator.ID) {
		return false, nil
	}
	if f.Expr != nil {
		return f.Expr(it)
	}
	return true, nil
}

func Apply(list []Issue, f Filter) ([]Issue, error) {
	out := make([]Issue, 0, len(list))
	for _, it := range list {
		ok, err := f.Match(it)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}
