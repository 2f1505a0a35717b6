package routing

import (
	"errors"
	"strings"
)

type RouteClass string

const (
	RouteClassUI          RouteClass = "ui"
	RouteClassInternalAPI RouteClass = "internal_api"
	RouteClassOps         RouteClass = "ops"
)

// ConsoleAPIPrefix is the path segment under which every BFF endpoint lives.
const ConsoleAPIPrefix = "/console/api"

// Classifier decides which error envelope and middleware a path gets.
type Classifier struct {
	exact map[string]RouteClass
}

func NewClassifier(a Allowlist, entrypoint string) (*Classifier, error) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return nil, errors.New("allowlist: missing entrypoint " + entrypoint)
	}
	if len(ep.Routes) == 0 {
		return nil, errors.New("allowlist: entrypoint routes empty")
	}

	c := &Classifier{exact: make(map[string]RouteClass, len(ep.Routes))}
	for _, r := range ep.Routes {
		if r.Path == "" || r.RouteClass == "" {
			return nil, errors.New("allowlist: route needs path and route_class")
		}
		rc, err := parseRouteClass(r.RouteClass)
		if err != nil {
			return nil, err
		}
		// The router dispatches on exact paths only.
		if strings.ContainsAny(r.Path, "{}") {
			return nil, errors.New("allowlist: path parameters are not supported: " + r.Path)
		}
		c.exact[r.Path] = rc
	}
	return c, nil
}

// Classify maps a request path to its route class. Paths missing from the
// allowlist fall back on their prefix.
func (c *Classifier) Classify(path string) RouteClass {
	if rc, ok := c.exact[path]; ok {
		return rc
	}
	switch {
	case hasPrefixSegment(path, ConsoleAPIPrefix):
		return RouteClassInternalAPI
	case path == "/health", hasPrefixSegment(path, "/debug"):
		return RouteClassOps
	}
	return RouteClassUI
}

func parseRouteClass(raw string) (RouteClass, error) {
	switch rc := RouteClass(raw); rc {
	case RouteClassUI, RouteClassInternalAPI, RouteClassOps:
		return rc, nil
	}
	return "", errors.New("allowlist: unknown route_class " + raw)
}

// hasPrefixSegment matches prefix on a segment boundary. The ":action"
// suffix counts as a boundary so "/x/api/items:delete" sits under "/x/api".
func hasPrefixSegment(path, prefix string) bool {
	if path == prefix {
		return true
	}
	rest, ok := strings.CutPrefix(path, prefix)
	return ok && (strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, ":"))
}
