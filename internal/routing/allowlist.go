package routing

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

const allowlistVersion = 1

// Allowlist is the route inventory loaded from config/routing/allowlist.yaml.
// A request that reaches the router must match one of its routes.
type Allowlist struct {
	Version     int                   `yaml:"version"`
	Entrypoints map[string]Entrypoint `yaml:"entrypoints"`
}

type Entrypoint struct {
	Routes []Route `yaml:"routes"`
}

type Route struct {
	Path       string   `yaml:"path"`
	Methods    []string `yaml:"methods"`
	RouteClass string   `yaml:"route_class"`
}

// Allows reports whether method is declared for the route.
func (r Route) Allows(method string) bool {
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func ParseAllowlistYAML(b []byte) (Allowlist, error) {
	var a Allowlist
	if err := yaml.Unmarshal(b, &a); err != nil {
		return Allowlist{}, fmt.Errorf("allowlist: %w", err)
	}
	if a.Version != allowlistVersion {
		return Allowlist{}, fmt.Errorf("allowlist: unsupported version %d", a.Version)
	}
	if len(a.Entrypoints) == 0 {
		return Allowlist{}, errors.New("allowlist: missing entrypoints")
	}
	for name, ep := range a.Entrypoints {
		if err := ep.validate(); err != nil {
			return Allowlist{}, fmt.Errorf("allowlist: entrypoint %s: %w", name, err)
		}
	}
	return a, nil
}

func LoadAllowlist(path string) (Allowlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Allowlist{}, err
	}
	return ParseAllowlistYAML(b)
}

func (e Entrypoint) validate() error {
	seen := make(map[string]bool, len(e.Routes))
	for _, r := range e.Routes {
		if seen[r.Path] {
			return fmt.Errorf("duplicate path %s", r.Path)
		}
		seen[r.Path] = true
		if len(r.Methods) == 0 {
			return fmt.Errorf("path %s declares no methods", r.Path)
		}
		for _, m := range r.Methods {
			if m != http.MethodGet && m != http.MethodPost {
				return fmt.Errorf("path %s: unsupported method %s", r.Path, m)
			}
		}
	}
	return nil
}
