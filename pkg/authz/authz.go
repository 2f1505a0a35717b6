// Package authz checks viewer roles against the casbin policy in
// config/access.
package authz

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

// ParseMode reads an AUTHZ_MODE value. Empty means enforce. Disabled is only
// accepted with unsafeAllowDisabled.
func ParseMode(raw string, unsafeAllowDisabled bool) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeEnforce, nil
	case ModeEnforce, ModeShadow:
		return m, nil
	case ModeDisabled:
		if !unsafeAllowDisabled {
			return "", errors.New("authz: AUTHZ_MODE=disabled requires AUTHZ_UNSAFE_ALLOW_DISABLED=1")
		}
		return m, nil
	default:
		return "", fmt.Errorf("authz: invalid AUTHZ_MODE %q (expected enforce|shadow|disabled)", raw)
	}
}

func ModeFromEnv() (Mode, error) {
	return ParseMode(os.Getenv("AUTHZ_MODE"), os.Getenv("AUTHZ_UNSAFE_ALLOW_DISABLED") == "1")
}

// Decision is the outcome of one check. Enforced is false in shadow and
// disabled modes, where callers must let the request through.
type Decision struct {
	Allowed  bool
	Enforced bool
	Subject  string
}

// Denied reports whether the caller has to reject the request.
func (d Decision) Denied() bool { return d.Enforced && !d.Allowed }

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

func NewAuthorizer(modelPath string, policyPath string, mode Mode) (*Authorizer, error) {
	enforcer, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	enforcer.SetAdapter(fileadapter.NewAdapter(policyPath))
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

func (a *Authorizer) Mode() Mode { return a.mode }

// SubjectForRole maps a role name to its policy subject, "role:<name>".
func SubjectForRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleAnonymous
	}
	return "role:" + role
}

// SubjectsForRoles maps viewer roles to subjects; no roles means anonymous.
func SubjectsForRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if strings.TrimSpace(r) != "" {
			out = append(out, SubjectForRole(r))
		}
	}
	if len(out) == 0 {
		out = append(out, SubjectForRole(RoleAnonymous))
	}
	return out
}

func (a *Authorizer) Check(subject string, req Requirement) (Decision, error) {
	d := Decision{Subject: subject}
	switch a.mode {
	case ModeDisabled:
		d.Allowed = true
		return d, nil
	case ModeShadow, ModeEnforce:
		d.Enforced = a.mode == ModeEnforce
		ok, err := a.enforcer.Enforce(subject, req.Object, req.Action)
		if err != nil {
			return d, err
		}
		d.Allowed = ok
		return d, nil
	default:
		return d, errors.New("authz: unknown mode " + string(a.mode))
	}
}

// CheckRoles allows the request when any of the roles is allowed. The
// returned Subject is the first subject that matched.
func (a *Authorizer) CheckRoles(roles []string, req Requirement) (Decision, error) {
	var d Decision
	for _, subject := range SubjectsForRoles(roles) {
		var err error
		d, err = a.Check(subject, req)
		if err != nil || d.Allowed {
			return d, err
		}
	}
	d.Subject = ""
	return d, nil
}
