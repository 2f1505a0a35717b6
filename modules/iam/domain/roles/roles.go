package roles

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

const (
	SuperAdmin     = "super_admin"
	Admin          = "admin"
	HRManager      = "hr_manager"
	ProjectManager = "project_manager"
	Member         = "member"
)

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Descriptor struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var descriptors = map[string]Descriptor{
	SuperAdmin:     {Name: SuperAdmin, Label: "超级管理员", Description: "拥有系统所有权限，可管理所有用户和数据"},
	Admin:          {Name: Admin, Label: "管理员", Description: "可管理用户、部门、项目等，但不能修改系统配置"},
	HRManager:      {Name: HRManager, Label: "HR管理员", Description: "可查看和管理人员信息，包括保密字段"},
	ProjectManager: {Name: ProjectManager, Label: "主管", Description: "可管理项目和团队，查看项目成员信息"},
	Member:         {Name: Member, Label: "普通成员", Description: "普通成员，只能查看公开信息和编辑自己的资料"},
}

// Describe returns the presentation entry for a role; unknown roles use their
// own name as the label.
func Describe(name string) Descriptor {
	if d, ok := descriptors[name]; ok {
		return d
	}
	return Descriptor{Name: name, Label: name}
}

var adminRoleNames = map[string]struct{}{
	SuperAdmin:     {},
	Admin:          {},
	HRManager:      {},
	ProjectManager: {},
}

func IsAdminRole(name string) bool {
	_, ok := adminRoleNames[name]
	return ok
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

func (u User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

func (u User) HasAdminRole() bool {
	for _, r := range u.Roles {
		if IsAdminRole(r.Name) {
			return true
		}
	}
	return false
}

var ErrUnknownRole = errors.New("unknown role")

// NormalizeAssignment prepares a full role overwrite. Any subset of the catalog
// is accepted, including the empty set; nothing protects the last super_admin.
func NormalizeAssignment(requested []string, catalog []Role) ([]string, error) {
	known := make(map[string]struct{}, len(catalog))
	for _, r := range catalog {
		known[r.Name] = struct{}{}
	}

	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, raw := range requested {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRole, name)
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// Without returns current minus name, keeping order.
func Without(current []string, name string) []string {
	out := make([]string, 0, len(current))
	for _, r := range current {
		if r != name {
			out = append(out, r)
		}
	}
	return out
}

// SearchUsers matches term against name and email with Unicode case folding.
// An empty term matches every user.
func SearchUsers(users []User, term string) []User {
	// Casers hold state and must not be shared across goroutines.
	folder := cases.Fold()
	term = folder.String(strings.TrimSpace(term))
	out := make([]User, 0, len(users))
	for _, u := range users {
		if term == "" ||
			strings.Contains(folder.String(u.Name), term) ||
			strings.Contains(folder.String(u.Email), term) {
			out = append(out, u)
		}
	}
	return out
}

func AdminUsers(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.HasAdminRole() {
			out = append(out, u)
		}
	}
	return out
}

// Catalog decorates remote roles with labels, ordered by name.
func Catalog(remote []Role) []Descriptor {
	out := make([]Descriptor, 0, len(remote))
	for _, r := range remote {
		out = append(out, Describe(r.Name))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
