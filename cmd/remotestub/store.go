package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

// store is the in-memory state behind the stub. Users are keyed by id and
// listed in insertion order.
type store struct {
	mu sync.Mutex

	defs      []fieldmeta.FieldDefinition
	users     map[string]remoteapi.User
	userOrder []string
	// visible[viewerID][targetID] lists the field keys the viewer may see.
	visible map[string]map[string][]string
	catalog []roles.Role
	issues  []issues.Issue
}

func strPtr(s string) *string { return &s }

func newSeededStore(now time.Time) *store {
	s := &store{
		users:   map[string]remoteapi.User{},
		visible: map[string]map[string][]string{},
		catalog: []roles.Role{
			{ID: "role-1", Name: roles.SuperAdmin},
			{ID: "role-2", Name: roles.Admin},
			{ID: "role-3", Name: roles.HRManager},
			{ID: "role-4", Name: roles.ProjectManager},
			{ID: "role-5", Name: roles.Member},
		},
		defs: []fieldmeta.FieldDefinition{
			{Key: "employee_code", Label: "工号", Classification: fieldmeta.ClassificationPublic},
			{Key: "department", Label: "部门", Classification: fieldmeta.ClassificationPublic},
			{Key: "contact_phone", Label: "联系电话", Classification: fieldmeta.ClassificationPublic, SelfEditable: true},
			{Key: "id_number", Label: "身份证号", Classification: fieldmeta.ClassificationConfidential},
			{Key: "bank_account_number", Label: "银行账号", Classification: fieldmeta.ClassificationConfidential},
		},
	}

	dept := &remoteapi.Department{ID: "dept-1", Name: "研发部"}
	s.put(remoteapi.User{
		ID: "dev-admin", Name: "管理员", Username: "admin", Email: "admin@example.com",
		IsActive: true, Department: dept, Roles: []roles.Role{{ID: "role-1", Name: roles.SuperAdmin}},
		FieldValues: []fieldmeta.FieldValue{
			{FieldKey: "employee_code", ValueString: strPtr("E0001")},
			{FieldKey: "id_number", ValueString: strPtr("110101199001011234")},
		},
	})
	s.put(remoteapi.User{
		ID: "dev-hr", Name: "人事", Username: "hr", Email: "hr@example.com",
		IsActive: true, Department: dept, Roles: []roles.Role{{ID: "role-3", Name: roles.HRManager}},
		FieldValues: []fieldmeta.FieldValue{
			{FieldKey: "employee_code", ValueString: strPtr("E0002")},
			{FieldKey: "contact_phone", ValueString: strPtr("13800000002")},
		},
	})
	s.put(remoteapi.User{
		ID: "dev-member", Name: "成员", Username: "member", Email: "member@example.com",
		IsActive: true, Department: dept, Roles: []roles.Role{{ID: "role-5", Name: roles.Member}},
		FieldValues: []fieldmeta.FieldValue{
			{FieldKey: "employee_code", ValueString: strPtr("E0003")},
			{FieldKey: "contact_phone", ValueString: strPtr("13800000003")},
			{FieldKey: "id_number", ValueString: strPtr("110101199203031234")},
			{FieldKey: "bank_account_number", ValueString: strPtr("6222000000000003")},
		},
	})
	// A member sees public fields of everyone and everything of themselves.
	for _, id := range s.userOrder {
		s.visible["dev-member"] = mergeVisible(s.visible["dev-member"], id, []string{"employee_code", "department", "contact_phone"})
	}
	s.visible["dev-member"]["dev-member"] = []string{"employee_code", "department", "contact_phone", "id_number", "bank_account_number"}

	creator := issues.Person{ID: "dev-member", Name: "成员"}
	mk := func(id, title, priority, state string, project int64, labels ...string) issues.Issue {
		return issues.Issue{
			ID: id, Title: title, Priority: priority, Status: "PENDING", Stage: "REVIEW",
			InputSource: "CUSTOMER", Creator: creator, GitlabState: state, GitlabLabels: labels,
			GitlabProjectID: project, CreatedAt: now, UpdatedAt: now,
		}
	}
	s.issues = []issues.Issue{
		mk("issue-1", "导出花名册", "HIGH", issues.StateOpened, 1206, "C:功能", "V:1.2.0"),
		mk("issue-2", "详情页日期格式错误", "URGENT", issues.StateOpened, 1206, "C:缺陷", "V:1.2.0"),
		mk("issue-3", "角色批量设置", "MEDIUM", issues.StateOpened, 1206, "C:功能", "V:1.3.0"),
		mk("issue-4", "字段分类优化", "LOW", issues.StateClosed, 1206, "C:优化"),
		mk("issue-5", "外部系统对接", "MEDIUM", issues.StateOpened, 2001, "C:功能"),
	}
	return s
}

func mergeVisible(m map[string][]string, target string, keys []string) map[string][]string {
	if m == nil {
		m = map[string][]string{}
	}
	m[target] = append([]string(nil), keys...)
	return m
}

func (s *store) put(u remoteapi.User) {
	if _, ok := s.users[u.ID]; !ok {
		s.userOrder = append(s.userOrder, u.ID)
	}
	s.users[u.ID] = u
}

func (s *store) viewer(id string) (remoteapi.Viewer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return remoteapi.Viewer{}, false
	}
	names := make(remoteapi.RoleNames, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return remoteapi.Viewer{ID: u.ID, Name: u.Name, Email: u.Email, Roles: names}, true
}

func (s *store) fieldDefinitions() []fieldmeta.FieldDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]fieldmeta.FieldDefinition{}, s.defs...)
}

func (s *store) upsertFieldDefinition(in remoteapi.FieldDefinitionInput) fieldmeta.FieldDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	def := fieldmeta.FieldDefinition{
		Key:            in.Key,
		Label:          in.Label,
		Classification: fieldmeta.Classification(in.Classification),
		SelfEditable:   in.SelfEditable,
	}
	for i, d := range s.defs {
		if d.Key == def.Key {
			s.defs[i] = def
			return def
		}
	}
	s.defs = append(s.defs, def)
	return def
}

func (s *store) deleteFieldDefinition(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.defs {
		if d.Key == key {
			s.defs = append(s.defs[:i], s.defs[i+1:]...)
			return true
		}
	}
	return false
}

// visibleFieldKeys answers for the viewer; override roles see every key.
func (s *store) visibleFieldKeys(viewerID string, targetID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[viewerID]
	for _, r := range u.Roles {
		if fieldmeta.HasOverrideRole([]string{r.Name}) {
			out := make([]string, 0, len(s.defs))
			for _, d := range s.defs {
				out = append(out, d.Key)
			}
			return out
		}
	}
	if keys, ok := s.visible[viewerID][targetID]; ok {
		return append([]string{}, keys...)
	}
	return []string{}
}

func (s *store) user(id string) (remoteapi.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *store) listUsers(take int) []remoteapi.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remoteapi.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		if take > 0 && len(out) >= take {
			break
		}
		out = append(out, s.users[id])
	}
	return out
}

func (s *store) deleteUser(id string) remoteapi.DeleteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return remoteapi.DeleteResult{Success: false, Message: "用户不存在"}
	}
	for _, it := range s.issues {
		if it.Creator.ID == id && it.GitlabState == issues.StateOpened {
			return remoteapi.DeleteResult{Success: false, Message: "该用户仍有未关闭的需求"}
		}
	}
	delete(s.users, id)
	for i, v := range s.userOrder {
		if v == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}
	return remoteapi.DeleteResult{Success: true, Message: "删除成功"}
}

func (s *store) roleCatalog() []roles.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]roles.Role{}, s.catalog...)
}

func (s *store) setUserRoles(userID string, names []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	byName := make(map[string]roles.Role, len(s.catalog))
	for _, r := range s.catalog {
		byName[r.Name] = r
	}
	u.Roles = make([]roles.Role, 0, len(names))
	for _, n := range names {
		u.Roles = append(u.Roles, byName[n])
	}
	s.users[userID] = u
	return true
}

func (s *store) issue(id string) (issues.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.issues {
		if it.ID == id {
			return it, true
		}
	}
	return issues.Issue{}, false
}

func (s *store) listIssues(filter remoteapi.IssueFilter, take int) []issues.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]issues.Issue, 0, len(s.issues))
	for _, it := range s.issues {
		if filter.ProjectID != 0 && it.GitlabProjectID != filter.ProjectID {
			continue
		}
		if filter.GitlabState != "" && !strings.EqualFold(filter.GitlabState, it.GitlabState) {
			continue
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if take > 0 && len(out) > take {
		out = out[:take]
	}
	return out
}

func (s *store) approveIssue(issueID string, approverID string, now time.Time) (issues.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	approver, ok := s.users[approverID]
	if !ok {
		return issues.Issue{}, false
	}
	for i, it := range s.issues {
		if it.ID != issueID {
			continue
		}
		it.Status = "APPROVED"
		it.Stage = "SCHEDULED"
		it.Assignee = &issues.Person{ID: approver.ID, Name: approver.Name, Email: approver.Email}
		it.UpdatedAt = now
		s.issues[i] = it
		return it, true
	}
	return issues.Issue{}, false
}
