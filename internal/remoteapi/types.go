package remoteapi

import (
	"encoding/json"
	"errors"

	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Username    string                 `json:"username"`
	Email       string                 `json:"email"`
	Phone       string                 `json:"phone"`
	Avatar      string                 `json:"avatar"`
	IsActive    bool                   `json:"isActive"`
	Department  *Department            `json:"department"`
	Roles       []roles.Role           `json:"roles"`
	FieldValues []fieldmeta.FieldValue `json:"fieldValues"`
}

func (u User) Directory() roles.User {
	return roles.User{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.Roles}
}

func (u User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return u.Department.Name
}

// RoleNames accepts both ["a"] and [{"name":"a"}] encodings.
type RoleNames []string

func (r *RoleNames) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name != "" {
				out = append(out, name)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return errors.New("remoteapi: role must be a string or an object with name")
		}
		if obj.Name != "" {
			out = append(out, obj.Name)
		}
	}
	*r = out
	return nil
}

// Viewer is the identity behind the forwarded session.
type Viewer struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Roles RoleNames `json:"roles"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// IssueFilter is passed through to the remote issue search.
type IssueFilter struct {
	GitlabState string `json:"gitlabState,omitempty"`
	ProjectID   int64  `json:"gitlabProjectId,omitempty"`
}

type FieldDefinitionInput struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	Classification string `json:"classification"`
	SelfEditable   bool   `json:"selfEditable"`
}
