package remoteapi

import (
	"context"

	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

func (c *Client) FieldDefinitions(ctx context.Context) ([]fieldmeta.FieldDefinition, error) {
	var out struct {
		FieldDefinitions []fieldmeta.FieldDefinition `json:"fieldDefinitions"`
	}
	if err := c.do(ctx, opFieldDefinitions, nil, &out); err != nil {
		return nil, err
	}
	if out.FieldDefinitions == nil {
		out.FieldDefinitions = []fieldmeta.FieldDefinition{}
	}
	return out.FieldDefinitions, nil
}

func (c *Client) UpsertFieldDefinition(ctx context.Context, def fieldmeta.FieldDefinition) (fieldmeta.FieldDefinition, error) {
	input := FieldDefinitionInput{
		Key:            def.Key,
		Label:          def.Label,
		Classification: string(def.Classification),
		SelfEditable:   def.SelfEditable,
	}
	var out struct {
		UpsertFieldDefinition fieldmeta.FieldDefinition `json:"upsertFieldDefinition"`
	}
	if err := c.do(ctx, opUpsertFieldDefinition, map[string]any{"input": input}, &out); err != nil {
		return fieldmeta.FieldDefinition{}, err
	}
	return out.UpsertFieldDefinition, nil
}

func (c *Client) DeleteFieldDefinition(ctx context.Context, key string) error {
	return c.do(ctx, opDeleteFieldDefinition, map[string]any{"key": key}, nil)
}

func (c *Client) VisibleFieldKeys(ctx context.Context, resource string, targetUserID string) ([]string, error) {
	var out struct {
		VisibleFieldKeys []string `json:"visibleFieldKeys"`
	}
	vars := map[string]any{"resource": resource, "targetUserId": targetUserID}
	if err := c.do(ctx, opVisibleFieldKeys, vars, &out); err != nil {
		return nil, err
	}
	if out.VisibleFieldKeys == nil {
		out.VisibleFieldKeys = []string{}
	}
	return out.VisibleFieldKeys, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, opUser, map[string]any{"id": id}, &out); err != nil {
		return User{}, err
	}
	if out.User == nil {
		return User{}, &RemoteError{Operation: opUser, Message: "user not found"}
	}
	return *out.User, nil
}

func (c *Client) GetUsers(ctx context.Context, take int) ([]User, error) {
	vars := map[string]any{}
	if take > 0 {
		vars["take"] = take
	}
	var out struct {
		Users struct {
			Total int    `json:"total"`
			Users []User `json:"users"`
		} `json:"users"`
	}
	if err := c.do(ctx, opUsers, vars, &out); err != nil {
		return nil, err
	}
	if out.Users.Users == nil {
		return []User{}, nil
	}
	return out.Users.Users, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) (DeleteResult, error) {
	var out struct {
		DeleteUser DeleteResult `json:"deleteUser"`
	}
	if err := c.do(ctx, opDeleteUser, map[string]any{"id": id}, &out); err != nil {
		return DeleteResult{}, err
	}
	return out.DeleteUser, nil
}

func (c *Client) GetRoles(ctx context.Context) ([]roles.Role, error) {
	var out struct {
		Roles []roles.Role `json:"roles"`
	}
	if err := c.do(ctx, opRoles, nil, &out); err != nil {
		return nil, err
	}
	if out.Roles == nil {
		out.Roles = []roles.Role{}
	}
	return out.Roles, nil
}

func (c *Client) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	var out struct {
		UserPermissions struct {
			Roles RoleNames `json:"roles"`
		} `json:"userPermissions"`
	}
	if err := c.do(ctx, opUserPermissions, map[string]any{"userId": userID}, &out); err != nil {
		return nil, err
	}
	if out.UserPermissions.Roles == nil {
		return []string{}, nil
	}
	return out.UserPermissions.Roles, nil
}

func (c *Client) SetUserRoles(ctx context.Context, userID string, roleNames []string) error {
	if roleNames == nil {
		roleNames = []string{}
	}
	vars := map[string]any{"userId": userID, "roleNames": roleNames}
	return c.do(ctx, opSetUserRoles, vars, nil)
}

func (c *Client) GetIssue(ctx context.Context, id string) (issues.Issue, error) {
	var out struct {
		Issue *issues.Issue `json:"issue"`
	}
	if err := c.do(ctx, opIssue, map[string]any{"id": id}, &out); err != nil {
		return issues.Issue{}, err
	}
	if out.Issue == nil {
		return issues.Issue{}, &RemoteError{Operation: opIssue, Message: "issue not found"}
	}
	return *out.Issue, nil
}

func (c *Client) GetIssues(ctx context.Context, filter IssueFilter, take int) ([]issues.Issue, error) {
	vars := map[string]any{"filter": filter}
	if take > 0 {
		vars["take"] = take
	}
	var out struct {
		Issues struct {
			Total  int            `json:"total"`
			Issues []issues.Issue `json:"issues"`
		} `json:"issues"`
	}
	if err := c.do(ctx, opIssues, vars, &out); err != nil {
		return nil, err
	}
	if out.Issues.Issues == nil {
		return []issues.Issue{}, nil
	}
	return out.Issues.Issues, nil
}

func (c *Client) ApproveIssue(ctx context.Context, issueID string, approverID string) (issues.Issue, error) {
	var out struct {
		ApproveIssue issues.Issue `json:"approveIssue"`
	}
	vars := map[string]any{"issueId": issueID, "approverId": approverID}
	if err := c.do(ctx, opApproveIssue, vars, &out); err != nil {
		return issues.Issue{}, err
	}
	return out.ApproveIssue, nil
}

// Me resolves the viewer behind the forwarded credentials.
func (c *Client) Me(ctx context.Context) (Viewer, error) {
	if _, ok := credentialsFrom(ctx); !ok {
		return Viewer{}, ErrMissingCredentials
	}
	var out struct {
		Me *Viewer `json:"me"`
	}
	if err := c.do(ctx, opMe, nil, &out); err != nil {
		return Viewer{}, err
	}
	if out.Me == nil {
		return Viewer{}, ErrMissingCredentials
	}
	if out.Me.Roles == nil {
		out.Me.Roles = RoleNames{}
	}
	return *out.Me, nil
}
