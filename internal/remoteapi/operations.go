package remoteapi

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const userFields = `
fragment UserFields on User {
  id
  name
  username
  email
  phone
  avatar
  isActive
  department { id name }
  roles { id name }
  fieldValues { fieldKey valueString valueNumber valueDate valueJson }
}`

const issueFields = `
fragment IssueFields on Issue {
  id
  title
  description
  priority
  status
  stage
  inputSource
  issueType
  creator { id name username email avatar }
  assignee { id name username email avatar }
  gitlabState
  gitlabLabels
  gitlabProjectId
  gitlabUrl
  createdAt
  updatedAt
}`

const fieldDefinitionFields = `
fragment FieldDefinitionFields on FieldDefinition {
  key
  label
  classification
  selfEditable
}`

const (
	opFieldDefinitions      = "FieldDefinitions"
	opUpsertFieldDefinition = "UpsertFieldDefinition"
	opDeleteFieldDefinition = "DeleteFieldDefinition"
	opVisibleFieldKeys      = "VisibleFieldKeys"
	opUser                  = "User"
	opUsers                 = "Users"
	opDeleteUser            = "DeleteUser"
	opRoles                 = "Roles"
	opUserPermissions       = "UserPermissions"
	opSetUserRoles          = "SetUserRoles"
	opIssue                 = "Issue"
	opIssues                = "Issues"
	opApproveIssue          = "ApproveIssue"
	opMe                    = "Me"
)

var operations = map[string]string{
	opFieldDefinitions: `query FieldDefinitions {
  fieldDefinitions { ...FieldDefinitionFields }
}` + fieldDefinitionFields,
	opUpsertFieldDefinition: `mutation UpsertFieldDefinition($input: FieldDefinitionInput!) {
  upsertFieldDefinition(input: $input) { ...FieldDefinitionFields }
}` + fieldDefinitionFields,
	opDeleteFieldDefinition: `mutation DeleteFieldDefinition($key: String!) {
  deleteFieldDefinition(key: $key)
}`,
	opVisibleFieldKeys: `query VisibleFieldKeys($resource: String!, $targetUserId: ID!) {
  visibleFieldKeys(resource: $resource, targetUserId: $targetUserId)
}`,
	opUser: `query User($id: ID!) {
  user(id: $id) { ...UserFields }
}` + userFields,
	opUsers: `query Users($take: Int) {
  users(take: $take) { total users { ...UserFields } }
}` + userFields,
	opDeleteUser: `mutation DeleteUser($id: ID!) {
  deleteUser(id: $id) { success message }
}`,
	opRoles: `query Roles {
  roles { id name }
}`,
	opUserPermissions: `query UserPermissions($userId: ID!) {
  userPermissions(userId: $userId) { roles }
}`,
	opSetUserRoles: `mutation SetUserRoles($userId: ID!, $roleNames: [String!]!) {
  setUserRoles(userId: $userId, roleNames: $roleNames)
}`,
	opIssue: `query Issue($id: ID!) {
  issue(id: $id) { ...IssueFields }
}` + issueFields,
	opIssues: `query Issues($filter: IssueFilter, $take: Int) {
  issues(filter: $filter, take: $take) { total issues { ...IssueFields } }
}` + issueFields,
	opApproveIssue: `mutation ApproveIssue($issueId: ID!, $approverId: ID!) {
  approveIssue(issueId: $issueId, approverId: $approverId) { ...IssueFields }
}` + issueFields,
	opMe: `query Me {
  me { id name email roles { name } }
}`,
}

// validateOperations parses every embedded document and checks that it
// declares exactly the operation it is registered under.
func validateOperations(ops map[string]string) error {
	for name, text := range ops {
		doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: text})
		if err != nil {
			return fmt.Errorf("remoteapi: operation %s: %w", name, err)
		}
		if len(doc.Operations) != 1 {
			return fmt.Errorf("remoteapi: operation %s: want 1 operation, got %d", name, len(doc.Operations))
		}
		if got := doc.Operations[0].Name; got != name {
			return fmt.Errorf("remoteapi: operation %s: declared as %q", name, got)
		}
	}
	return nil
}
