package server

import (
	"context"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/modules/demand/domain/issues"
	"github.com/jacksonlee411/people-console/modules/iam/domain/roles"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
)

// RemoteAPI is the subset of the remote GraphQL API the console calls.
// *remoteapi.Client satisfies it.
type RemoteAPI interface {
	Me(ctx context.Context) (remoteapi.Viewer, error)

	FieldDefinitions(ctx context.Context) ([]fieldmeta.FieldDefinition, error)
	UpsertFieldDefinition(ctx context.Context, def fieldmeta.FieldDefinition) (fieldmeta.FieldDefinition, error)
	DeleteFieldDefinition(ctx context.Context, key string) error
	VisibleFieldKeys(ctx context.Context, resource string, targetUserID string) ([]string, error)

	GetUser(ctx context.Context, id string) (remoteapi.User, error)
	GetUsers(ctx context.Context, take int) ([]remoteapi.User, error)
	DeleteUser(ctx context.Context, id string) (remoteapi.DeleteResult, error)

	GetRoles(ctx context.Context) ([]roles.Role, error)
	GetUserPermissions(ctx context.Context, userID string) ([]string, error)
	SetUserRoles(ctx context.Context, userID string, roleNames []string) error

	GetIssue(ctx context.Context, id string) (issues.Issue, error)
	GetIssues(ctx context.Context, filter remoteapi.IssueFilter, take int) ([]issues.Issue, error)
	ApproveIssue(ctx context.Context, issueID string, approverID string) (issues.Issue, error)
}

var _ RemoteAPI = (*remoteapi.Client)(nil)
