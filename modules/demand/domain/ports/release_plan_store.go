package ports

import (
	"context"
	"errors"

	"github.com/jacksonlee411/people-console/modules/demand/domain/types"
)

var ErrReleasePlanExists = errors.New("release_plan_exists")

type ReleasePlanStore interface {
	ListReleasePlans(ctx context.Context) ([]types.ReleasePlan, error)
	CreateReleasePlan(ctx context.Context, plan types.ReleasePlan) (types.ReleasePlan, error)
}
