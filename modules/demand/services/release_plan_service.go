package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacksonlee411/people-console/modules/demand/domain/ports"
	"github.com/jacksonlee411/people-console/modules/demand/domain/types"
	"github.com/jacksonlee411/people-console/pkg/httperr"
)

var newPlanID = func() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type CreateReleasePlanRequest struct {
	App         string
	Version     string
	ReleaseDate string
	CreatedBy   string
}

type ReleasePlanService struct {
	store ports.ReleasePlanStore
}

func NewReleasePlanService(store ports.ReleasePlanStore) ReleasePlanService {
	return ReleasePlanService{store: store}
}

func (s ReleasePlanService) List(ctx context.Context) ([]types.ReleasePlan, error) {
	return s.store.ListReleasePlans(ctx)
}

func (s ReleasePlanService) Create(ctx context.Context, req CreateReleasePlanRequest) (types.ReleasePlan, error) {
	app := strings.TrimSpace(req.App)
	version := strings.TrimSpace(req.Version)
	date := strings.TrimSpace(req.ReleaseDate)
	if app == "" || version == "" || date == "" {
		return types.ReleasePlan{}, httperr.NewBadRequest("请填写完整信息")
	}
	if _, err := time.Parse(types.ReleaseDateLayout, date); err != nil {
		return types.ReleasePlan{}, httperr.NewBadRequest("release_date must be YYYY-MM-DD")
	}

	id, err := newPlanID()
	if err != nil {
		return types.ReleasePlan{}, err
	}
	plan, err := s.store.CreateReleasePlan(ctx, types.ReleasePlan{
		ID:          id,
		App:         app,
		Version:     version,
		ReleaseDate: date,
		CreatedBy:   strings.TrimSpace(req.CreatedBy),
	})
	if errors.Is(err, ports.ErrReleasePlanExists) {
		return types.ReleasePlan{}, httperr.NewConflict(fmt.Sprintf("release plan %s %s already exists", app, version), err)
	}
	return plan, err
}

// PlansByVersion indexes plans by version name for the kanban columns.
func PlansByVersion(plans []types.ReleasePlan) map[string][]types.ReleasePlan {
	out := make(map[string][]types.ReleasePlan)
	for _, p := range plans {
		out[p.Version] = append(out[p.Version], p)
	}
	return out
}
