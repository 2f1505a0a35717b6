package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jacksonlee411/people-console/modules/demand/domain/ports"
	"github.com/jacksonlee411/people-console/modules/demand/domain/types"
)

type ReleasePlanMemoryStore struct {
	mu    sync.Mutex
	plans []types.ReleasePlan
	now   func() time.Time
}

func NewReleasePlanMemoryStore() ports.ReleasePlanStore {
	return &ReleasePlanMemoryStore{now: time.Now}
}

func (s *ReleasePlanMemoryStore) ListReleasePlans(context.Context) ([]types.ReleasePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]types.ReleasePlan{}, s.plans...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReleaseDate != out[j].ReleaseDate {
			return out[i].ReleaseDate < out[j].ReleaseDate
		}
		if out[i].App != out[j].App {
			return out[i].App < out[j].App
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

func (s *ReleasePlanMemoryStore) CreateReleasePlan(_ context.Context, plan types.ReleasePlan) (types.ReleasePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.plans {
		if p.App == plan.App && p.Version == plan.Version {
			return types.ReleasePlan{}, ports.ErrReleasePlanExists
		}
	}
	plan.CreatedAt = s.now().UTC()
	s.plans = append(s.plans, plan)
	return plan, nil
}
