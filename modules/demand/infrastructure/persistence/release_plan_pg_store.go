package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jacksonlee411/people-console/modules/demand/domain/ports"
	"github.com/jacksonlee411/people-console/modules/demand/domain/types"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ReleasePlanPGStore struct {
	pool pgBeginner
}

func NewReleasePlanPGStore(pool pgBeginner) ports.ReleasePlanStore {
	return &ReleasePlanPGStore{pool: pool}
}

func (s *ReleasePlanPGStore) ListReleasePlans(ctx context.Context) ([]types.ReleasePlan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, `
SELECT
  id::text,
  app,
  version,
  release_date::text,
  COALESCE(created_by, ''),
  created_at
FROM console.release_plans
ORDER BY release_date ASC, app ASC, version ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.ReleasePlan{}
	for rows.Next() {
		var p types.ReleasePlan
		if err := rows.Scan(&p.ID, &p.App, &p.Version, &p.ReleaseDate, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ReleasePlanPGStore) CreateReleasePlan(ctx context.Context, plan types.ReleasePlan) (types.ReleasePlan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.ReleasePlan{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := tx.QueryRow(ctx, `
INSERT INTO console.release_plans (id, app, version, release_date, created_by)
VALUES ($1::uuid, $2, $3, $4::date, $5)
ON CONFLICT (app, version) DO NOTHING
RETURNING created_at
`, plan.ID, plan.App, plan.Version, plan.ReleaseDate, plan.CreatedBy).Scan(&plan.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ReleasePlan{}, ports.ErrReleasePlanExists
		}
		return types.ReleasePlan{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.ReleasePlan{}, err
	}
	return plan, nil
}
