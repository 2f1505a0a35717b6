package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type beginnerFunc func(ctx context.Context) (pgx.Tx, error)

func (f beginnerFunc) Begin(ctx context.Context) (pgx.Tx, error) { return f(ctx) }

type stubTx struct {
	queryErr  error
	commitErr error
	rows      pgx.Rows
	row       pgx.Row

	querySQL  string
	queryArgs []any
	committed bool
	rolled    bool
}

func (t *stubTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}
func (t *stubTx) Rollback(context.Context) error { t.rolled = true; return nil }
func (t *stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *stubTx) Conn() *pgx.Conn { return nil }
func (t *stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *stubTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.querySQL = sql
	t.queryArgs = args
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	if t.rows != nil {
		return t.rows, nil
	}
	return &fixedRows{}, nil
}

func (t *stubTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	t.querySQL = sql
	t.queryArgs = args
	if t.row != nil {
		return t.row
	}
	return stubRow{err: errors.New("unexpected QueryRow")}
}

type fixedRows struct {
	rows    [][]any
	idx     int
	scanErr error
	err     error
}

func (r *fixedRows) Close()                                       {}
func (r *fixedRows) Err() error                                   { return r.err }
func (r *fixedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fixedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fixedRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *fixedRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	return stubRow{vals: r.rows[r.idx-1]}.Scan(dest...)
}
func (r *fixedRows) Values() ([]any, error) { return nil, nil }
func (r *fixedRows) RawValues() [][]byte    { return nil }
func (r *fixedRows) Conn() *pgx.Conn        { return nil }

type stubRow struct {
	vals []any
	err  error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		if i >= len(r.vals) {
			return errors.New("scan: not enough values")
		}
		switch d := dest[i].(type) {
		case *string:
			*d = r.vals[i].(string)
		case *time.Time:
			*d = r.vals[i].(time.Time)
		default:
			return errors.New("scan: unsupported destination")
		}
	}
	return nil
}
