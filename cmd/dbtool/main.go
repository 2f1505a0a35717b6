package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jacksonlee411/people-console/migrations"
	"github.com/pressly/goose/v3"
	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		fatalf("usage: dbtool <migrate|release-plans-smoke> [args]")
	}

	switch os.Args[1] {
	case "migrate":
		migrate(os.Args[2:])
	case "release-plans-smoke":
		releasePlansSmoke(os.Args[2:])
	default:
		fatalf("unknown subcommand: %s", os.Args[1])
	}
}

func connFlags(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	url := fs.String("url", os.Getenv("DATABASE_URL"), "postgres connection string")
	return fs, url
}

// migrate applies the embedded console migrations: up (default), down or status.
func migrate(args []string) {
	fs, url := connFlags("migrate")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if *url == "" {
		fatalf("missing --url")
	}
	cmd := "up"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}

	db, err := sql.Open("pgx", *url)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Console)
	if err := goose.SetDialect("postgres"); err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd {
	case "up":
		err = goose.UpContext(ctx, db, migrations.ConsoleDir)
	case "down":
		err = goose.DownContext(ctx, db, migrations.ConsoleDir)
	case "status":
		err = goose.StatusContext(ctx, db, migrations.ConsoleDir)
	default:
		fatalf("unknown migrate command: %s (expected up|down|status)", cmd)
	}
	if err != nil {
		fatal(err)
	}
}

// releasePlansSmoke checks the release plan table inside a rolled-back
// transaction: a first insert succeeds and a second (app, version) conflicts.
func releasePlansSmoke(args []string) {
	fs, url := connFlags("release-plans-smoke")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if *url == "" {
		fatalf("missing --url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, *url)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	tx, err := conn.Begin(ctx)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	app := "smoke-" + uuid.NewString()[:8]
	insert := `INSERT INTO console.release_plans (id, app, version, release_date) VALUES ($1::uuid, $2, '1.0', '2026-01-01')`
	if _, err := tx.Exec(ctx, insert, uuid.NewString(), app); err != nil {
		fatal(err)
	}

	if _, err := tx.Exec(ctx, `SAVEPOINT sp_duplicate;`); err != nil {
		fatal(err)
	}
	_, err = tx.Exec(ctx, insert, uuid.NewString(), app)
	if _, rbErr := tx.Exec(ctx, `ROLLBACK TO SAVEPOINT sp_duplicate;`); rbErr != nil {
		fatal(rbErr)
	}
	if err == nil {
		fatalf("expected unique violation on duplicate (app, version)")
	}
	if code, ok := pgErrorCode(err); !ok || code != "23505" {
		fatalf("expected unique_violation, got %v", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM console.release_plans WHERE app = $1`, app).Scan(&count); err != nil {
		fatal(err)
	}
	if count != 1 {
		fatalf("expected count=1, got %d", count)
	}
	fmt.Println("[release-plans-smoke] OK")
}

func pgErrorCode(err error) (string, bool) {
	pgErr, ok := errors.AsType[*pgconn.PgError](err)
	if !ok || pgErr == nil {
		return "", false
	}
	return pgErr.Code, true
}

func fatal(err error) {
	if err == nil {
		os.Exit(1)
	}
	fatalf("%v", err)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
