package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacksonlee411/people-console/internal/logging"
	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/server"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const serviceName = "people-console"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	defaultAddr := os.Getenv("HTTP_ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8080"
	}

	var (
		addr             string
		remoteURL        string
		remoteTimeout    time.Duration
		releaseProjectID int64
	)
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", defaultAddr, "listen address")
	flagSet.StringVar(&remoteURL, "remote-url", os.Getenv("REMOTE_API_URL"), "base URL of the remote GraphQL API")
	flagSet.DurationVar(&remoteTimeout, "remote-timeout", 10*time.Second, "timeout of one remote API call")
	flagSet.Int64Var(&releaseProjectID, "release-project-id", 0, "tracker project that carries releases (default RELEASE_PROJECT_ID or 1206)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	logger, err := logging.FromEnv(serviceName)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	remote, err := remoteapi.NewWithTimeout(remoteURL, remoteTimeout)
	if err != nil {
		return err
	}

	handler, err := server.NewHandlerWithOptions(server.HandlerOptions{
		Remote:           remote,
		ReleaseProjectID: releaseProjectID,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
