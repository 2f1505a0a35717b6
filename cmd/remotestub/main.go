// Command remotestub serves an in-memory stand-in of the remote GraphQL API
// for local development. The bearer token (or session cookie) is the user id:
// dev-admin, dev-hr or dev-member.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func newStubMux(s *stub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/graphql", s.handleGraphQL)
	return mux
}

func main() {
	addr := getenvDefault("REMOTE_STUB_ADDR", "127.0.0.1:4000")

	s := &stub{store: newSeededStore(time.Now().UTC()), now: func() time.Time { return time.Now().UTC() }}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newStubMux(s),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()
	log.Printf("remotestub: listening on %s", addr)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("remotestub: server error: %v", err)
		}
	case <-ctx.Done():
		_ = srv.Shutdown(context.Background())
	}
}

func listenAndServe(srv *http.Server) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func getenvDefault(k string, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
