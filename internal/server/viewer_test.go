package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithViewerContext_StoresViewer(t *testing.T) {
	f := newFakeRemote()
	f.viewer = remoteapi.Viewer{ID: "u7", Name: "Seven", Email: "s@example.com"}

	var got Viewer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := currentViewer(r.Context())
		if !ok {
			t.Fatal("viewer missing")
		}
		got = v
		w.WriteHeader(http.StatusNoContent)
	})
	h := withViewerContext(mustTestClassifier(t), f, zap.NewNop(), next)

	req := httptest.NewRequest(http.MethodGet, "/console/api/demands", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}
	if got.ID != "u7" || got.Roles == nil || len(got.Roles) != 0 {
		t.Fatalf("viewer=%+v", got)
	}
}

func TestWithViewerContext_SkipsOps(t *testing.T) {
	f := newFakeRemote()
	called := false
	h := withViewerContext(mustTestClassifier(t), f, zap.NewNop(), okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("status=%d next=%v", rec.Code, called)
	}
	if f.called("Me") != 0 {
		t.Fatal("me() called for ops route")
	}
}

func TestWithViewerContext_LogsRemoteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFakeRemote()
	f.errs["Me"] = errors.New("dial tcp: refused")
	called := false
	h := withViewerContext(mustTestClassifier(t), f, zap.New(core), okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/console/api/demands", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway || called {
		t.Fatalf("status=%d next=%v", rec.Code, called)
	}
	if logs.FilterMessage("load viewer").Len() != 1 {
		t.Fatalf("logs=%v", logs.All())
	}
}

func TestIsUnauthenticated(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{remoteapi.ErrMissingCredentials, true},
		{fmt.Errorf("wrap: %w", remoteapi.ErrMissingCredentials), true},
		{&remoteapi.HTTPError{StatusCode: http.StatusUnauthorized}, true},
		{fmt.Errorf("wrap: %w", &remoteapi.HTTPError{StatusCode: http.StatusUnauthorized}), true},
		{&remoteapi.HTTPError{StatusCode: http.StatusForbidden}, false},
		{&remoteapi.RemoteError{Message: "unauthorized"}, false},
		{errors.New("boom"), false},
	}
	for i, tt := range tests {
		if got := isUnauthenticated(tt.err); got != tt.want {
			t.Fatalf("case %d: got=%v", i, got)
		}
	}
}

func TestHandleMeAPI_WithoutViewer(t *testing.T) {
	rec := httptest.NewRecorder()
	handleMeAPI(rec, httptest.NewRequest(http.MethodGet, "/console/api/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}
