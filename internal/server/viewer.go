package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"go.uber.org/zap"
)

// Viewer is the signed-in user, resolved once per request.
type Viewer struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

type viewerKey struct{}

func withViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

func currentViewer(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(Viewer)
	return v, ok
}

// withViewerContext forwards the caller's credentials to me() and stores the
// result in the request context. Only internal API routes need a viewer.
func withViewerContext(classifier *routing.Classifier, remote RemoteAPI, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := routing.RouteClassUI
		if classifier != nil {
			rc = classifier.Classify(r.URL.Path)
		}
		if rc != routing.RouteClassInternalAPI {
			next.ServeHTTP(w, r)
			return
		}

		cred := remoteapi.CredentialsFromRequest(r)
		if cred.Empty() {
			routing.WriteError(w, r, rc, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}
		ctx := remoteapi.WithCredentials(r.Context(), cred)

		me, err := remote.Me(ctx)
		if err != nil {
			if isUnauthenticated(err) {
				routing.WriteError(w, r, rc, http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			logger.Error("load viewer", zap.String("path", r.URL.Path), zap.Error(err))
			routing.WriteError(w, r, rc, http.StatusBadGateway, "viewer_load_failed", "viewer_load_failed")
			return
		}

		v := Viewer{ID: me.ID, Name: me.Name, Email: me.Email, Roles: []string(me.Roles)}
		if v.Roles == nil {
			v.Roles = []string{}
		}
		next.ServeHTTP(w, r.WithContext(withViewer(ctx, v)))
	})
}

func isUnauthenticated(err error) bool {
	if errors.Is(err, remoteapi.ErrMissingCredentials) {
		return true
	}
	if httpErr, ok := errors.AsType[*remoteapi.HTTPError](err); ok && httpErr != nil {
		return httpErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

func handleMeAPI(w http.ResponseWriter, r *http.Request) {
	v, ok := currentViewer(r.Context())
	if !ok {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	routing.WriteJSON(w, http.StatusOK, v)
}
