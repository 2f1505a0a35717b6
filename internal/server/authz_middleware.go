package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/pkg/authz"
	"go.uber.org/zap"
)

func loadAuthorizer() (*authz.Authorizer, error) {
	modelPath := os.Getenv("AUTHZ_MODEL_PATH")
	if modelPath == "" {
		p, err := findConfigFile("config/access/model.conf")
		if err != nil {
			return nil, errors.New("server: authz model not found")
		}
		modelPath = p
	}

	policyPath := os.Getenv("AUTHZ_POLICY_PATH")
	if policyPath == "" {
		p, err := findConfigFile("config/access/policy.csv")
		if err != nil {
			return nil, errors.New("server: authz policy not found")
		}
		policyPath = p
	}

	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}

	return authz.NewAuthorizer(modelPath, policyPath, mode)
}

// findConfigFile walks up to eight parent directories looking for rel.
func findConfigFile(rel string) (string, error) {
	path := rel
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", os.ErrNotExist
}

type authorizer interface {
	CheckRoles(roles []string, req authz.Requirement) (authz.Decision, error)
}

func withAuthz(classifier *routing.Classifier, a authorizer, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := authzRequirementForRoute(r.Method, r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		rc := routing.RouteClassInternalAPI
		if classifier != nil {
			rc = classifier.Classify(r.URL.Path)
		}

		var roles []string
		if v, ok := currentViewer(r.Context()); ok {
			roles = v.Roles
		}

		d, err := a.CheckRoles(roles, req)
		if err != nil {
			logger.Error("authorize", zap.String("object", req.Object), zap.String("action", req.Action), zap.Error(err))
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if d.Denied() {
			routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		if !d.Allowed {
			logger.Warn("authz shadow deny",
				zap.Strings("roles", roles),
				zap.String("object", req.Object),
				zap.String("action", req.Action),
			)
		}
		next.ServeHTTP(w, r)
	})
}

type routeKey struct {
	method string
	path   string
}

// routeRequirements lists the guarded console routes. Routes missing here
// (health, me, dictionaries) only need an authenticated viewer.
var routeRequirements = map[routeKey]authz.Requirement{
	{http.MethodGet, "/console/api/field-definitions"}:         authz.Read(authz.ObjectFieldDefinitions),
	{http.MethodPost, "/console/api/field-definitions"}:        authz.Admin(authz.ObjectFieldDefinitions),
	{http.MethodPost, "/console/api/field-definitions:delete"}: authz.Admin(authz.ObjectFieldDefinitions),

	{http.MethodGet, "/console/api/personnel"}:         authz.Read(authz.ObjectPersonnel),
	{http.MethodGet, "/console/api/personnel/details"}: authz.Read(authz.ObjectPersonnel),
	{http.MethodGet, "/console/api/personnel:export"}:  authz.Read(authz.ObjectPersonnel),
	{http.MethodPost, "/console/api/personnel:delete"}: authz.Admin(authz.ObjectPersonnel),

	{http.MethodGet, "/console/api/permissions/users"}:     authz.Read(authz.ObjectPermissions),
	{http.MethodGet, "/console/api/permissions/roles"}:     authz.Read(authz.ObjectPermissions),
	{http.MethodGet, "/console/api/permissions/effective"}: authz.Read(authz.ObjectPermissions),
	{http.MethodPost, "/console/api/permissions:set"}:      authz.Admin(authz.ObjectPermissions),
	{http.MethodPost, "/console/api/permissions:remove"}:   authz.Admin(authz.ObjectPermissions),

	{http.MethodGet, "/console/api/demands"}:          authz.Read(authz.ObjectDemands),
	{http.MethodGet, "/console/api/demands/details"}:  authz.Read(authz.ObjectDemands),
	{http.MethodPost, "/console/api/demands:approve"}: authz.Admin(authz.ObjectDemands),

	{http.MethodGet, "/console/api/releases"}:  authz.Read(authz.ObjectReleases),
	{http.MethodPost, "/console/api/releases"}: authz.Admin(authz.ObjectReleases),
}

func authzRequirementForRoute(method string, path string) (authz.Requirement, bool) {
	req, ok := routeRequirements[routeKey{method: method, path: path}]
	return req, ok
}
