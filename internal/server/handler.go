package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/demand/domain/ports"
	demandpersistence "github.com/jacksonlee411/people-console/modules/demand/infrastructure/persistence"
	demandservices "github.com/jacksonlee411/people-console/modules/demand/services"
	"github.com/jacksonlee411/people-console/modules/personnel/infrastructure/fieldcache"
	dictpkg "github.com/jacksonlee411/people-console/pkg/dict"
	"go.uber.org/zap"
)

// HandlerOptions overrides the environment-derived dependencies. Zero values
// are filled from REMOTE_API_URL, FIELD_CACHE_REDIS_ADDR, DATABASE_URL/DB_*
// and RELEASE_PROJECT_ID.
type HandlerOptions struct {
	Remote           RemoteAPI
	Authorizer       authorizer
	FieldCache       *fieldcache.Cache
	ReleasePlans     ports.ReleasePlanStore
	ReleaseProjectID int64
	Logger           *zap.Logger
}

// consoleDeps is what every console API handler needs.
type consoleDeps struct {
	remote           RemoteAPI
	fieldCache       *fieldcache.Cache
	plans            demandservices.ReleasePlanService
	approvals        demandservices.ApprovalService
	issueExprs       *demandservices.IssueExprCache
	releaseProjectID int64
	logger           *zap.Logger
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	allowlistPath := os.Getenv("ALLOWLIST_PATH")
	if allowlistPath == "" {
		p, err := findConfigFile("config/routing/allowlist.yaml")
		if err != nil {
			return nil, errors.New("server: allowlist not found")
		}
		allowlistPath = p
	}
	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}
	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	remote := opts.Remote
	if remote == nil {
		baseURL := strings.TrimSpace(os.Getenv("REMOTE_API_URL"))
		if baseURL == "" {
			return nil, errors.New("server: missing REMOTE_API_URL (set HandlerOptions.Remote or the env var)")
		}
		c, err := remoteapi.New(baseURL)
		if err != nil {
			return nil, err
		}
		remote = c
	}

	cache := opts.FieldCache
	if cache == nil {
		if addr := strings.TrimSpace(os.Getenv("FIELD_CACHE_REDIS_ADDR")); addr != "" {
			cache = fieldcache.New(fieldcache.NewRedisClient(addr), logger)
		}
	}

	planStore := opts.ReleasePlans
	if planStore == nil {
		if dbConfigured() {
			pool, err := pgxpool.New(context.Background(), dbDSNFromEnv())
			if err != nil {
				return nil, err
			}
			planStore = demandpersistence.NewReleasePlanPGStore(pool)
		} else {
			planStore = demandpersistence.NewReleasePlanMemoryStore()
		}
	}

	projectID := opts.ReleaseProjectID
	if projectID == 0 {
		projectID, err = releaseProjectIDFromEnv()
		if err != nil {
			return nil, err
		}
	}

	az := opts.Authorizer
	if az == nil {
		loaded, err := loadAuthorizer()
		if err != nil {
			return nil, err
		}
		az = loaded
	}

	if err := dictpkg.RegisterResolver(dictpkg.NewStaticResolver(dictpkg.ConsoleDictionaries())); err != nil {
		return nil, err
	}

	deps := &consoleDeps{
		remote:           remote,
		fieldCache:       cache,
		plans:            demandservices.NewReleasePlanService(planStore),
		approvals:        demandservices.NewApprovalService(remote),
		issueExprs:       &demandservices.IssueExprCache{},
		releaseProjectID: projectID,
		logger:           logger,
	}

	router := routing.NewRouter(classifier, logger)
	api := func(method, path string, h func(http.ResponseWriter, *http.Request, *consoleDeps)) {
		router.Handle(routing.RouteClassInternalAPI, method, path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h(w, r, deps)
		}))
	}

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleHealth(w, r, cache)
	}))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/console/api/me", http.HandlerFunc(handleMeAPI))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/console/api/dicts/options", http.HandlerFunc(handleDictOptionsAPI))

	api(http.MethodGet, "/console/api/field-definitions", handleFieldDefinitionsAPI)
	api(http.MethodPost, "/console/api/field-definitions", handleFieldDefinitionsAPI)
	api(http.MethodPost, "/console/api/field-definitions:delete", handleFieldDefinitionsDeleteAPI)

	api(http.MethodGet, "/console/api/personnel", handlePersonnelAPI)
	api(http.MethodGet, "/console/api/personnel/details", handlePersonnelDetailsAPI)
	api(http.MethodGet, "/console/api/personnel:export", handlePersonnelExportAPI)
	api(http.MethodPost, "/console/api/personnel:delete", handlePersonnelDeleteAPI)

	api(http.MethodGet, "/console/api/permissions/users", handlePermissionUsersAPI)
	api(http.MethodGet, "/console/api/permissions/roles", handlePermissionRolesAPI)
	api(http.MethodGet, "/console/api/permissions/effective", handlePermissionEffectiveAPI)
	api(http.MethodPost, "/console/api/permissions:set", handlePermissionSetAPI)
	api(http.MethodPost, "/console/api/permissions:remove", handlePermissionRemoveAPI)

	api(http.MethodGet, "/console/api/demands", handleDemandsAPI)
	api(http.MethodGet, "/console/api/demands/details", handleDemandDetailsAPI)
	api(http.MethodPost, "/console/api/demands:approve", handleDemandApproveAPI)

	api(http.MethodGet, "/console/api/releases", handleReleasesAPI)
	api(http.MethodPost, "/console/api/releases", handleReleasesAPI)

	if err := router.CheckCoverage(a.Entrypoints["server"]); err != nil {
		return nil, err
	}

	guarded := withViewerContext(classifier, remote, logger, withAuthz(classifier, az, logger, router))
	return withRequestLog(logger, guarded), nil
}

func handleHealth(w http.ResponseWriter, r *http.Request, cache *fieldcache.Cache) {
	body := map[string]string{"status": "ok", "field_cache": "disabled"}
	if cache != nil {
		body["field_cache"] = "ok"
		if err := cache.Ping(r.Context()); err != nil {
			body["field_cache"] = "unavailable"
		}
	}
	routing.WriteJSON(w, http.StatusOK, body)
}
