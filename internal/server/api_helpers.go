package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacksonlee411/people-console/internal/remoteapi"
	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/pkg/httperr"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return httperr.NewBadRequest("invalid json")
	}
	return nil
}

// queryList collects a repeated query parameter; comma-separated values are
// split as well. Blank entries are dropped.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// queryPage parses a 1-based page number; missing or invalid values mean 1.
func queryPage(r *http.Request) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func requireQuery(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", key+" is required")
		return "", false
	}
	return v, true
}

// writeLoadError answers a failed read with 502 and a stable code. The
// remote cause is logged, not returned.
func writeLoadError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, code string, err error) {
	if isUnauthenticated(err) {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	logger.Error(code, zap.String("path", r.URL.Path), zap.Error(err))
	routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadGateway, code, code)
}

// writeMutationError surfaces the failure text verbatim: local validation is
// 422, a remote business error is 422, transport failures are 502.
func writeMutationError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, code string, err error) {
	switch {
	case httperr.IsBadRequest(err):
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	case isUnauthenticated(err):
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnauthorized, "unauthorized", "unauthorized")
	default:
		if remoteErr, ok := errors.AsType[*remoteapi.RemoteError](err); ok && remoteErr != nil {
			logger.Warn(code, zap.String("operation", remoteErr.Operation), zap.String("message", remoteErr.Message))
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, code, remoteErr.Message)
			return
		}
		logger.Error(code, zap.String("path", r.URL.Path), zap.Error(err))
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadGateway, code, err.Error())
	}
}
