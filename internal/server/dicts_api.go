package server

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/pkg/dict"
)

var dictCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

const maxDictOptions = 200

type dictOptionsResponse struct {
	DictCode string        `json:"dict_code"`
	Options  []dict.Option `json:"options"`
}

// handleDictOptionsAPI lists the options of one code→label dictionary.
func handleDictOptionsAPI(w http.ResponseWriter, r *http.Request) {
	code, ok := requireQuery(w, r, "dict_code")
	if !ok {
		return
	}
	if !dictCodePattern.MatchString(code) {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", "invalid dict_code")
		return
	}
	limit := maxDictOptions
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_request", "invalid limit")
			return
		}
		limit = min(n, maxDictOptions)
	}

	opts, err := dict.ListOptions(r.Context(), code, r.URL.Query().Get("keyword"), limit)
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusInternalServerError, "dict_unavailable", "dict_unavailable")
		return
	}
	if opts == nil {
		opts = []dict.Option{}
	}
	routing.WriteJSON(w, http.StatusOK, dictOptionsResponse{DictCode: code, Options: opts})
}
