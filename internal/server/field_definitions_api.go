package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jacksonlee411/people-console/internal/routing"
	"github.com/jacksonlee411/people-console/modules/personnel/domain/fieldmeta"
	"go.uber.org/zap"
)

type fieldDefinitionsResponse struct {
	Categories []fieldmeta.CategoryGroup   `json:"categories"`
	Items      []fieldmeta.FieldDefinition `json:"items"`
}

type fieldDefinitionUpsertPayload struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	Classification string `json:"classification"`
	SelfEditable   *bool  `json:"selfEditable"`
}

type fieldDefinitionDeletePayload struct {
	Key string `json:"key"`
}

func (d *consoleDeps) loadFieldDefinitions(ctx context.Context) ([]fieldmeta.FieldDefinition, error) {
	return d.fieldCache.Load(ctx, d.remote)
}

func (d *consoleDeps) invalidateFieldDefinitions(ctx context.Context) {
	if err := d.fieldCache.Invalidate(ctx); err != nil {
		d.logger.Warn("field definition cache invalidate", zap.Error(err))
	}
}

func handleFieldDefinitionsAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	switch r.Method {
	case http.MethodGet:
		defs, err := deps.loadFieldDefinitions(r.Context())
		if err != nil {
			writeLoadError(w, r, deps.logger, "field_definitions_load_failed", err)
			return
		}
		if defs == nil {
			defs = []fieldmeta.FieldDefinition{}
		}
		routing.WriteJSON(w, http.StatusOK, fieldDefinitionsResponse{
			Categories: fieldmeta.GroupByCategory(defs),
			Items:      defs,
		})
	case http.MethodPost:
		var req fieldDefinitionUpsertPayload
		if err := decodeJSONBody(r, &req); err != nil {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
			return
		}
		if strings.TrimSpace(req.Key) == "" || strings.TrimSpace(req.Label) == "" {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "key and label required")
			return
		}
		def := fieldmeta.FieldDefinition{
			Key:            req.Key,
			Label:          req.Label,
			Classification: fieldmeta.Classification(req.Classification),
		}
		if req.SelfEditable != nil {
			def.SelfEditable = *req.SelfEditable
		}
		def, err := fieldmeta.NormalizeUpsert(def)
		if err != nil {
			routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", err.Error())
			return
		}

		saved, err := deps.remote.UpsertFieldDefinition(r.Context(), def)
		if err != nil {
			writeMutationError(w, r, deps.logger, "field_definition_upsert_failed", err)
			return
		}
		deps.invalidateFieldDefinitions(r.Context())
		routing.WriteJSON(w, http.StatusOK, saved)
	default:
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleFieldDefinitionsDeleteAPI(w http.ResponseWriter, r *http.Request, deps *consoleDeps) {
	if r.Method != http.MethodPost {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req fieldDefinitionDeletePayload
	if err := decodeJSONBody(r, &req); err != nil {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		routing.WriteError(w, r, routing.RouteClassInternalAPI, http.StatusUnprocessableEntity, "invalid_form", "key required")
		return
	}
	if err := deps.remote.DeleteFieldDefinition(r.Context(), key); err != nil {
		writeMutationError(w, r, deps.logger, "field_definition_delete_failed", err)
		return
	}
	deps.invalidateFieldDefinitions(r.Context())
	routing.WriteJSON(w, http.StatusOK, map[string]any{"key": key, "deleted": true})
}
