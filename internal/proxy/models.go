package proxy

import (
	"net/http"

	"claudebridge/internal/anthropicadapter"
	"claudebridge/internal/anthropicadapter/openaichat"
)

// modelAliases are the Claude model identifiers this bridge advertises.
// Clients pick from this list; the mapper substitutes the configured backend
// target per tier at request time. The upstream exposes its own catalog
// under different identifiers, so a static alias table keeps client model
// pickers working.
var modelAliases = []modelAlias{
	{ID: "claude-opus-4-1", DisplayName: "Claude Opus 4.1", CreatedAt: "2025-08-05T00:00:00Z"},
	{ID: "claude-opus-4-0", DisplayName: "Claude Opus 4", CreatedAt: "2025-05-22T00:00:00Z"},
	{ID: "claude-sonnet-4-0", DisplayName: "Claude Sonnet 4", CreatedAt: "2025-05-22T00:00:00Z"},
	{ID: "claude-3-7-sonnet-latest", DisplayName: "Claude Sonnet 3.7", CreatedAt: "2025-02-24T00:00:00Z"},
	{ID: "claude-3-5-haiku-latest", DisplayName: "Claude Haiku 3.5", CreatedAt: "2024-10-22T00:00:00Z"},
}

type modelAlias struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// modelEntry is one element of the Anthropic model list shape.
type modelEntry struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	// MappedModel is a bridge extension naming the backend identifier the
	// alias resolves to. Standard clients ignore it.
	MappedModel string `json:"mapped_model,omitempty"`
}

type modelList struct {
	Data    []modelEntry `json:"data"`
	HasMore bool         `json:"has_more"`
	FirstID string       `json:"first_id,omitempty"`
	LastID  string       `json:"last_id,omitempty"`
}

func toModelEntry(alias modelAlias, mapper *openaichat.ModelMapper) modelEntry {
	entry := modelEntry{
		Type:        "model",
		ID:          alias.ID,
		DisplayName: alias.DisplayName,
		CreatedAt:   alias.CreatedAt,
	}
	if mapped := mapper.Map(alias.ID); mapped != alias.ID {
		entry.MappedModel = mapped
	}
	return entry
}

// listModelsHandler serves the advertised model aliases.
func listModelsHandler(mapper *openaichat.ModelMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := modelList{
			Data:    make([]modelEntry, 0, len(modelAliases)),
			HasMore: false,
		}
		for _, alias := range modelAliases {
			list.Data = append(list.Data, toModelEntry(alias, mapper))
		}
		if len(list.Data) > 0 {
			list.FirstID = list.Data[0].ID
			list.LastID = list.Data[len(list.Data)-1].ID
		}
		writeJSON(r.Context(), w, list, http.StatusOK)
	}
}

// getModelHandler serves one advertised alias by exact identifier.
func getModelHandler(mapper *openaichat.ModelMapper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for _, alias := range modelAliases {
			if alias.ID == id {
				writeJSON(r.Context(), w, toModelEntry(alias, mapper), http.StatusOK)
				return
			}
		}
		writeJSONMessagesError(r.Context(), w, anthropicadapter.NewErrorResponse(
			"not_found_error",
			"model not found: "+id,
		))
	}
}
