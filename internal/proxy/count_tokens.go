package proxy

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"claudebridge/internal/anthropicadapter"
	"claudebridge/internal/anthropicadapter/types"
)

// countTokensResponse is the body of a count_tokens result.
type countTokensResponse struct {
	InputTokens int64 `json:"input_tokens"`
}

// countTokensHandler estimates the input token count of a Messages request.
// OpenAI-compatible backends expose no counting endpoint, so the estimate is
// a character heuristic: total content characters divided by four, never
// below one.
func countTokensHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req types.MessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
					"request_too_large",
					http.StatusText(http.StatusRequestEntityTooLarge),
				))
				return
			}
			slog.ErrorContext(ctx, "failed to decode request", "error", err)
			writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
				"invalid_request_error",
				"request body is not valid JSON: "+err.Error(),
			))
			return
		}

		writeJSON(ctx, w, countTokensResponse{InputTokens: estimateTokens(&req)}, http.StatusOK)
	}
}

// estimateTokens sums the request's content characters and applies the
// four-characters-per-token heuristic.
func estimateTokens(req *types.MessagesRequest) int64 {
	var chars int64

	chars += int64(len(req.System.Text()))

	for _, msg := range req.Messages {
		for _, block := range msg.Content {
			switch block.Type {
			case types.BlockTypeText:
				chars += int64(len(block.Text))
			case types.BlockTypeToolUse:
				chars += int64(len(block.Name) + len(block.Input))
			case types.BlockTypeToolResult:
				if block.Content != nil {
					chars += int64(len(block.Content.AsText()))
				}
			}
		}
	}

	for _, tool := range req.Tools {
		chars += int64(len(tool.Name) + len(tool.Description))
		if schema, err := json.Marshal(tool.InputSchema); err == nil {
			chars += int64(len(schema))
		}
	}

	tokens := chars / 4
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
