package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"claudebridge/internal/anthropicadapter"
	"claudebridge/internal/anthropicadapter/openaichat"
)

// CreateMessagesHandler handles Anthropic Messages API requests.
type CreateMessagesHandler struct {
	Adapter   *openaichat.MessagesAdapter
	Transport http.RoundTripper
}

// Compile-time check to ensure CreateMessagesHandler implements http.Handler
var _ http.Handler = (*CreateMessagesHandler)(nil)

// ServeHTTP implements http.Handler for streaming or buffered requests.
func (h *CreateMessagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req anthropicadapter.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			slog.WarnContext(ctx, "request exceeds size limit", "limit_bytes", maxBytesErr.Limit)
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

	if err := req.Validate(); err != nil {
		slog.WarnContext(ctx, "request failed validation", "error", err)
		writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
			"invalid_request_error",
			err.Error(),
		))
		return
	}

	if req.Stream {
		h.streamResponse(ctx, w, req)
	} else {
		h.writeResponse(ctx, w, req)
	}
}

// writeResponse handles buffered message requests.
func (h *CreateMessagesHandler) writeResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req anthropicadapter.CreateMessageRequest,
) {
	if ctx.Err() != nil {
		return
	}
	response, err := h.Adapter.ProcessRequest(ctx, req, h.Transport)
	if err != nil {
		slog.ErrorContext(ctx, "request failed", "error", err)

		var errResp *anthropicadapter.ErrorResponse
		if errors.As(err, &errResp) {
			writeJSONMessagesError(ctx, w, errResp)
			return
		}

		writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
			"api_error",
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	writeJSON(ctx, w, response, http.StatusOK)
}

// streamResponse streams message events using SSE. Each event carries an
// explicit event-type line, as Anthropic clients dispatch on it.
func (h *CreateMessagesHandler) streamResponse(
	ctx context.Context,
	w http.ResponseWriter,
	req anthropicadapter.CreateMessageRequest,
) {
	if ctx.Err() != nil {
		return
	}
	stream, err := h.Adapter.ProcessStreamingRequest(ctx, req, h.Transport)
	if err != nil {
		slog.ErrorContext(ctx, "streaming request failed", "error", err)

		var errResp *anthropicadapter.ErrorResponse
		if errors.As(err, &errResp) {
			writeJSONMessagesError(ctx, w, errResp)
			return
		}

		writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
			"api_error",
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeJSONMessagesError(ctx, w, anthropicadapter.NewErrorResponse(
			"api_error",
			http.StatusText(http.StatusInternalServerError),
		))
		return
	}

	for event, err := range stream {
		// Check for client disconnect before processing the event
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		if err != nil {
			slog.ErrorContext(ctx, "stream error", "error", err)

			var errResp *anthropicadapter.ErrorResponse
			if !errors.As(err, &errResp) {
				errResp = anthropicadapter.NewErrorResponse("api_error", err.Error())
			}
			// Anthropic SDKs recognize the error event and stop reading
			if writeErr := sse.WriteEvent("error"); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error event type", "error", writeErr)
				return
			}
			if writeErr := sse.WriteData(errResp); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error", "error", writeErr)
			}
			return
		}

		if writeErr := sse.WriteEvent(string(event.Type)); writeErr != nil {
			slog.ErrorContext(ctx, "failed to write event type", "error", writeErr)
			return
		}
		if writeErr := sse.WriteData(event); writeErr != nil {
			slog.ErrorContext(ctx, "failed to write event", "error", writeErr)
			return
		}
	}
}
