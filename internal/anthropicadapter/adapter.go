package anthropicadapter

import (
	"context"
	"iter"
	"net/http"

	"claudebridge/internal/anthropicadapter/types"
)

// Adapter defines the contract for transforming client requests to backend
// API calls.
//
// Type parameters allow the interface to express transformation contracts for
// different request/response shapes while maintaining compile-time type
// safety.
//
// Type parameters:
//   - TRequest:  Client-specific request structure
//   - TResponse: Client-specific response structure
//   - TEvent:    Client-specific streaming event protocol
type Adapter[TRequest, TResponse, TEvent any] interface {
	// ProcessRequest transforms the client request, calls the backend API, and
	// returns the transformed response. Implementations should remain stateless.
	ProcessRequest(ctx context.Context, clientReq TRequest, transport http.RoundTripper) (*TResponse, error)

	// ProcessStreamingRequest transforms the client request, calls the backend
	// streaming API, and returns an iterator of transformed events.
	// Implementations should remain stateless.
	ProcessStreamingRequest(ctx context.Context, clientReq TRequest, transport http.RoundTripper) (iter.Seq2[*TEvent, error], error)
}

// Type aliases for the Anthropic Messages operation. CreateMessageAdapter is
// the concrete adapter interface for this operation.
type (
	CreateMessageRequest  = types.MessagesRequest
	CreateMessageResponse = types.MessagesResponse
	CreateMessageEvent    = types.StreamEvent

	CreateMessageAdapter = Adapter[
		CreateMessageRequest,
		CreateMessageResponse,
		CreateMessageEvent,
	]
)
