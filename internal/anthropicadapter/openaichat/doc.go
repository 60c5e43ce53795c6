// Package openaichat adapts Anthropic Messages requests to any
// OpenAI-compatible chat completion backend, enabling Anthropic SDK clients
// to work with such backends without code changes.
//
// The adapter handles:
//
//   - Message transformation: the Anthropic system prompt becomes the
//     backend's leading system turn. tool_use blocks become assistant
//     tool_calls entries; tool_result blocks become dedicated tool turns
//     placed directly after the assistant turn that introduced the call id.
//
//   - Tool calling: structured tool inputs serialize to the backend's
//     string argument blobs and parse back losslessly. Malformed argument
//     strings on the return path degrade to a recognizable error-input
//     shape instead of failing the whole response.
//
//   - Streaming: the backend's flat chunk sequence carries no block
//     structure. A small state machine reconstructs explicit content block
//     boundaries, assigning strictly increasing block indices keyed on
//     text/tool transitions, and always terminates the client stream even
//     when the backend fails mid-response.
//
//   - Transport: the upstream call owns connection pooling with a bounded
//     slot count, retry with exponential backoff before the first response
//     byte, and cancellation propagation from the client request context.
//
// # Adapters
//
// MessagesAdapter: Anthropic CreateMessage → OpenAI chat completions
package openaichat
