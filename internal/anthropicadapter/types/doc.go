// Package types provides Anthropic Messages API types for server-side
// request/response handling.
//
// The types are hand-written rather than taken from the anthropic-sdk-go
// SDK:
//
//  1. SERVER-SIDE vs CLIENT-SIDE: the SDK is designed for making outbound
//     API calls TO Anthropic. This bridge receives inbound requests FROM
//     Anthropic-speaking clients and translates them to an OpenAI-compatible
//     backend. The SDK's param/union wrappers are built for request
//     construction, not for decoding untrusted request bodies.
//
//  2. FIELD PATTERNS: the SDK uses param.Opt[T] wrappers for optional
//     fields. Plain Go pointers (*string, *int64) work naturally with
//     json.NewDecoder and with validator struct tags.
//
//  3. TAGGED VARIANTS: content blocks, the system prompt, and tool-result
//     payloads are unions on the wire. Custom UnmarshalJSON methods decode
//     them into one explicit tagged shape each, so the conversion core never
//     touches raw JSON maps.
package types
