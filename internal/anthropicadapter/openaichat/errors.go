package openaichat

import (
	"errors"
	"fmt"

	"claudebridge/internal/anthropicadapter"
)

// TranscodeErrorKind distinguishes the ways a request can fail conversion.
type TranscodeErrorKind string

const (
	TranscodeErrInvalidSchema      TranscodeErrorKind = "invalid_schema"
	TranscodeErrUnknownToolChoice  TranscodeErrorKind = "unknown_tool_choice"
	TranscodeErrMissingToolChoice  TranscodeErrorKind = "missing_tool_choice"
	TranscodeErrUnsupportedContent TranscodeErrorKind = "unsupported_content"
	TranscodeErrUnsupportedMedia   TranscodeErrorKind = "unsupported_media"
)

// TranscodeError reports a request that cannot be represented in the
// backend schema. It is always local and synchronous, never retried, and no
// partial backend request escapes alongside it.
type TranscodeError struct {
	Kind    TranscodeErrorKind
	Message string
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %s", e.Kind, e.Message)
}

// TransportError reports a failure reaching or reading the backend:
// connection errors, timeouts, and 5xx statuses without a usable error
// body. Retryable marks the failures the invoker may retry before any
// response bytes were received.
type TransportError struct {
	Op        string // "connect", "read", "decode", "acquire"
	Retryable bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError carries a well-formed error body returned by the backend.
// It is surfaced with the backend's status and message, not masked.
type ProtocolError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("upstream status %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// StreamError reports a malformed mid-stream chunk. The stream transcoder
// recovers locally by terminating the client stream; a StreamError never
// propagates as a hard failure to the transport layer.
type StreamError struct {
	Message string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream integrity: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("stream integrity: %s", e.Message)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// toErrorResponse converts any error into the Anthropic error envelope.
// The surrounding HTTP layer maps the envelope's error type to a status
// code; non-adapter errors (nil transports, context failures) are wrapped
// as generic api_error.
func toErrorResponse(err error) *anthropicadapter.ErrorResponse {
	if err == nil {
		return nil
	}

	var errResp *anthropicadapter.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp
	}

	var transcodeErr *TranscodeError
	if errors.As(err, &transcodeErr) {
		return anthropicadapter.NewErrorResponse("invalid_request_error", transcodeErr.Message)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Op == "acquire" {
			return anthropicadapter.NewErrorResponse("overloaded_error", transportErr.Error())
		}
		return anthropicadapter.NewErrorResponse("api_error", transportErr.Error())
	}

	var protocolErr *ProtocolError
	if errors.As(err, &protocolErr) {
		return anthropicadapter.NewErrorResponse(
			mapBackendErrorType(protocolErr.Type, protocolErr.StatusCode),
			protocolErr.Message,
		)
	}

	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return anthropicadapter.NewErrorResponse("api_error", streamErr.Error())
	}

	return anthropicadapter.NewErrorResponse("api_error", err.Error())
}

// mapBackendErrorType translates the backend error taxonomy to Anthropic
// error types. Unknown types fall back on the HTTP status class.
func mapBackendErrorType(backendType string, statusCode int) string {
	switch backendType {
	case "invalid_request_error":
		return "invalid_request_error"
	case "authentication_error":
		return "authentication_error"
	case "permission_denied", "permission_error":
		return "permission_error"
	case "not_found_error":
		return "not_found_error"
	case "rate_limit_error", "insufficient_quota":
		return "rate_limit_error"
	case "server_error", "api_error":
		return "api_error"
	}

	switch {
	case statusCode == 400:
		return "invalid_request_error"
	case statusCode == 401:
		return "authentication_error"
	case statusCode == 403:
		return "permission_error"
	case statusCode == 404:
		return "not_found_error"
	case statusCode == 429:
		return "rate_limit_error"
	case statusCode >= 500:
		return "api_error"
	default:
		return "api_error"
	}
}
