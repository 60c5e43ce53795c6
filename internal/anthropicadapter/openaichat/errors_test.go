package openaichat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{
			name:     "transcode errors are client faults",
			err:      &TranscodeError{Kind: TranscodeErrUnsupportedMedia, Message: "bad media"},
			wantType: "invalid_request_error",
		},
		{
			name:     "pool exhaustion is overloaded",
			err:      &TransportError{Op: "acquire", Retryable: true, Err: errors.New("pool exhausted")},
			wantType: "overloaded_error",
		},
		{
			name:     "connection failures are api errors",
			err:      &TransportError{Op: "connect", Err: errors.New("refused")},
			wantType: "api_error",
		},
		{
			name:     "backend error types pass through the mapping",
			err:      &ProtocolError{StatusCode: 429, Type: "rate_limit_error", Message: "slow down"},
			wantType: "rate_limit_error",
		},
		{
			name:     "unknown errors fall back to api_error",
			err:      errors.New("boom"),
			wantType: "api_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := toErrorResponse(tt.err)
			require.NotNil(t, resp)
			assert.Equal(t, "error", resp.EnvelopeType)
			assert.Equal(t, tt.wantType, resp.Err.Type)
			assert.NotEmpty(t, resp.Err.Message)
		})
	}

	assert.Nil(t, toErrorResponse(nil))
}

func TestMapBackendErrorType(t *testing.T) {
	// Known backend taxonomy wins over the status class.
	assert.Equal(t, "rate_limit_error", mapBackendErrorType("insufficient_quota", 400))
	assert.Equal(t, "permission_error", mapBackendErrorType("permission_denied", 500))

	// Unknown taxonomy falls back on the status class.
	assert.Equal(t, "authentication_error", mapBackendErrorType("weird_type", 401))
	assert.Equal(t, "not_found_error", mapBackendErrorType("", 404))
	assert.Equal(t, "api_error", mapBackendErrorType("", 503))
	assert.Equal(t, "invalid_request_error", mapBackendErrorType("", 400))
	assert.Equal(t, "api_error", mapBackendErrorType("", 418))
}
