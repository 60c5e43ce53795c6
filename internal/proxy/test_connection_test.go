package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestConnectionHandler_Success(t *testing.T) {
	backend := &mockBackendTransport{
		status: http.StatusOK,
		body: `{
			"id": "chatcmpl-check",
			"model": "small-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi"}, "finish_reason": "stop"}]
		}`,
	}
	server := httptest.NewServer(newTestProxy(t, backend))
	defer server.Close()

	resp, err := http.Get(server.URL + "/test-connection")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out testConnectionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "success", out.Status)
	// The small tier target is the cheapest configured model.
	assert.Equal(t, "small-model", out.ModelUsed)
	assert.Equal(t, "chatcmpl-check", out.ResponseID)
	assert.NotEmpty(t, out.Timestamp)
}

func TestTestConnectionHandler_BackendUnreachable(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{failing: true}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/test-connection")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var out testConnectionFailure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "failed", out.Status)
	assert.NotEmpty(t, out.Message)
	assert.NotEmpty(t, out.Suggestions)
}
