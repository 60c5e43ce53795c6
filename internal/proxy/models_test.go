package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudebridge/internal/anthropicadapter/openaichat"
)

func TestListModelsHandler(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/models")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list modelList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.NotEmpty(t, list.Data)
	assert.False(t, list.HasMore)
	assert.Equal(t, list.Data[0].ID, list.FirstID)

	for _, entry := range list.Data {
		assert.Equal(t, "model", entry.Type)
		assert.NotEmpty(t, entry.ID)
		assert.NotEmpty(t, entry.DisplayName)
	}
}

func TestGetModelHandler(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/models/claude-3-5-haiku-latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entry modelEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
	assert.Equal(t, "claude-3-5-haiku-latest", entry.ID)
	assert.Equal(t, "small-model", entry.MappedModel)

	resp, err = http.Get(server.URL + "/v1/models/no-such-model")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModelsEndpointDisabled(t *testing.T) {
	adapter := openaichat.NewMessagesAdapter(openaichat.Config{
		BaseURL: "https://backend.example.com/v1",
		APIKey:  "test-key",
	})
	p, err := New(adapter, mockReadinessChecker{ready: true},
		WithTransport(&mockBackendTransport{status: http.StatusOK}),
		WithModelsEndpoint(false),
	)
	require.NoError(t, err)

	server := httptest.NewServer(p)
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/models")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
