package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudebridge/internal/anthropicadapter/openaichat"
	"claudebridge/internal/anthropicadapter/types"
)

// mockBackendTransport returns pre-recorded backend responses without
// network calls.
type mockBackendTransport struct {
	status    int
	body      string
	streaming bool
	failing   bool
}

func (m *mockBackendTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.failing {
		return nil, errors.New("connection refused")
	}
	contentType := "application/json"
	if m.streaming {
		contentType = "text/event-stream"
	}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Header:     http.Header{"Content-Type": []string{contentType}},
		Request:    req,
	}, nil
}

type mockReadinessChecker struct {
	ready bool
}

func (m mockReadinessChecker) IsReady() bool {
	return m.ready
}

func newTestProxy(t *testing.T, transport http.RoundTripper) *Proxy {
	t.Helper()

	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	adapter := openaichat.NewMessagesAdapter(openaichat.Config{
		BaseURL:    "https://backend.example.com/v1",
		APIKey:     "test-key",
		MaxRetries: 0,
		Models:     openaichat.ModelTiers{Big: "big-model", Small: "small-model"},
	})

	p, err := New(adapter, mockReadinessChecker{ready: true}, WithTransport(transport))
	require.NoError(t, err)
	return p
}

const minimalRequest = `{
	"model": "claude-opus-4-1",
	"max_tokens": 256,
	"messages": [{"role": "user", "content": "hello"}]
}`

func TestMessagesHandler_Buffered(t *testing.T) {
	backend := &mockBackendTransport{
		status: http.StatusOK,
		body: `{
			"id": "chatcmpl-1",
			"model": "big-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 3, "total_tokens": 7}
		}`,
	}
	server := httptest.NewServer(newTestProxy(t, backend))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/messages", "application/json", strings.NewReader(minimalRequest))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out types.MessagesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "msg_chatcmpl-1", out.ID)
	assert.Equal(t, "claude-opus-4-1", out.Model)
	require.Len(t, out.Content, 1)
	assert.Equal(t, "hi there", out.Content[0].Text)
	assert.Equal(t, types.StopReasonEndTurn, out.StopReason)
	assert.Equal(t, types.Usage{InputTokens: 4, OutputTokens: 3}, out.Usage)
}

func TestMessagesHandler_Streaming(t *testing.T) {
	backend := &mockBackendTransport{
		status:    http.StatusOK,
		streaming: true,
		body: strings.Join([]string{
			`data: {"id":"chatcmpl-1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
			"",
			`data: {"id":"chatcmpl-1","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
			"",
			`data: {"id":"chatcmpl-1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
			"",
			`data: {"id":"chatcmpl-1","choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`,
			"",
			"data: [DONE]",
			"",
		}, "\n"),
	}
	server := httptest.NewServer(newTestProxy(t, backend))
	defer server.Close()

	streamingRequest := strings.Replace(minimalRequest, `"max_tokens": 256,`, `"max_tokens": 256, "stream": true,`, 1)
	resp, err := http.Post(server.URL+"/v1/messages", "application/json", strings.NewReader(streamingRequest))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	for _, eventType := range []string{
		"event: message_start",
		"event: ping",
		"event: content_block_start",
		"event: content_block_delta",
		"event: content_block_stop",
		"event: message_delta",
		"event: message_stop",
	} {
		assert.Contains(t, body, eventType)
	}
	assert.Contains(t, body, `"text":"Hel"`)
	assert.Contains(t, body, `"input_tokens":4`)
}

func TestMessagesHandler_ValidationFailure(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/messages", "application/json",
		strings.NewReader(`{"model": "claude-opus-4-1", "messages": []}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Type string `json:"type"`
		Err  struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "error", envelope.Type)
	assert.Equal(t, "invalid_request_error", envelope.Err.Type)
}

func TestMessagesHandler_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/messages", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessagesHandler_BackendErrorPassthrough(t *testing.T) {
	backend := &mockBackendTransport{
		status: http.StatusUnauthorized,
		body:   `{"error": {"message": "bad key", "type": "authentication_error"}}`,
	}
	server := httptest.NewServer(newTestProxy(t, backend))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/messages", "application/json", strings.NewReader(minimalRequest))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var envelope struct {
		Err struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "authentication_error", envelope.Err.Type)
	assert.Equal(t, "bad key", envelope.Err.Message)
}

func TestHealthEndpoints(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/healthz/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestSizeLimit(t *testing.T) {
	adapter := openaichat.NewMessagesAdapter(openaichat.Config{
		BaseURL: "https://backend.example.com/v1",
		APIKey:  "test-key",
	})
	p, err := New(adapter, mockReadinessChecker{ready: true},
		WithTransport(&mockBackendTransport{status: http.StatusOK}),
		WithMaxRequestBytes(16),
	)
	require.NoError(t, err)

	server := httptest.NewServer(p)
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/messages", "application/json", strings.NewReader(minimalRequest))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
