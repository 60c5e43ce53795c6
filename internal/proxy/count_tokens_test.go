package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudebridge/internal/anthropicadapter/types"
)

func TestCountTokensHandler(t *testing.T) {
	server := httptest.NewServer(newTestProxy(t, &mockBackendTransport{status: http.StatusOK}))
	defer server.Close()

	body := `{
		"model": "claude-opus-4-1",
		"system": "be brief",
		"messages": [{"role": "user", "content": "what is the capital of France?"}]
	}`

	resp, err := http.Post(server.URL+"/v1/messages/count_tokens", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out countTokensResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	// "be brief" (8) + question (30) = 38 chars, 38/4 = 9
	assert.Equal(t, int64(9), out.InputTokens)
}

func TestEstimateTokens(t *testing.T) {
	t.Run("floors at one token", func(t *testing.T) {
		req := &types.MessagesRequest{
			Messages: []types.Message{{
				Role:    types.RoleUser,
				Content: []types.ContentBlock{{Type: types.BlockTypeText, Text: "hi"}},
			}},
		}
		assert.Equal(t, int64(1), estimateTokens(req))
	})

	t.Run("counts tool definitions and tool blocks", func(t *testing.T) {
		req := &types.MessagesRequest{
			Messages: []types.Message{
				{
					Role: types.RoleAssistant,
					Content: []types.ContentBlock{{
						Type:  types.BlockTypeToolUse,
						Name:  "get_weather",
						Input: json.RawMessage(`{"city":"Berlin"}`),
					}},
				},
				{
					Role: types.RoleUser,
					Content: []types.ContentBlock{{
						Type:      types.BlockTypeToolResult,
						ToolUseID: "toolu_01",
						Content:   types.NewToolResultText("cloudy"),
					}},
				},
			},
			Tools: []types.Tool{{
				Name:        "get_weather",
				Description: "Look up current weather",
				InputSchema: map[string]any{"type": "object"},
			}},
		}

		withTools := estimateTokens(req)
		req.Tools = nil
		withoutTools := estimateTokens(req)
		assert.Greater(t, withTools, withoutTools)
	})
}
