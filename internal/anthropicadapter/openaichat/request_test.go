package openaichat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claudebridge/internal/anthropicadapter/types"
)

func testConfig() Config {
	return Config{
		BaseURL: "https://backend.example.com/v1",
		APIKey:  "test-key",
		Models:  ModelTiers{Big: "big-model", Small: "small-model"},
	}.withDefaults()
}

func userText(text string) types.Message {
	return types.Message{
		Role:    types.RoleUser,
		Content: []types.ContentBlock{{Type: types.BlockTypeText, Text: text}},
	}
}

func TestFromMessagesRequest_SystemPrompt(t *testing.T) {
	cfg := testConfig()
	req := &types.MessagesRequest{
		Model: "claude-opus-4-1",
		System: types.SystemPrompt{Segments: []types.SystemSegment{
			{Type: "text", Text: "You are terse."},
			{Type: "text", Text: "Answer in English."},
		}},
		Messages: []types.Message{userText("hello")},
	}

	backendReq, err := fromMessagesRequest(req, NewModelMapper(cfg.Models), cfg)
	require.NoError(t, err)

	require.Len(t, backendReq.Messages, 2)
	assert.Equal(t, "system", backendReq.Messages[0].Role)
	assert.Equal(t, "You are terse.\n\nAnswer in English.", backendReq.Messages[0].Content)
	assert.Equal(t, "big-model", backendReq.Model)
}

func TestFromMessagesRequest_MaxTokensDefault(t *testing.T) {
	cfg := testConfig()
	req := &types.MessagesRequest{
		Model:    "claude-opus-4-1",
		Messages: []types.Message{userText("hello")},
	}

	backendReq, err := fromMessagesRequest(req, NewModelMapper(cfg.Models), cfg)
	require.NoError(t, err)
	require.NotNil(t, backendReq.MaxTokens)
	assert.Equal(t, cfg.DefaultMaxTokens, *backendReq.MaxTokens)

	maxTokens := int64(512)
	req.MaxTokens = &maxTokens
	backendReq, err = fromMessagesRequest(req, NewModelMapper(cfg.Models), cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(512), *backendReq.MaxTokens)
}

func TestFromMessagesRequest_StreamingRequestsUsage(t *testing.T) {
	cfg := testConfig()
	req := &types.MessagesRequest{
		Model:    "claude-opus-4-1",
		Messages: []types.Message{userText("hello")},
		Stream:   true,
	}

	backendReq, err := fromMessagesRequest(req, NewModelMapper(cfg.Models), cfg)
	require.NoError(t, err)
	assert.True(t, backendReq.Stream)
	require.NotNil(t, backendReq.StreamOptions)
	assert.True(t, backendReq.StreamOptions.IncludeUsage)
}

func TestFromMessage_ToolUseAndResult(t *testing.T) {
	assistant := types.Message{
		Role: types.RoleAssistant,
		Content: []types.ContentBlock{
			{Type: types.BlockTypeText, Text: "let me check"},
			{
				Type:  types.BlockTypeToolUse,
				ID:    "toolu_01",
				Name:  "get_weather",
				Input: json.RawMessage(`{"city":"Berlin"}`),
			},
		},
	}

	turns, err := fromMessage(assistant)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "assistant", turns[0].Role)
	assert.Equal(t, "let me check", turns[0].Content)
	require.Len(t, turns[0].ToolCalls, 1)
	assert.Equal(t, "toolu_01", turns[0].ToolCalls[0].ID)
	assert.Equal(t, "get_weather", turns[0].ToolCalls[0].Function.Name)
	assert.Equal(t, `{"city":"Berlin"}`, turns[0].ToolCalls[0].Function.Arguments)

	result := types.Message{
		Role: types.RoleUser,
		Content: []types.ContentBlock{
			{
				Type:      types.BlockTypeToolResult,
				ToolUseID: "toolu_01",
				Content:   types.NewToolResultText("12 degrees, cloudy"),
			},
			{Type: types.BlockTypeText, Text: "and tomorrow?"},
		},
	}

	turns, err = fromMessage(result)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "tool", turns[0].Role)
	assert.Equal(t, "toolu_01", turns[0].ToolCallID)
	assert.Equal(t, "12 degrees, cloudy", turns[0].Content)
	assert.Equal(t, "user", turns[1].Role)
}

func TestFromMessage_RoleRestrictions(t *testing.T) {
	tests := []struct {
		name string
		msg  types.Message
	}{
		{
			name: "tool_use in user message",
			msg: types.Message{
				Role: types.RoleUser,
				Content: []types.ContentBlock{
					{Type: types.BlockTypeToolUse, ID: "toolu_01", Name: "f"},
				},
			},
		},
		{
			name: "tool_result in assistant message",
			msg: types.Message{
				Role: types.RoleAssistant,
				Content: []types.ContentBlock{
					{Type: types.BlockTypeToolResult, ToolUseID: "toolu_01"},
				},
			},
		},
		{
			name: "image in assistant message",
			msg: types.Message{
				Role: types.RoleAssistant,
				Content: []types.ContentBlock{
					{Type: types.BlockTypeImage, Source: &types.ImageSource{Type: "url", URL: "https://example.com/a.png"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromMessage(tt.msg)
			var transcodeErr *TranscodeError
			require.ErrorAs(t, err, &transcodeErr)
			assert.Equal(t, TranscodeErrUnsupportedContent, transcodeErr.Kind)
		})
	}
}

func TestFromImageBlock(t *testing.T) {
	part, err := fromImageBlock(&types.ImageSource{
		Type:      "base64",
		MediaType: "image/png",
		Data:      "aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "image_url", part.Type)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", part.ImageURL.URL)

	part, err = fromImageBlock(&types.ImageSource{Type: "url", URL: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", part.ImageURL.URL)

	_, err = fromImageBlock(&types.ImageSource{Type: "base64", MediaType: "image/tiff", Data: "aGVsbG8="})
	var transcodeErr *TranscodeError
	require.ErrorAs(t, err, &transcodeErr)
	assert.Equal(t, TranscodeErrUnsupportedMedia, transcodeErr.Kind)
}

func TestFromToolChoice(t *testing.T) {
	tools := []types.Tool{
		{Name: "alpha", InputSchema: map[string]any{"type": "object"}},
		{Name: "beta", InputSchema: map[string]any{"type": "object"}},
	}

	t.Run("auto and none map directly", func(t *testing.T) {
		choice, err := fromToolChoice(&types.ToolChoice{Type: types.ToolChoiceAuto}, tools, ToolChoiceOff)
		require.NoError(t, err)
		assert.Equal(t, "auto", choice)

		choice, err = fromToolChoice(&types.ToolChoice{Type: types.ToolChoiceNone}, tools, ToolChoiceOff)
		require.NoError(t, err)
		assert.Equal(t, "none", choice)
	})

	t.Run("any forces the first declared tool", func(t *testing.T) {
		choice, err := fromToolChoice(&types.ToolChoice{Type: types.ToolChoiceAny}, tools, ToolChoiceOff)
		require.NoError(t, err)
		forced, ok := choice.(ForcedToolChoice)
		require.True(t, ok)
		assert.Equal(t, "alpha", forced.Function.Name)
	})

	t.Run("named tool must exist", func(t *testing.T) {
		choice, err := fromToolChoice(&types.ToolChoice{Type: types.ToolChoiceTool, Name: "beta"}, tools, ToolChoiceOff)
		require.NoError(t, err)
		forced, ok := choice.(ForcedToolChoice)
		require.True(t, ok)
		assert.Equal(t, "beta", forced.Function.Name)

		_, err = fromToolChoice(&types.ToolChoice{Type: types.ToolChoiceTool, Name: "gamma"}, tools, ToolChoiceOff)
		var transcodeErr *TranscodeError
		require.ErrorAs(t, err, &transcodeErr)
		assert.Equal(t, TranscodeErrUnknownToolChoice, transcodeErr.Kind)
	})

	t.Run("nil choice follows the injection policy", func(t *testing.T) {
		choice, err := fromToolChoice(nil, tools, ToolChoiceOff)
		require.NoError(t, err)
		assert.Nil(t, choice)

		choice, err = fromToolChoice(nil, tools, ToolChoiceInjectIfAbsent)
		require.NoError(t, err)
		forced, ok := choice.(ForcedToolChoice)
		require.True(t, ok)
		assert.Equal(t, "alpha", forced.Function.Name)

		_, err = fromToolChoice(nil, tools, ToolChoiceRequirePresent)
		var transcodeErr *TranscodeError
		require.ErrorAs(t, err, &transcodeErr)
		assert.Equal(t, TranscodeErrMissingToolChoice, transcodeErr.Kind)
	})

	t.Run("nil choice without tools is untouched by policy", func(t *testing.T) {
		choice, err := fromToolChoice(nil, nil, ToolChoiceRequirePresent)
		require.NoError(t, err)
		assert.Nil(t, choice)
	})
}
