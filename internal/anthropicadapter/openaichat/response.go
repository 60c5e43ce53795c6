package openaichat

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"claudebridge/internal/anthropicadapter/types"
)

// toMessagesResponse converts a complete backend response into the
// Anthropic response shape. The client-requested model identifier is echoed
// back so conversations round-trip under the name the client used.
func toMessagesResponse(resp *ChatCompletionResponse, clientModel string) *types.MessagesResponse {
	out := &types.MessagesResponse{
		ID:    messageID(resp.ID),
		Type:  "message",
		Role:  types.RoleAssistant,
		Model: clientModel,
		Usage: toUsage(resp.Usage),
	}

	if len(resp.Choices) == 0 {
		out.StopReason = types.StopReasonEndTurn
		out.Content = []types.ContentBlock{}
		return out
	}

	choice := resp.Choices[0]
	out.Content = toContentBlocks(choice.Message)
	out.StopReason = toStopReason(choice.FinishReason)
	return out
}

// toContentBlocks rebuilds the ordered block sequence: assistant text first,
// then one tool_use block per tool call.
func toContentBlocks(msg ChatCompletionMessage) []types.ContentBlock {
	blocks := []types.ContentBlock{}

	if text := contentText(msg.Content); text != "" {
		blocks = append(blocks, types.ContentBlock{
			Type: types.BlockTypeText,
			Text: text,
		})
	}

	for _, call := range msg.ToolCalls {
		blocks = append(blocks, types.ContentBlock{
			Type:  types.BlockTypeToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: parseToolArguments(call.Function.Arguments),
		})
	}

	return blocks
}

// contentText extracts flat text from either backend content form.
func contentText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []ContentPart:
		return joinTextParts(v)
	case []any:
		// JSON decoding lands part sequences here since Content is typed
		// any. Round-trip through the concrete part shape.
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		var parts []ContentPart
		if err := json.Unmarshal(raw, &parts); err != nil {
			return ""
		}
		return joinTextParts(parts)
	default:
		return ""
	}
}

func joinTextParts(parts []ContentPart) string {
	var text string
	for _, part := range parts {
		if part.Type == "text" {
			text += part.Text
		}
	}
	return text
}

// parseToolArguments converts the backend's serialized argument blob into
// structured input. Backends occasionally emit malformed argument strings;
// those degrade to a recognizable error-input shape carrying the raw blob
// instead of failing the whole response.
func parseToolArguments(arguments string) json.RawMessage {
	if arguments == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(arguments)) {
		return json.RawMessage(arguments)
	}

	wrapped, err := json.Marshal(map[string]string{
		"error":         "failed to parse tool arguments",
		"raw_arguments": arguments,
	})
	if err != nil {
		return json.RawMessage("{}")
	}
	return wrapped
}

// toStopReason maps backend finish reasons to Anthropic stop reasons.
// Unrecognized reasons fall back to end_turn, never to a failure.
func toStopReason(finishReason string) types.StopReason {
	switch finishReason {
	case "stop":
		return types.StopReasonEndTurn
	case "length":
		return types.StopReasonMaxTokens
	case "tool_calls", "function_call":
		return types.StopReasonToolUse
	case "content_filter":
		return types.StopReasonRefusal
	default:
		return types.StopReasonEndTurn
	}
}

// messageID derives an Anthropic-style message ID (msg_<token>) from the
// backend response ID, generating a random token when the backend omits one.
func messageID(backendID string) string {
	if backendID != "" {
		return "msg_" + backendID
	}
	b := make([]byte, 18) // 18 bytes yields 24 URL-safe base64 characters
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "msg_" + base64.RawURLEncoding.EncodeToString(b)
}
