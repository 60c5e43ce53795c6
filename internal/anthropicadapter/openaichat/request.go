package openaichat

import (
	"fmt"
	"strings"

	"claudebridge/internal/anthropicadapter/types"
)

// supportedImageMedia lists the inline media types the backend accepts.
// Anything else fails the conversion rather than silently dropping content.
var supportedImageMedia = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// fromMessagesRequest converts a validated Anthropic request into the
// backend request schema. On error no partial request is returned.
func fromMessagesRequest(req *types.MessagesRequest, mapper *ModelMapper, cfg Config) (*ChatCompletionRequest, error) {
	messages := make([]ChatCompletionMessage, 0, len(req.Messages)+1)

	if !req.System.IsEmpty() {
		messages = append(messages, ChatCompletionMessage{
			Role:    "system",
			Content: req.System.Text(),
		})
	}

	for i, msg := range req.Messages {
		converted, err := fromMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("messages[%d]: %w", i, err)
		}
		messages = append(messages, converted...)
	}

	tools, err := fromTools(req.Tools)
	if err != nil {
		return nil, err
	}

	toolChoice, err := fromToolChoice(req.ToolChoice, req.Tools, cfg.ToolChoicePolicy)
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	backendReq := &ChatCompletionRequest{
		Model:       mapper.Map(req.Model),
		Messages:    messages,
		Tools:       tools,
		ToolChoice:  toolChoice,
		MaxTokens:   &maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.StopSequences,
		Stream:      req.Stream,
	}
	if req.Stream {
		// Usage arrives only on the final chunk when explicitly requested.
		backendReq.StreamOptions = &StreamOptions{IncludeUsage: true}
	}

	return backendReq, nil
}

// fromMessage maps one Anthropic message to one or more backend turns.
// tool_result blocks become dedicated tool turns emitted before the rest of
// the message, keeping them directly after the assistant turn that issued
// the call ids.
func fromMessage(msg types.Message) ([]ChatCompletionMessage, error) {
	var turns []ChatCompletionMessage
	var parts []ContentPart
	var toolCalls []ToolCall

	for _, block := range msg.Content {
		switch block.Type {
		case types.BlockTypeText:
			parts = append(parts, ContentPart{Type: "text", Text: block.Text})

		case types.BlockTypeImage:
			if msg.Role != types.RoleUser {
				return nil, &TranscodeError{
					Kind:    TranscodeErrUnsupportedContent,
					Message: "image blocks are only supported in user messages",
				}
			}
			part, err := fromImageBlock(block.Source)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)

		case types.BlockTypeToolUse:
			if msg.Role != types.RoleAssistant {
				return nil, &TranscodeError{
					Kind:    TranscodeErrUnsupportedContent,
					Message: "tool_use blocks are only supported in assistant messages",
				}
			}
			arguments := "{}"
			if len(block.Input) > 0 {
				arguments = string(block.Input)
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      block.Name,
					Arguments: arguments,
				},
			})

		case types.BlockTypeToolResult:
			if msg.Role != types.RoleUser {
				return nil, &TranscodeError{
					Kind:    TranscodeErrUnsupportedContent,
					Message: "tool_result blocks are only supported in user messages",
				}
			}
			turns = append(turns, ChatCompletionMessage{
				Role:       "tool",
				ToolCallID: block.ToolUseID,
				Content:    block.Content.AsText(),
			})

		default:
			return nil, &TranscodeError{
				Kind:    TranscodeErrUnsupportedContent,
				Message: fmt.Sprintf("unsupported content block type %q", block.Type),
			}
		}
	}

	if len(parts) > 0 || len(toolCalls) > 0 {
		turns = append(turns, ChatCompletionMessage{
			Role:      string(msg.Role),
			Content:   flattenParts(parts),
			ToolCalls: toolCalls,
		})
	}

	return turns, nil
}

// flattenParts collapses a text-only part sequence to the backend's flat
// string form; mixed content keeps the part sequence.
func flattenParts(parts []ContentPart) any {
	if len(parts) == 0 {
		return nil
	}
	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Type != "text" {
			return parts
		}
		texts = append(texts, part.Text)
	}
	return strings.Join(texts, "\n")
}

// fromImageBlock converts an Anthropic image source to the backend's
// image_url part. Base64 payloads become data URLs.
func fromImageBlock(source *types.ImageSource) (ContentPart, error) {
	if source == nil {
		return ContentPart{}, &TranscodeError{
			Kind:    TranscodeErrUnsupportedContent,
			Message: "image block without source",
		}
	}

	switch source.Type {
	case "base64":
		if !supportedImageMedia[source.MediaType] {
			return ContentPart{}, &TranscodeError{
				Kind:    TranscodeErrUnsupportedMedia,
				Message: fmt.Sprintf("unsupported image media type %q", source.MediaType),
			}
		}
		return ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: "data:" + source.MediaType + ";base64," + source.Data},
		}, nil
	case "url":
		return ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: source.URL},
		}, nil
	default:
		return ContentPart{}, &TranscodeError{
			Kind:    TranscodeErrUnsupportedMedia,
			Message: fmt.Sprintf("unsupported image source type %q", source.Type),
		}
	}
}

// fromTools maps tool definitions 1:1 with schema passthrough.
func fromTools(tools []types.Tool) ([]ChatCompletionTool, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	backendTools := make([]ChatCompletionTool, 0, len(tools))
	for i, tool := range tools {
		if tool.InputSchema == nil {
			return nil, &TranscodeError{
				Kind:    TranscodeErrInvalidSchema,
				Message: fmt.Sprintf("tool %d (%s) has no input schema", i, tool.Name),
			}
		}
		backendTools = append(backendTools, ChatCompletionTool{
			Type: "function",
			Function: FunctionDef{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}
	return backendTools, nil
}

// fromToolChoice converts the tool_choice directive.
//
// "auto" and "none" map directly. "any" (the required form) expands to an
// explicit forced call naming a concrete tool, because some backends reject
// a bare "required" token: with one tool that tool is named, with several
// the first declared tool is chosen deterministically. A nil directive is
// subject to the configured injection policy when tools are declared.
func fromToolChoice(choice *types.ToolChoice, tools []types.Tool, policy ToolChoicePolicy) (any, error) {
	if choice == nil {
		if len(tools) == 0 {
			return nil, nil
		}
		switch policy {
		case ToolChoiceInjectIfAbsent:
			return forcedChoice(tools[0].Name), nil
		case ToolChoiceRequirePresent:
			return nil, &TranscodeError{
				Kind:    TranscodeErrMissingToolChoice,
				Message: "request declares tools but no tool_choice, which this deployment requires",
			}
		default:
			return nil, nil
		}
	}

	switch choice.Type {
	case types.ToolChoiceAuto:
		return "auto", nil
	case types.ToolChoiceNone:
		return "none", nil
	case types.ToolChoiceAny:
		if len(tools) == 0 {
			return nil, &TranscodeError{
				Kind:    TranscodeErrUnknownToolChoice,
				Message: "tool_choice requires a tool but none are declared",
			}
		}
		return forcedChoice(tools[0].Name), nil
	case types.ToolChoiceTool:
		for _, tool := range tools {
			if tool.Name == choice.Name {
				return forcedChoice(choice.Name), nil
			}
		}
		return nil, &TranscodeError{
			Kind:    TranscodeErrUnknownToolChoice,
			Message: fmt.Sprintf("tool_choice names undeclared tool %q", choice.Name),
		}
	default:
		return nil, &TranscodeError{
			Kind:    TranscodeErrUnknownToolChoice,
			Message: fmt.Sprintf("unsupported tool_choice type %q", choice.Type),
		}
	}
}

func forcedChoice(name string) ForcedToolChoice {
	return ForcedToolChoice{
		Type:     "function",
		Function: FunctionTarget{Name: name},
	}
}
