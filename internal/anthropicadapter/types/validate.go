package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	ErrNoMessages          = errors.New("at least one message is required")
	ErrInvalidRole         = errors.New("role must be user or assistant")
	ErrEmptyContent        = errors.New("message content must not be empty")
	ErrUnknownBlockType    = errors.New("unknown content block type")
	ErrDuplicateToolName   = errors.New("tool names must be unique")
	ErrInvalidInputSchema  = errors.New("tool input_schema must be an object schema")
	ErrUnknownToolChoice   = errors.New("tool_choice references an undeclared tool")
	ErrOrphanedToolResult  = errors.New("tool_result references an unknown tool_use id")
	ErrIncompleteBlock     = errors.New("content block is missing required fields")
	ErrInvalidImageSource  = errors.New("image source must carry base64 data or a URL")
)

// Validate checks the request beyond what JSON decoding guarantees: struct
// tags, per-block required fields, tool name uniqueness, tool_choice
// resolution, and tool_use/tool_result identifier pairing. The conversion
// core assumes a request that passed Validate.
func (r *MessagesRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	if len(r.Messages) == 0 {
		return ErrNoMessages
	}

	seenToolUse := map[string]bool{}
	for i, msg := range r.Messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return fmt.Errorf("messages[%d]: %w: %q", i, ErrInvalidRole, msg.Role)
		}
		if len(msg.Content) == 0 {
			return fmt.Errorf("messages[%d]: %w", i, ErrEmptyContent)
		}
		for j, block := range msg.Content {
			if err := validateBlock(block, seenToolUse); err != nil {
				return fmt.Errorf("messages[%d].content[%d]: %w", i, j, err)
			}
		}
	}

	names := map[string]bool{}
	for i, tool := range r.Tools {
		if names[tool.Name] {
			return fmt.Errorf("tools[%d]: %w: %q", i, ErrDuplicateToolName, tool.Name)
		}
		names[tool.Name] = true
		if err := validateInputSchema(tool.InputSchema); err != nil {
			return fmt.Errorf("tools[%d] (%s): %w", i, tool.Name, err)
		}
	}

	if r.ToolChoice != nil && r.ToolChoice.Type == ToolChoiceTool {
		if !names[r.ToolChoice.Name] {
			return fmt.Errorf("%w: %q", ErrUnknownToolChoice, r.ToolChoice.Name)
		}
	}

	return nil
}

// validateBlock checks per-variant required fields and records tool_use
// identifiers so later tool_result blocks can be paired against them.
func validateBlock(block ContentBlock, seenToolUse map[string]bool) error {
	switch block.Type {
	case BlockTypeText:
		return nil
	case BlockTypeImage:
		if block.Source == nil {
			return ErrIncompleteBlock
		}
		switch block.Source.Type {
		case "base64":
			if block.Source.MediaType == "" || block.Source.Data == "" {
				return ErrInvalidImageSource
			}
		case "url":
			if block.Source.URL == "" {
				return ErrInvalidImageSource
			}
		default:
			return ErrInvalidImageSource
		}
		return nil
	case BlockTypeToolUse:
		if block.ID == "" || block.Name == "" {
			return ErrIncompleteBlock
		}
		seenToolUse[block.ID] = true
		return nil
	case BlockTypeToolResult:
		if block.ToolUseID == "" {
			return ErrIncompleteBlock
		}
		if !seenToolUse[block.ToolUseID] {
			return fmt.Errorf("%w: %q", ErrOrphanedToolResult, block.ToolUseID)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBlockType, block.Type)
	}
}

// validateInputSchema requires a JSON-Schema-like object schema: either no
// explicit type, or type "object".
func validateInputSchema(schema map[string]any) error {
	if schema == nil {
		return ErrInvalidInputSchema
	}
	if typ, ok := schema["type"]; ok {
		if s, ok := typ.(string); !ok || s != "object" {
			return ErrInvalidInputSchema
		}
	}
	return nil
}
