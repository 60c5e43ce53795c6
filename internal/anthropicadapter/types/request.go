package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a conversational message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType discriminates the content block union.
type BlockType string

const (
	BlockTypeText       BlockType = "text"
	BlockTypeImage      BlockType = "image"
	BlockTypeToolUse    BlockType = "tool_use"
	BlockTypeToolResult BlockType = "tool_result"
)

// ToolChoiceType discriminates the tool_choice directive.
type ToolChoiceType string

const (
	ToolChoiceAuto ToolChoiceType = "auto"
	ToolChoiceAny  ToolChoiceType = "any"
	ToolChoiceTool ToolChoiceType = "tool"
	ToolChoiceNone ToolChoiceType = "none"
)

// MessagesRequest models the Anthropic Messages API request body.
type MessagesRequest struct {
	Model         string         `json:"model" validate:"required"`
	MaxTokens     *int64         `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Messages      []Message      `json:"messages" validate:"required,min=1"`
	System        SystemPrompt   `json:"system,omitempty"`
	Tools         []Tool         `json:"tools,omitempty"`
	ToolChoice    *ToolChoice    `json:"tool_choice,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP          *float64       `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	StopSequences []string       `json:"stop_sequences,omitempty"`
	Stream        bool           `json:"stream,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Message is one conversational turn. Content is always normalized to a
// block sequence; a plain string on the wire becomes a single text block.
type Message struct {
	Role    Role           `json:"role" validate:"required,oneof=user assistant"`
	Content []ContentBlock `json:"content" validate:"required,min=1"`
}

// UnmarshalJSON accepts both the string and the block-array content forms.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	m.Role = raw.Role

	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		m.Content = nil
		return nil
	}

	var text string
	if err := json.Unmarshal(raw.Content, &text); err == nil {
		m.Content = []ContentBlock{{Type: BlockTypeText, Text: text}}
		return nil
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(raw.Content, &blocks); err != nil {
		return fmt.Errorf("decode message content: %w", err)
	}
	m.Content = blocks
	return nil
}

// ContentBlock is the tagged content variant. Exactly one field group is
// populated depending on Type:
//
//	text:        Text
//	image:       Source
//	tool_use:    ID, Name, Input
//	tool_result: ToolUseID, Content, IsError
type ContentBlock struct {
	Type BlockType `json:"type"`

	Text string `json:"text,omitempty"`

	Source *ImageSource `json:"source,omitempty"`

	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	ToolUseID string             `json:"tool_use_id,omitempty"`
	Content   *ToolResultContent `json:"content,omitempty"`
	IsError   bool               `json:"is_error,omitempty"`
}

// ImageSource carries inline or referenced image data.
type ImageSource struct {
	Type      string `json:"type"` // "base64" | "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ToolResultContent is the union payload of a tool_result block: either a
// plain string or a sequence of content blocks.
type ToolResultContent struct {
	Text   string
	Blocks []ContentBlock
	isText bool
}

// NewToolResultText wraps a plain-string tool result.
func NewToolResultText(text string) *ToolResultContent {
	return &ToolResultContent{Text: text, isText: true}
}

// UnmarshalJSON accepts both the string and the block-array result forms.
func (c *ToolResultContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.isText = true
		return nil
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("decode tool result content: %w", err)
	}
	c.Blocks = blocks
	c.isText = false
	return nil
}

// MarshalJSON re-encodes the union in the form it arrived in.
func (c ToolResultContent) MarshalJSON() ([]byte, error) {
	if c.isText {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Blocks)
}

// AsText flattens the result payload to a single string for backends whose
// tool turns carry flat string content. Non-text blocks are skipped.
func (c *ToolResultContent) AsText() string {
	if c == nil {
		return ""
	}
	if c.isText {
		return c.Text
	}
	var parts []string
	for _, block := range c.Blocks {
		if block.Type == BlockTypeText {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// SystemPrompt is the union system field: a plain string or an ordered
// sequence of text segments.
type SystemPrompt struct {
	Segments []SystemSegment
}

// SystemSegment is one text segment of a structured system prompt.
type SystemSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts both the string and the segment-array forms.
func (s *SystemPrompt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		s.Segments = nil
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if text == "" {
			s.Segments = nil
			return nil
		}
		s.Segments = []SystemSegment{{Type: "text", Text: text}}
		return nil
	}

	var segments []SystemSegment
	if err := json.Unmarshal(data, &segments); err != nil {
		return fmt.Errorf("decode system prompt: %w", err)
	}
	s.Segments = segments
	return nil
}

// MarshalJSON emits the segment-array form.
func (s SystemPrompt) MarshalJSON() ([]byte, error) {
	if len(s.Segments) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(s.Segments)
}

// IsEmpty reports whether no system content was supplied.
func (s SystemPrompt) IsEmpty() bool {
	return len(s.Segments) == 0
}

// Text concatenates the text segments in order, separated by blank lines.
func (s SystemPrompt) Text() string {
	parts := make([]string, 0, len(s.Segments))
	for _, segment := range s.Segments {
		if segment.Text != "" {
			parts = append(parts, segment.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Tool is one tool definition offered to the model.
type Tool struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema" validate:"required"`
}

// ToolChoice directs whether and which tool the model must invoke.
// Name is set only when Type is "tool".
type ToolChoice struct {
	Type ToolChoiceType `json:"type" validate:"required,oneof=auto any tool none"`
	Name string         `json:"name,omitempty"`
}
