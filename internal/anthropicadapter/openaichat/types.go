package openaichat

// Wire types for the OpenAI-compatible chat completion schema. Only the
// fields this bridge reads or writes are modeled; unknown fields pass
// through the decoder untouched.

// ChatCompletionRequest is the outbound request body.
type ChatCompletionRequest struct {
	Model         string                  `json:"model"`
	Messages      []ChatCompletionMessage `json:"messages"`
	Tools         []ChatCompletionTool    `json:"tools,omitempty"`
	ToolChoice    any                     `json:"tool_choice,omitempty"` // "auto" | "none" | ForcedToolChoice
	MaxTokens     *int64                  `json:"max_tokens,omitempty"`
	Temperature   *float64                `json:"temperature,omitempty"`
	TopP          *float64                `json:"top_p,omitempty"`
	Stop          []string                `json:"stop,omitempty"`
	Stream        bool                    `json:"stream,omitempty"`
	StreamOptions *StreamOptions          `json:"stream_options,omitempty"`
}

// StreamOptions requests usage accounting on the final stream chunk.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// ChatCompletionMessage is one backend turn. Content is either a flat
// string or an ordered part sequence ([]ContentPart).
type ChatCompletionMessage struct {
	Role       string     `json:"role"` // system | user | assistant | tool
	Content    any        `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ContentPart is one element of a multimodal content sequence.
type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image by https URL or data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// ChatCompletionTool is one backend tool definition.
type ChatCompletionTool struct {
	Type     string      `json:"type"` // always "function"
	Function FunctionDef `json:"function"`
}

// FunctionDef carries the tool name, description and JSON-Schema parameters.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ForcedToolChoice is the object form of tool_choice naming one function.
type ForcedToolChoice struct {
	Type     string         `json:"type"` // always "function"
	Function FunctionTarget `json:"function"`
}

// FunctionTarget names the forced function.
type FunctionTarget struct {
	Name string `json:"name"`
}

// ToolCall is one function invocation attached to an assistant turn.
// Arguments is a serialized JSON string, not structured data. In streaming
// chunks Index correlates fragments of the same logical call.
type ToolCall struct {
	Index    *int         `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the called name and the argument blob (possibly a
// partial fragment in streaming chunks).
type FunctionCall struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatCompletionResponse is the complete non-streaming response body.
type ChatCompletionResponse struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Choices []Choice   `json:"choices"`
	Usage   *ChatUsage `json:"usage,omitempty"`
}

// Choice is one completion alternative; this bridge reads only the first.
type Choice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason,omitempty"`
}

// ChatUsage is the backend token accounting shape.
type ChatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// ChatCompletionChunk is one incremental streaming event. Chunks arrive in
// order on one connection and carry no explicit block indexing; position is
// inferred from arrival order and role/tool transitions.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *ChatUsage    `json:"usage,omitempty"`
}

// ChunkChoice is one choice fragment inside a chunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

// ChunkDelta carries the incremental fields of a chunk: an optional role,
// an optional text fragment, and optional tool-call fragments.
type ChunkDelta struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// chatCompletionErrorBody is the backend's error envelope.
type chatCompletionErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}
