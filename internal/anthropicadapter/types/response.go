package types

// StopReason explains why the model stopped emitting output.
type StopReason string

const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonToolUse      StopReason = "tool_use"
	StopReasonRefusal      StopReason = "refusal"

	// StopReasonError terminates a stream whose backend failed mid-response.
	// Not part of the published stop reason set, but clients key cleanup off
	// message_stop and treat unknown stop reasons as terminal.
	StopReasonError StopReason = "error"
)

// Usage records token accounting. Counts the backend did not report stay
// zero; they are never estimated.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// MessagesResponse models the Anthropic Messages API response body.
type MessagesResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"` // always "message"
	Role         Role           `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   StopReason     `json:"stop_reason,omitempty"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}
