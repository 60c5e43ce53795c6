package types

// StreamEventType discriminates the client-facing streaming event union.
type StreamEventType string

const (
	EventMessageStart      StreamEventType = "message_start"
	EventContentBlockStart StreamEventType = "content_block_start"
	EventContentBlockDelta StreamEventType = "content_block_delta"
	EventContentBlockStop  StreamEventType = "content_block_stop"
	EventMessageDelta      StreamEventType = "message_delta"
	EventMessageStop       StreamEventType = "message_stop"
	EventPing              StreamEventType = "ping"
)

// DeltaType discriminates incremental content fragments.
type DeltaType string

const (
	DeltaTypeText      DeltaType = "text_delta"
	DeltaTypeInputJSON DeltaType = "input_json_delta"
)

// StreamEvent is one client-framed streaming event. Field population by Type:
//
//	message_start:       Message
//	content_block_start: Index, ContentBlock
//	content_block_delta: Index, Delta (text or partial JSON fragment)
//	content_block_stop:  Index
//	message_delta:       Delta (stop reason), Usage
//	message_stop, ping:  no payload
type StreamEvent struct {
	Type         StreamEventType   `json:"type"`
	Message      *MessagesResponse `json:"message,omitempty"`
	Index        *int              `json:"index,omitempty"`
	ContentBlock *ContentBlock     `json:"content_block,omitempty"`
	Delta        *StreamDelta      `json:"delta,omitempty"`
	Usage        *Usage            `json:"usage,omitempty"`
}

// StreamDelta carries the incremental payload of a delta event. For
// content_block_delta it is a text or partial-JSON fragment; for
// message_delta it carries the stop reason. PartialJSON fragments are
// forwarded verbatim and must not be parsed until the block closes.
type StreamDelta struct {
	Type        DeltaType  `json:"type,omitempty"`
	Text        string     `json:"text,omitempty"`
	PartialJSON string     `json:"partial_json,omitempty"`
	StopReason  StopReason `json:"stop_reason,omitempty"`
}

// NewMessageStartEvent frames the opening event of a streamed message.
func NewMessageStartEvent(id, model string) *StreamEvent {
	return &StreamEvent{
		Type: EventMessageStart,
		Message: &MessagesResponse{
			ID:      id,
			Type:    "message",
			Role:    RoleAssistant,
			Model:   model,
			Content: []ContentBlock{},
		},
	}
}

// NewTextBlockStartEvent opens a text content block at the given index.
func NewTextBlockStartEvent(index int) *StreamEvent {
	return &StreamEvent{
		Type:         EventContentBlockStart,
		Index:        &index,
		ContentBlock: &ContentBlock{Type: BlockTypeText, Text: ""},
	}
}

// NewToolBlockStartEvent opens a tool_use content block at the given index.
// The input starts as an empty object; fragments follow as input_json_delta.
func NewToolBlockStartEvent(index int, id, name string) *StreamEvent {
	return &StreamEvent{
		Type:  EventContentBlockStart,
		Index: &index,
		ContentBlock: &ContentBlock{
			Type:  BlockTypeToolUse,
			ID:    id,
			Name:  name,
			Input: []byte("{}"),
		},
	}
}

// NewTextDeltaEvent carries one incremental text fragment for a block.
func NewTextDeltaEvent(index int, text string) *StreamEvent {
	return &StreamEvent{
		Type:  EventContentBlockDelta,
		Index: &index,
		Delta: &StreamDelta{Type: DeltaTypeText, Text: text},
	}
}

// NewInputJSONDeltaEvent carries one partial structured-input fragment.
func NewInputJSONDeltaEvent(index int, fragment string) *StreamEvent {
	return &StreamEvent{
		Type:  EventContentBlockDelta,
		Index: &index,
		Delta: &StreamDelta{Type: DeltaTypeInputJSON, PartialJSON: fragment},
	}
}

// NewBlockStopEvent closes the content block at the given index.
func NewBlockStopEvent(index int) *StreamEvent {
	return &StreamEvent{Type: EventContentBlockStop, Index: &index}
}

// NewMessageDeltaEvent carries the final stop reason and usage totals.
func NewMessageDeltaEvent(stopReason StopReason, usage Usage) *StreamEvent {
	return &StreamEvent{
		Type:  EventMessageDelta,
		Delta: &StreamDelta{StopReason: stopReason},
		Usage: &usage,
	}
}

// NewMessageStopEvent terminates the event sequence.
func NewMessageStopEvent() *StreamEvent {
	return &StreamEvent{Type: EventMessageStop}
}

// NewPingEvent is a keep-alive marker emitted after message_start.
func NewPingEvent() *StreamEvent {
	return &StreamEvent{Type: EventPing}
}
