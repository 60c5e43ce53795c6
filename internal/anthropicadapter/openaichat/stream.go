package openaichat

import (
	"iter"

	"claudebridge/internal/anthropicadapter/types"
)

// blockState tracks the currently open content block while translating a
// chunk stream.
type blockState int

const (
	blockNone blockState = iota
	blockText
	blockTool
)

// streamTranslator converts backend chunks into Anthropic stream events.
// Block indices increase strictly from zero; at most one block is open at a
// time. Backend chunks carry no block structure, so boundaries are inferred
// from transitions: text after a tool call, a tool-call fragment with a new
// index, or a finish reason.
type streamTranslator struct {
	clientModel string

	started   bool
	state     blockState
	index     int  // index of the open block, valid when state != blockNone
	toolIndex *int // backend tool-call index of the open tool block

	stopReason types.StopReason
	usage      types.Usage
}

// toStreamEvents translates a backend chunk sequence into the Anthropic
// event sequence. The returned sequence always terminates with message_delta
// and message_stop, whether the source ends cleanly or fails mid-stream.
// Usage may arrive on a trailing chunk after the finish reason, so final
// framing happens only at source exhaustion.
func toStreamEvents(clientModel string, src iter.Seq2[*ChatCompletionChunk, error]) iter.Seq2[*types.StreamEvent, error] {
	return func(yield func(*types.StreamEvent, error) bool) {
		t := &streamTranslator{
			clientModel: clientModel,
			index:       -1,
			stopReason:  types.StopReasonEndTurn,
		}

		for chunk, err := range src {
			if err != nil {
				t.fail(yield)
				return
			}
			if !t.translate(chunk, yield) {
				return
			}
		}

		t.finish(yield)
	}
}

// translate emits the events implied by one chunk. It reports false when the
// consumer stopped.
func (t *streamTranslator) translate(chunk *ChatCompletionChunk, yield func(*types.StreamEvent, error) bool) bool {
	if !t.started {
		t.started = true
		if !yield(types.NewMessageStartEvent(messageID(chunk.ID), t.clientModel), nil) {
			return false
		}
		if !yield(types.NewPingEvent(), nil) {
			return false
		}
	}

	if chunk.Usage != nil {
		t.usage = toUsage(chunk.Usage)
	}
	if len(chunk.Choices) == 0 {
		return true
	}

	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		if t.state != blockText {
			if !t.closeBlock(yield) {
				return false
			}
			t.openBlock(blockText, nil)
			if !yield(types.NewTextBlockStartEvent(t.index), nil) {
				return false
			}
		}
		if !yield(types.NewTextDeltaEvent(t.index, choice.Delta.Content), nil) {
			return false
		}
	}

	for _, call := range choice.Delta.ToolCalls {
		if t.isNewToolCall(call) {
			if !t.closeBlock(yield) {
				return false
			}
			t.openBlock(blockTool, call.Index)
			if !yield(types.NewToolBlockStartEvent(t.index, call.ID, call.Function.Name), nil) {
				return false
			}
		}
		if call.Function.Arguments != "" {
			if !yield(types.NewInputJSONDeltaEvent(t.index, call.Function.Arguments), nil) {
				return false
			}
		}
	}

	if choice.FinishReason != "" {
		t.stopReason = toStopReason(choice.FinishReason)
		if !t.closeBlock(yield) {
			return false
		}
	}

	return true
}

// isNewToolCall reports whether a tool-call fragment starts a new logical
// call rather than continuing the open one. Fragments correlate by backend
// index when present; without indices a fragment carrying an ID starts a
// call and bare argument fragments continue it.
func (t *streamTranslator) isNewToolCall(call ToolCall) bool {
	if t.state != blockTool {
		return true
	}
	if call.Index != nil && t.toolIndex != nil {
		return *call.Index != *t.toolIndex
	}
	return call.ID != ""
}

func (t *streamTranslator) openBlock(state blockState, toolIndex *int) {
	t.index++
	t.state = state
	t.toolIndex = toolIndex
}

func (t *streamTranslator) closeBlock(yield func(*types.StreamEvent, error) bool) bool {
	if t.state == blockNone {
		return true
	}
	t.state = blockNone
	t.toolIndex = nil
	return yield(types.NewBlockStopEvent(t.index), nil)
}

// finish emits the terminal framing after the source is exhausted.
func (t *streamTranslator) finish(yield func(*types.StreamEvent, error) bool) {
	if !t.started {
		return
	}
	if !t.closeBlock(yield) {
		return
	}
	if !yield(types.NewMessageDeltaEvent(t.stopReason, t.usage), nil) {
		return
	}
	yield(types.NewMessageStopEvent(), nil)
}

// fail terminates the event sequence after a mid-stream source failure. Any
// open block is closed and the message ends with the error stop reason so
// clients see a well-formed, clearly truncated message.
func (t *streamTranslator) fail(yield func(*types.StreamEvent, error) bool) {
	if !t.started {
		if !yield(types.NewMessageStartEvent(messageID(""), t.clientModel), nil) {
			return
		}
	}
	if !t.closeBlock(yield) {
		return
	}
	if !yield(types.NewMessageDeltaEvent(types.StopReasonError, t.usage), nil) {
		return
	}
	yield(types.NewMessageStopEvent(), nil)
}
