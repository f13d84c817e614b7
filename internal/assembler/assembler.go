// Package assembler accumulates translator events into a single response:
// it observes the same Anthropic SSE events the Stream Translator would
// write and buffers them into a single AnthropicResponse JSON body,
// reusing the translator's block-state machine rather than a separate
// upstream-parsing code path.
package assembler

import (
	"encoding/json"
	"log/slog"

	"github.com/elifarley/claudish/internal/anthropicapi"
)

// Assembler is a translator.Sink that accumulates events instead of
// writing them to the wire.
type Assembler struct {
	logger *slog.Logger

	messageID    string
	model        string
	order        []int
	blocks       map[int]*blockState
	stopReason   string
	stopSequence *string
	usage        anthropicapi.Usage
}

type blockState struct {
	kind     string // text | thinking | tool_use
	text     string
	toolID   string
	toolName string
	argBytes []byte
}

// New creates an empty Assembler for one request.
func New(logger *slog.Logger, messageID, model string) *Assembler {
	return &Assembler{
		logger:    logger,
		messageID: messageID,
		model:     model,
		blocks:    make(map[int]*blockState),
	}
}

// Emit implements translator.Sink.
func (a *Assembler) Emit(eventName string, payload interface{}) error {
	switch eventName {
	case anthropicapi.EventContentBlockStart:
		ev := payload.(anthropicapi.ContentBlockStartEvent)
		a.order = append(a.order, ev.Index)
		a.blocks[ev.Index] = &blockState{
			kind:     ev.ContentBlock.Type,
			toolID:   ev.ContentBlock.ID,
			toolName: ev.ContentBlock.Name,
		}
	case anthropicapi.EventContentBlockDelta:
		ev := payload.(anthropicapi.ContentBlockDeltaEvent)
		b := a.blocks[ev.Index]
		if b == nil {
			return nil
		}
		switch ev.Delta.Type {
		case anthropicapi.DeltaTypeText:
			b.text += ev.Delta.Text
		case anthropicapi.DeltaTypeThinking:
			b.text += ev.Delta.Thinking
		case anthropicapi.DeltaTypeInputJSON:
			b.argBytes = append(b.argBytes, []byte(ev.Delta.PartialJSON)...)
		}
	case anthropicapi.EventContentBlockStop:
		// no-op: block contents are already final once all deltas landed.
	case anthropicapi.EventMessageDelta:
		ev := payload.(anthropicapi.MessageDeltaEvent)
		a.stopReason = ev.Delta.StopReason
		a.stopSequence = ev.Delta.StopSequence
		a.usage.OutputTokens = ev.Usage.OutputTokens
	case anthropicapi.EventMessageStart:
		ev := payload.(anthropicapi.MessageStartEvent)
		a.usage.InputTokens = ev.Message.Usage.InputTokens
	}
	return nil
}

// Response renders the accumulated blocks into a non-streaming
// AnthropicResponse body, preserving block order.
func (a *Assembler) Response() anthropicapi.Response {
	content := make([]anthropicapi.ContentBlock, 0, len(a.order))
	for _, idx := range a.order {
		b := a.blocks[idx]
		if b == nil {
			continue
		}
		content = append(content, a.renderBlock(b))
	}

	return anthropicapi.Response{
		ID:           a.messageID,
		Type:         "message",
		Role:         "assistant",
		Model:        a.model,
		Content:      content,
		StopReason:   a.stopReason,
		StopSequence: a.stopSequence,
		Usage:        a.usage,
	}
}

func (a *Assembler) renderBlock(b *blockState) anthropicapi.ContentBlock {
	switch b.kind {
	case anthropicapi.BlockTypeText:
		return anthropicapi.ContentBlock{Type: anthropicapi.BlockTypeText, Text: b.text}
	case anthropicapi.BlockTypeThinking:
		return anthropicapi.ContentBlock{Type: anthropicapi.BlockTypeThinking, Thinking: b.text}
	case anthropicapi.BlockTypeToolUse:
		input := b.argBytes
		if len(input) == 0 {
			input = []byte("{}")
		}
		if !json.Valid(input) {
			if a.logger != nil {
				a.logger.Warn("tool input did not parse as JSON, substituting {}", "tool_name", b.toolName, "tool_id", b.toolID)
			}
			input = []byte("{}")
		}
		return anthropicapi.ContentBlock{
			Type:  anthropicapi.BlockTypeToolUse,
			ID:    b.toolID,
			Name:  b.toolName,
			Input: json.RawMessage(input),
		}
	default:
		return anthropicapi.ContentBlock{Type: b.kind, Text: b.text}
	}
}
