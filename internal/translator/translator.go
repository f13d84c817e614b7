// Package translator converts upstream OpenAI chunks into Anthropic SSE events: the
// core state machine that turns a continuous OpenAI chat-completions SSE
// stream into a continuous Anthropic SSE stream, maintaining the block
// block-indexing state machine along the way.
//
// Grounded primarily on other_examples/348a3ba5 (openAIStreamToAnthropicState)
// and other_examples/8403137d (streamState), re-expressed with the
// canonical.BlockTable arena instead of ad hoc pointer maps.
package translator

import (
	"github.com/elifarley/claudish/internal/adapter"
	"github.com/elifarley/claudish/internal/anthropicapi"
	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// State is one of the translator's lifecycle states.
type State string

const (
	StateNew        State = "NEW"
	StateHeaderSent State = "HEADER_SENT"
	StateStreaming  State = "STREAMING"
	StateEnded      State = "ENDED"
	StateErrored    State = "ERRORED"
)

// Sink receives the Anthropic SSE events a Translator produces. A single
// Sink instance is expected to serialize writes (ping events
// never interleave mid-event-frame"); the Dispatcher's response writer is
// the concrete implementation.
type Sink interface {
	Emit(eventName string, payload interface{}) error
}

// Translator owns one request's BlockTable and drives it from upstream
// OpenAI chunks. Not safe for concurrent use; one instance per request
// only one goroutine writes to a given Sink at a time.
type Translator struct {
	sink  Sink
	ad    adapter.Adapter
	table *canonical.BlockTable

	messageID string
	model     string
	state     State

	inputTokens  int
	outputTokens int
	stopReason   string

	textAccum     string
	pendingToolID map[int]string // upstream index -> id, seen before a name arrived
	toolSeq       int
}

// New creates a Translator for one request.
func New(sink Sink, ad adapter.Adapter, messageID, model string) *Translator {
	return &Translator{
		sink:          sink,
		ad:            ad,
		table:         canonical.NewBlockTable(),
		messageID:     messageID,
		model:         model,
		state:         StateNew,
		pendingToolID: make(map[int]string),
	}
}

// State returns the translator's current lifecycle state.
func (t *Translator) State() State { return t.state }

// Start emits message_start and the initial ping.
func (t *Translator) Start() error {
	if err := t.sink.Emit(anthropicapi.EventMessageStart, anthropicapi.MessageStartEvent{
		Type: anthropicapi.EventMessageStart,
		Message: anthropicapi.MessageStartMsg{
			ID:      t.messageID,
			Type:    "message",
			Role:    "assistant",
			Model:   t.model,
			Content: []anthropicapi.ContentBlock{},
			Usage:   anthropicapi.Usage{InputTokens: t.inputTokens},
		},
	}); err != nil {
		return err
	}

	t.state = StateHeaderSent
	if err := t.emitPing(); err != nil {
		return err
	}
	t.state = StateStreaming
	return nil
}

func (t *Translator) emitPing() error {
	return t.sink.Emit(anthropicapi.EventPing, anthropicapi.PingEvent{Type: anthropicapi.EventPing})
}

// HandleChunk processes one parsed OpenAI chunk.
func (t *Translator) HandleChunk(chunk *openaiapi.ChunkResponse) error {
	if chunk.Usage != nil {
		t.inputTokens = chunk.Usage.PromptTokens
		t.outputTokens = chunk.Usage.CompletionTokens
	}

	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]
	delta := choice.Delta

	if delta.ReasoningContent != nil && *delta.ReasoningContent != "" {
		if err := t.handleReasoningDelta(*delta.ReasoningContent); err != nil {
			return err
		}
	}

	if delta.Content != nil && *delta.Content != "" {
		if err := t.handleTextDelta(*delta.Content); err != nil {
			return err
		}
	}

	if len(delta.ToolCalls) > 0 {
		if err := t.handleToolCallDeltas(delta.ToolCalls); err != nil {
			return err
		}
	}

	if choice.FinishReason != nil {
		if err := t.handleFinish(*choice.FinishReason); err != nil {
			return err
		}
	}

	return nil
}

func (t *Translator) handleReasoningDelta(text string) error {
	idx, open := t.table.ReasoningOpen()
	if !open {
		idx = t.table.OpenReasoning()
		if err := t.sink.Emit(anthropicapi.EventContentBlockStart, anthropicapi.ContentBlockStartEvent{
			Type:  anthropicapi.EventContentBlockStart,
			Index: idx,
			ContentBlock: anthropicapi.ContentBlock{
				Type: anthropicapi.BlockTypeThinking,
			},
		}); err != nil {
			return err
		}
	}
	return t.sink.Emit(anthropicapi.EventContentBlockDelta, anthropicapi.ContentBlockDeltaEvent{
		Type:  anthropicapi.EventContentBlockDelta,
		Index: idx,
		Delta: anthropicapi.Delta{Type: anthropicapi.DeltaTypeThinking, Thinking: text},
	})
}

func (t *Translator) handleTextDelta(text string) error {
	t.textAccum += text

	for {
		cleaned, extracted, _ := t.ad.ProcessTextContent(text, t.textAccum)

		if len(extracted) > 0 {
			if cleaned != "" {
				if err := t.emitText(cleaned); err != nil {
					return err
				}
			}
			for _, ec := range extracted {
				if err := t.emitSyntheticToolCall(ec); err != nil {
					return err
				}
			}
			text = "" // further iterations resume purely from adapter-internal state
			continue
		}

		if cleaned != "" {
			if err := t.emitText(cleaned); err != nil {
				return err
			}
		}
		return nil
	}
}

func (t *Translator) emitText(text string) error {
	if err := t.closeReasoningIfOpen(); err != nil {
		return err
	}

	idx, open := t.table.TextOpen()
	if !open {
		idx = t.table.OpenText()
		if err := t.sink.Emit(anthropicapi.EventContentBlockStart, anthropicapi.ContentBlockStartEvent{
			Type:  anthropicapi.EventContentBlockStart,
			Index: idx,
			ContentBlock: anthropicapi.ContentBlock{
				Type: anthropicapi.BlockTypeText,
				Text: "",
			},
		}); err != nil {
			return err
		}
	}
	return t.sink.Emit(anthropicapi.EventContentBlockDelta, anthropicapi.ContentBlockDeltaEvent{
		Type:  anthropicapi.EventContentBlockDelta,
		Index: idx,
		Delta: anthropicapi.Delta{Type: anthropicapi.DeltaTypeText, Text: text},
	})
}

func (t *Translator) closeReasoningIfOpen() error {
	idx, open := t.table.ReasoningOpen()
	if !open {
		return nil
	}
	t.table.CloseReasoning()
	return t.sink.Emit(anthropicapi.EventContentBlockStop, anthropicapi.ContentBlockStopEvent{
		Type: anthropicapi.EventContentBlockStop, Index: idx,
	})
}

func (t *Translator) closeTextIfOpen() error {
	idx, open := t.table.TextOpen()
	if !open {
		return nil
	}
	t.table.CloseText()
	return t.sink.Emit(anthropicapi.EventContentBlockStop, anthropicapi.ContentBlockStopEvent{
		Type: anthropicapi.EventContentBlockStop, Index: idx,
	})
}

// emitSyntheticToolCall opens, fills, and closes a single tool_use block
// for a tool call the adapter extracted wholesale from text (as opposed to
// one assembled incrementally from upstream tool_calls deltas).
func (t *Translator) emitSyntheticToolCall(ec adapter.ExtractedToolCall) error {
	if err := t.closeTextIfOpen(); err != nil {
		return err
	}
	if err := t.closeReasoningIfOpen(); err != nil {
		return err
	}

	t.toolSeq++
	id := newSyntheticToolID(t.toolSeq)
	// Synthetic tool calls are keyed by a negative upstream index so they
	// never collide with a real upstream tool-call index.
	upstreamIdx := -t.toolSeq
	tb := t.table.OpenTool(upstreamIdx, id, ec.Name)

	if err := t.sink.Emit(anthropicapi.EventContentBlockStart, anthropicapi.ContentBlockStartEvent{
		Type:  anthropicapi.EventContentBlockStart,
		Index: tb.AnthropicIndex,
		ContentBlock: anthropicapi.ContentBlock{
			Type: anthropicapi.BlockTypeToolUse,
			ID:   id,
			Name: ec.Name,
		},
	}); err != nil {
		return err
	}

	tb.AppendToolArgs(ec.ArgsJSON)
	if err := t.sink.Emit(anthropicapi.EventContentBlockDelta, anthropicapi.ContentBlockDeltaEvent{
		Type:  anthropicapi.EventContentBlockDelta,
		Index: tb.AnthropicIndex,
		Delta: anthropicapi.Delta{Type: anthropicapi.DeltaTypeInputJSON, PartialJSON: string(ec.ArgsJSON)},
	}); err != nil {
		return err
	}

	tb.Close()
	return t.sink.Emit(anthropicapi.EventContentBlockStop, anthropicapi.ContentBlockStopEvent{
		Type: anthropicapi.EventContentBlockStop, Index: tb.AnthropicIndex,
	})
}

func (t *Translator) handleToolCallDeltas(deltas []openaiapi.ToolCall) error {
	for _, tc := range deltas {
		if tc.Index == nil {
			continue
		}
		upstreamIdx := *tc.Index

		tb, exists := t.table.ToolByUpstreamIndex(upstreamIdx)
		if !exists {
			name := tc.Function.Name
			if name == "" {
				// Buffer the id until a name arrives (2nd Open Question,
				// do not invent a name until the upstream supplies one.
				if tc.ID != "" {
					t.pendingToolID[upstreamIdx] = tc.ID
				}
				continue
			}

			if err := t.closeTextIfOpen(); err != nil {
				return err
			}
			if err := t.closeReasoningIfOpen(); err != nil {
				return err
			}

			id := tc.ID
			if id == "" {
				id = t.pendingToolID[upstreamIdx]
			}
			delete(t.pendingToolID, upstreamIdx)
			if id == "" {
				t.toolSeq++
				id = newSyntheticToolID(t.toolSeq)
			}

			tb = t.table.OpenTool(upstreamIdx, id, name)
			if err := t.sink.Emit(anthropicapi.EventContentBlockStart, anthropicapi.ContentBlockStartEvent{
				Type:  anthropicapi.EventContentBlockStart,
				Index: tb.AnthropicIndex,
				ContentBlock: anthropicapi.ContentBlock{
					Type: anthropicapi.BlockTypeToolUse,
					ID:   id,
					Name: name,
				},
			}); err != nil {
				return err
			}
		}

		if tc.Function.Arguments != "" {
			tb.AppendToolArgs([]byte(tc.Function.Arguments))
			if err := t.sink.Emit(anthropicapi.EventContentBlockDelta, anthropicapi.ContentBlockDeltaEvent{
				Type:  anthropicapi.EventContentBlockDelta,
				Index: tb.AnthropicIndex,
				Delta: anthropicapi.Delta{Type: anthropicapi.DeltaTypeInputJSON, PartialJSON: tc.Function.Arguments},
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Translator) handleFinish(reason string) error {
	t.stopReason = openaiapi.MapFinishReason(reason)

	if t.stopReason == anthropicapi.StopReasonToolUse {
		return t.closeAllOpenTools()
	}
	return t.closeAllOpen()
}

func (t *Translator) closeAllOpenTools() error {
	for _, upstreamIdx := range t.table.OpenToolIndices() {
		tb, ok := t.table.ToolByUpstreamIndex(upstreamIdx)
		if !ok || tb.Closed {
			continue
		}
		tb.Close()
		if err := t.sink.Emit(anthropicapi.EventContentBlockStop, anthropicapi.ContentBlockStopEvent{
			Type: anthropicapi.EventContentBlockStop, Index: tb.AnthropicIndex,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) closeAllOpen() error {
	if err := t.closeReasoningIfOpen(); err != nil {
		return err
	}
	if err := t.closeTextIfOpen(); err != nil {
		return err
	}
	return t.closeAllOpenTools()
}

// Terminate closes any still-open blocks and emits the termination
// sequence: message_delta, then message_stop. It writes no [DONE] marker;
// that is left to the transport. Called once, on upstream EOF/[DONE].
func (t *Translator) Terminate() error {
	if err := t.closeAllOpen(); err != nil {
		return err
	}

	stopReason := t.stopReason
	if stopReason == "" {
		stopReason = anthropicapi.StopReasonEndTurn
	}

	if err := t.sink.Emit(anthropicapi.EventMessageDelta, anthropicapi.MessageDeltaEvent{
		Type:  anthropicapi.EventMessageDelta,
		Delta: anthropicapi.MessageDeltaBody{StopReason: stopReason},
		Usage: anthropicapi.Usage{OutputTokens: t.outputTokens},
	}); err != nil {
		return err
	}

	if err := t.sink.Emit(anthropicapi.EventMessageStop, anthropicapi.MessageStopEvent{
		Type: anthropicapi.EventMessageStop,
	}); err != nil {
		return err
	}

	t.state = StateEnded
	return nil
}

// TerminateTimedOut closes any still-open blocks and emits the same
// termination sequence as Terminate, but with stop_reason forced to
// "max_tokens". Used when the request deadline expires mid-stream: the
// client has already received message_start (and a 200 status), so the
// response must still end cleanly rather than surface an HTTP error.
func (t *Translator) TerminateTimedOut() error {
	t.stopReason = anthropicapi.StopReasonMaxTokens
	return t.Terminate()
}

// Fail reports a mid-stream upstream error. Only valid
// after Start has been called; pre-Start failures are handled by the
// Dispatcher returning a plain HTTP error response instead.
func (t *Translator) Fail(errType, message string) error {
	if err := t.sink.Emit("error", anthropicapi.NewError(errType, message)); err != nil {
		return err
	}
	t.state = StateErrored
	return nil
}

// StopReason exposes the finish reason recorded so far, for diagnostics.
func (t *Translator) StopReason() string { return t.stopReason }

// Usage exposes the accumulated token counts, for the non-streaming Assembler.
func (t *Translator) Usage() anthropicapi.Usage {
	return anthropicapi.Usage{InputTokens: t.inputTokens, OutputTokens: t.outputTokens}
}

// MessageID exposes the generated message id.
func (t *Translator) MessageID() string { return t.messageID }
