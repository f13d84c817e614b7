package anthropicapi

import "encoding/json"

// Response is the non-streaming /v1/messages response body (component G).
type Response struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"` // "message"
	Role         string          `json:"role"` // "assistant"
	Model        string          `json:"model"`
	Content      []ContentBlock  `json:"content"`
	StopReason   string          `json:"stop_reason"`
	StopSequence *string         `json:"stop_sequence"`
	Usage        Usage           `json:"usage"`
	Raw          json.RawMessage `json:"-"`
}

// ContentBlock is one element of Response.Content.
type ContentBlock struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Thinking string `json:"thinking,omitempty"`

	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Usage mirrors Anthropic's input/output token accounting.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Error is the wire shape of an Anthropic-style error body.
type Error struct {
	Type  string     `json:"type"` // "error"
	Error ErrorInner `json:"error"`
}

// ErrorInner carries the error's own type tag and human-readable message.
type ErrorInner struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewError builds an Error body for the given Anthropic-style error type.
func NewError(errType, message string) Error {
	return Error{
		Type: "error",
		Error: ErrorInner{
			Type:    errType,
			Message: message,
		},
	}
}

// SSE event payload shapes. Each *Event type below is the JSON body
// that accompanies an `event: <name>` / `data: <json>` SSE frame; the
// frame's event name always matches that type's Type field.

// MessageStartEvent is the first event of a stream.
type MessageStartEvent struct {
	Type    string         `json:"type"` // "message_start"
	Message MessageStartMsg `json:"message"`
}

// MessageStartMsg is the partial message object sent with message_start.
type MessageStartMsg struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"` // "message"
	Role         string         `json:"role"` // "assistant"
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"` // always []
	StopReason   *string        `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// ContentBlockStartEvent announces a new content block at Index.
type ContentBlockStartEvent struct {
	Type         string       `json:"type"` // "content_block_start"
	Index        int          `json:"index"`
	ContentBlock ContentBlock `json:"content_block"`
}

// ContentBlockDeltaEvent carries an incremental update to the block at Index.
type ContentBlockDeltaEvent struct {
	Type  string `json:"type"` // "content_block_delta"
	Index int    `json:"index"`
	Delta Delta  `json:"delta"`
}

// Delta is the tagged-union payload of a content_block_delta event.
type Delta struct {
	Type string `json:"type"` // "text_delta" | "input_json_delta" | "thinking_delta"

	Text string `json:"text,omitempty"`

	PartialJSON string `json:"partial_json,omitempty"`

	Thinking string `json:"thinking,omitempty"`
}

// ContentBlockStopEvent closes the block at Index.
type ContentBlockStopEvent struct {
	Type  string `json:"type"` // "content_block_stop"
	Index int    `json:"index"`
}

// MessageDeltaEvent carries the final stop_reason and cumulative usage.
type MessageDeltaEvent struct {
	Type  string         `json:"type"` // "message_delta"
	Delta MessageDeltaBody `json:"delta"`
	Usage Usage          `json:"usage"`
}

// MessageDeltaBody holds the fields that change at stream end.
type MessageDeltaBody struct {
	StopReason   string  `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

// MessageStopEvent is the terminal event of a stream.
type MessageStopEvent struct {
	Type string `json:"type"` // "message_stop"
}

// PingEvent is the idle keep-alive event.
type PingEvent struct {
	Type string `json:"type"` // "ping"
}

// Stop reason values.
const (
	StopReasonEndTurn      = "end_turn"
	StopReasonMaxTokens    = "max_tokens"
	StopReasonToolUse      = "tool_use"
	StopReasonStopSequence = "stop_sequence"
)

// Content block type tags.
const (
	BlockTypeText     = "text"
	BlockTypeThinking = "thinking"
	BlockTypeToolUse  = "tool_use"
)

// Delta type tags.
const (
	DeltaTypeText       = "text_delta"
	DeltaTypeInputJSON  = "input_json_delta"
	DeltaTypeThinking   = "thinking_delta"
)

// SSE event-name tags, mirroring the Type fields above.
const (
	EventMessageStart      = "message_start"
	EventPing              = "ping"
	EventContentBlockStart = "content_block_start"
	EventContentBlockDelta = "content_block_delta"
	EventContentBlockStop  = "content_block_stop"
	EventMessageDelta      = "message_delta"
	EventMessageStop       = "message_stop"
)

// DoneSentinel is the terminal SSE data payload some clients expect after
// message_stop, mirroring OpenAI's own [DONE] framing.
const DoneSentinel = "[DONE]"
