// Package anthropicapi holds the Anthropic /v1/messages wire types: the
// inbound request shape and the outbound response/SSE event shapes.
//
// Grounded on other_examples/081dff73_envoyproxy-ai-gateway (the
// anthropic.MessagesRequest/MessagesResponse shape.
package anthropicapi

import "encoding/json"

// Request is the wire shape of an inbound POST /v1/messages body.
type Request struct {
	Model       string          `json:"model"`
	System      json.RawMessage `json:"system,omitempty"` // string or []SystemBlock
	Messages    []WireMessage   `json:"messages"`
	Tools       []WireTool      `json:"tools,omitempty"`
	ToolChoice  json.RawMessage `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	TopK        *int            `json:"top_k,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Thinking    *WireThinking   `json:"thinking,omitempty"`
}

// SystemBlock is one element of the array form of Request.System.
type SystemBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// WireMessage is one conversation turn as received on the wire.
type WireMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"` // string or []WireContentBlock
}

// WireContentBlock is a single content block in array-form message content.
// Only the fields relevant to its Type are populated.
type WireContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// image
	Source *WireImageSource `json:"source,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"` // string or structured JSON
	IsError   bool            `json:"is_error,omitempty"`
}

// WireImageSource describes an inline base64 image.
type WireImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// WireTool is a tool definition as received on the wire.
type WireTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// WireToolChoiceObject is the object form of tool_choice ({"type":"tool","name":...}).
type WireToolChoiceObject struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// WireThinking carries the thinking{budget_tokens} request parameter.
type WireThinking struct {
	Type         string `json:"type,omitempty"`
	BudgetTokens int    `json:"budget_tokens"`
}
