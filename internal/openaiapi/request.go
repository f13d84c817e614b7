// Package openaiapi holds the OpenAI chat-completions wire types used when
// talking to the upstream provider: the outbound request shape and the
// inbound streaming-chunk/non-streaming response shapes.
//
// Grounded on digitallysavvy-go-ai/pkg/providers/openai/language_model.go
// (openAIResponse/openAIToolCall) and other_examples/348a3ba5 (ChatCompletionResponseChunk).
package openaiapi

import "encoding/json"

// Request is the outbound chat.completions request body.
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     interface{}     `json:"tool_choice,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	StreamOptions  *StreamOptions  `json:"stream_options,omitempty"`
	ReasoningSplit json.RawMessage `json:"reasoning_split,omitempty"`
}

// StreamOptions requests a final usage-bearing chunk.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// Message is one chat-completions message.
type Message struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content,omitempty"` // string, []ContentPart, or null
	Name       string          `json:"name,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall      `json:"tool_calls,omitempty"`
}

// ContentPart is one element of multimodal message content.
type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline data: URL image reference.
type ImageURL struct {
	URL string `json:"url"`
}

// ToolCall is an assistant-issued function call, request or response shape.
type ToolCall struct {
	Index    *int         `json:"index,omitempty"` // set only in streaming deltas
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"` // "function"
	Function ToolCallFunc `json:"function"`
}

// ToolCallFunc is the name/arguments pair of a tool call.
type ToolCallFunc struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Tool is a function tool definition in OpenAI's schema.
type Tool struct {
	Type     string       `json:"type"` // "function"
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the callable's name/description/parameters schema.
type ToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}
