// Package reqbuilder builds an OpenAI chat-completions request:
// it turns a canonical request into an OpenAI chat-completions payload,
// including system-prompt joining, the identity filter, tool_use/tool_result
// message shaping, and JSON-Schema URI-format stripping.
//
// Grounded on digitallysavvy-go-ai/pkg/providerutils/prompt/converter.go and
// pkg/providerutils/tool/converter.go.
package reqbuilder

import (
	"encoding/json"
	"strings"

	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// Build converts a canonical request into an OpenAI chat-completions payload.
func Build(req *canonical.Request) (*openaiapi.Request, error) {
	out := &openaiapi.Request{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      req.Stream,
	}
	if req.Stream {
		out.StreamOptions = &openaiapi.StreamOptions{IncludeUsage: true}
	}

	messages, err := buildMessages(req)
	if err != nil {
		return nil, err
	}
	out.Messages = messages

	if len(req.Tools) > 0 {
		out.Tools = buildTools(req.Tools)
	}

	if req.ToolChoice != nil {
		out.ToolChoice = buildToolChoice(*req.ToolChoice)
	}

	return out, nil
}

func buildMessages(req *canonical.Request) ([]openaiapi.Message, error) {
	var out []openaiapi.Message

	if len(req.System) > 0 {
		joined := strings.Join(req.System, "\n\n")
		if looksLikeClaudeCLI(joined) {
			joined = applyIdentityFilter(joined)
		}
		out = append(out, openaiapi.Message{
			Role:    "system",
			Content: rawString(joined),
		})
	}

	for _, turn := range req.Messages {
		msgs, err := buildTurnMessages(turn)
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}

	return out, nil
}

// buildTurnMessages expands one canonical turn into one or more OpenAI
// messages. Tool results within a user turn become `role:"tool"` messages
// emitted before any remaining content parts.
func buildTurnMessages(turn canonical.Turn) ([]openaiapi.Message, error) {
	if turn.Role == canonical.RoleUser {
		return buildUserTurn(turn)
	}
	return buildAssistantTurn(turn)
}

func buildUserTurn(turn canonical.Turn) ([]openaiapi.Message, error) {
	var toolMsgs []openaiapi.Message
	var rest []canonical.Block

	for _, b := range turn.Content {
		if tr, ok := b.(canonical.ToolResultBlock); ok {
			content, err := toolResultContent(tr)
			if err != nil {
				return nil, err
			}
			toolMsgs = append(toolMsgs, openaiapi.Message{
				Role:       "tool",
				ToolCallID: tr.ToolUseID,
				Content:    content,
			})
			continue
		}
		rest = append(rest, b)
	}

	out := toolMsgs
	if len(rest) > 0 {
		content, err := buildContentParts(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, openaiapi.Message{Role: "user", Content: content})
	}
	return out, nil
}

func toolResultContent(tr canonical.ToolResultBlock) (json.RawMessage, error) {
	if tr.ContentIsJSON {
		return json.RawMessage(tr.ContentJSON), nil
	}
	return rawString(tr.ContentText), nil
}

func buildAssistantTurn(turn canonical.Turn) ([]openaiapi.Message, error) {
	var textParts []string
	var toolCalls []openaiapi.ToolCall

	for _, b := range turn.Content {
		switch v := b.(type) {
		case canonical.TextBlock:
			textParts = append(textParts, v.Text)
		case canonical.ToolUseBlock:
			args := v.InputJSON
			if len(args) == 0 {
				args = []byte("{}")
			}
			toolCalls = append(toolCalls, openaiapi.ToolCall{
				ID:   v.ID,
				Type: "function",
				Function: openaiapi.ToolCallFunc{
					Name:      v.Name,
					Arguments: string(args),
				},
			})
		}
	}

	msg := openaiapi.Message{Role: "assistant"}
	if len(textParts) > 0 {
		msg.Content = rawString(strings.Join(textParts, ""))
	} else {
		msg.Content = json.RawMessage("null")
	}
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}
	return []openaiapi.Message{msg}, nil
}

// buildContentParts renders text/image blocks as multimodal content parts,
// or as a bare string when there is exactly one text block.
func buildContentParts(blocks []canonical.Block) (json.RawMessage, error) {
	if len(blocks) == 1 {
		if t, ok := blocks[0].(canonical.TextBlock); ok {
			return rawString(t.Text), nil
		}
	}

	parts := make([]openaiapi.ContentPart, 0, len(blocks))
	for _, b := range blocks {
		switch v := b.(type) {
		case canonical.TextBlock:
			parts = append(parts, openaiapi.ContentPart{Type: "text", Text: v.Text})
		case canonical.ImageBlock:
			parts = append(parts, openaiapi.ContentPart{
				Type: "image_url",
				ImageURL: &openaiapi.ImageURL{
					URL: "data:" + v.MediaType + ";base64," + v.Base64Data,
				},
			})
		}
	}
	return json.Marshal(parts)
}

func buildTools(tools []canonical.ToolDef) []openaiapi.Tool {
	out := make([]openaiapi.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openaiapi.Tool{
			Type: "function",
			Function: openaiapi.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  stripURIFormat(t.InputSchema),
			},
		})
	}
	return out
}

// stripURIFormat recursively removes `"format":"uri"` annotations from a
// JSON Schema tree for upstream compatibility. The input
// map is not mutated; a new tree is returned.
func stripURIFormat(schema map[string]interface{}) map[string]interface{} {
	if schema == nil {
		return nil
	}
	out := make(map[string]interface{}, len(schema))
	for k, v := range schema {
		if k == "format" {
			if s, ok := v.(string); ok && s == "uri" {
				continue
			}
		}
		out[k] = stripURIFormatValue(v)
	}
	return out
}

func stripURIFormatValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return stripURIFormat(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = stripURIFormatValue(e)
		}
		return out
	default:
		return v
	}
}

func buildToolChoice(tc canonical.ToolChoice) interface{} {
	switch tc.Kind {
	case canonical.ToolChoiceTool:
		return map[string]interface{}{
			"type": "function",
			"function": map[string]string{
				"name": tc.Name,
			},
		}
	case canonical.ToolChoiceNone:
		return "none"
	default:
		return "auto"
	}
}

func rawString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
