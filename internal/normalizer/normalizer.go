// Package normalizer validates and canonicalizes an inbound request:
// it turns a decoded Anthropic wire request into the canonical request
// representation, reporting which unsupported parameters it dropped.
//
// Grounded on digitallysavvy-go-ai/pkg/providerutils/prompt/converter.go's
// ExtractSystemMessage/ToOpenAIMessages conversion style.
package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/elifarley/claudish/internal/anthropicapi"
	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/providererrors"
)

// Result is the output of Normalize: the canonical request plus the names
// of request parameters that were present but unsupported and dropped.
type Result struct {
	Request *canonical.Request
	Dropped []string
}

// Normalize converts a decoded Anthropic request into canonical form.
func Normalize(req *anthropicapi.Request) (*Result, error) {
	if req.Model == "" {
		return nil, providererrors.New(providererrors.KindInvalidRequest, "model: required")
	}
	if len(req.Messages) == 0 {
		return nil, providererrors.New(providererrors.KindInvalidRequest, "messages: must not be empty")
	}

	system, err := normalizeSystem(req.System)
	if err != nil {
		return nil, err
	}

	messages, err := normalizeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	tools, err := normalizeTools(req.Tools)
	if err != nil {
		return nil, err
	}

	toolChoice, err := normalizeToolChoice(req.ToolChoice)
	if err != nil {
		return nil, err
	}

	var dropped []string
	if req.TopK != nil {
		dropped = append(dropped, "top_k")
	}

	var thinking *canonical.Thinking
	if req.Thinking != nil {
		thinking = &canonical.Thinking{BudgetTokens: req.Thinking.BudgetTokens}
	}

	return &Result{
		Request: &canonical.Request{
			Model:       req.Model,
			System:      system,
			Messages:    messages,
			Tools:       tools,
			ToolChoice:  toolChoice,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			Stream:      req.Stream,
			Thinking:    thinking,
		},
		Dropped: dropped,
	}, nil
}

// normalizeSystem coerces the string-or-array system field.
func normalizeSystem(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []string{asString}, nil
	}

	var blocks []anthropicapi.SystemBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		out := make([]string, 0, len(blocks))
		for _, b := range blocks {
			if b.Type != "" && b.Type != "text" {
				return nil, providererrors.New(providererrors.KindInvalidRequest,
					fmt.Sprintf("system: unsupported block type %q", b.Type))
			}
			out = append(out, b.Text)
		}
		return out, nil
	}

	return nil, providererrors.New(providererrors.KindInvalidRequest, "system: must be a string or array of text blocks")
}

func normalizeMessages(wire []anthropicapi.WireMessage) ([]canonical.Turn, error) {
	turns := make([]canonical.Turn, 0, len(wire))
	for i, m := range wire {
		role, err := normalizeRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("messages[%d].role: %w", i, err)
		}

		blocks, err := normalizeContent(m.Content, role)
		if err != nil {
			return nil, fmt.Errorf("messages[%d].content: %w", i, err)
		}

		if role == canonical.RoleUser {
			blocks = dedupToolResults(blocks)
		} else {
			blocks = dedupToolUses(blocks)
		}

		turns = append(turns, canonical.Turn{Role: role, Content: blocks})
	}
	return turns, nil
}

func normalizeRole(role string) (canonical.Role, error) {
	switch role {
	case "user":
		return canonical.RoleUser, nil
	case "assistant":
		return canonical.RoleAssistant, nil
	default:
		return "", providererrors.New(providererrors.KindInvalidRequest, fmt.Sprintf("unsupported role %q", role))
	}
}

// normalizeContent coerces string-or-array message content.
func normalizeContent(raw json.RawMessage, role canonical.Role) ([]canonical.Block, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return []canonical.Block{canonical.TextBlock{Text: asString}}, nil
	}

	var wireBlocks []anthropicapi.WireContentBlock
	if err := json.Unmarshal(raw, &wireBlocks); err != nil {
		return nil, providererrors.New(providererrors.KindInvalidRequest, "content must be a string or array of blocks")
	}

	out := make([]canonical.Block, 0, len(wireBlocks))
	for i, wb := range wireBlocks {
		b, err := normalizeBlock(wb, role)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func normalizeBlock(wb anthropicapi.WireContentBlock, role canonical.Role) (canonical.Block, error) {
	switch wb.Type {
	case "text":
		return canonical.TextBlock{Text: wb.Text}, nil
	case "image":
		if wb.Source == nil {
			return nil, providererrors.New(providererrors.KindInvalidRequest, "image block missing source")
		}
		return canonical.ImageBlock{MediaType: wb.Source.MediaType, Base64Data: wb.Source.Data}, nil
	case "tool_use":
		if role != canonical.RoleAssistant {
			return nil, providererrors.New(providererrors.KindInvalidRequest, "tool_use only valid on assistant turns")
		}
		return canonical.ToolUseBlock{ID: wb.ID, Name: wb.Name, InputJSON: []byte(wb.Input)}, nil
	case "tool_result":
		if role != canonical.RoleUser {
			return nil, providererrors.New(providererrors.KindInvalidRequest, "tool_result only valid on user turns")
		}
		return normalizeToolResult(wb)
	default:
		return nil, providererrors.New(providererrors.KindInvalidRequest, fmt.Sprintf("unsupported block type %q", wb.Type))
	}
}

func normalizeToolResult(wb anthropicapi.WireContentBlock) (canonical.Block, error) {
	tr := canonical.ToolResultBlock{ToolUseID: wb.ToolUseID, IsError: wb.IsError}

	if len(wb.Content) == 0 {
		return tr, nil
	}

	var asString string
	if err := json.Unmarshal(wb.Content, &asString); err == nil {
		tr.ContentText = asString
		return tr, nil
	}

	tr.ContentIsJSON = true
	tr.ContentJSON = []byte(wb.Content)
	return tr, nil
}

// dedupToolResults discards duplicate tool_use_ids within a user turn,
// keeping the first occurrence.
func dedupToolResults(blocks []canonical.Block) []canonical.Block {
	seen := make(map[string]bool)
	out := make([]canonical.Block, 0, len(blocks))
	for _, b := range blocks {
		tr, ok := b.(canonical.ToolResultBlock)
		if !ok {
			out = append(out, b)
			continue
		}
		if seen[tr.ToolUseID] {
			continue
		}
		seen[tr.ToolUseID] = true
		out = append(out, b)
	}
	return out
}

// dedupToolUses discards duplicate tool_use ids within an assistant turn.
func dedupToolUses(blocks []canonical.Block) []canonical.Block {
	seen := make(map[string]bool)
	out := make([]canonical.Block, 0, len(blocks))
	for _, b := range blocks {
		tu, ok := b.(canonical.ToolUseBlock)
		if !ok {
			out = append(out, b)
			continue
		}
		if seen[tu.ID] {
			continue
		}
		seen[tu.ID] = true
		out = append(out, b)
	}
	return out
}

func normalizeTools(wire []anthropicapi.WireTool) ([]canonical.ToolDef, error) {
	if len(wire) == 0 {
		return nil, nil
	}
	out := make([]canonical.ToolDef, 0, len(wire))
	for _, t := range wire {
		out = append(out, canonical.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out, nil
}

func normalizeToolChoice(raw json.RawMessage) (*canonical.ToolChoice, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		switch asString {
		case "auto":
			return &canonical.ToolChoice{Kind: canonical.ToolChoiceAuto}, nil
		case "none":
			return &canonical.ToolChoice{Kind: canonical.ToolChoiceNone}, nil
		default:
			return nil, providererrors.New(providererrors.KindInvalidRequest, fmt.Sprintf("tool_choice: unsupported value %q", asString))
		}
	}

	var obj anthropicapi.WireToolChoiceObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, providererrors.New(providererrors.KindInvalidRequest, "tool_choice: malformed")
	}
	switch obj.Type {
	case "auto":
		return &canonical.ToolChoice{Kind: canonical.ToolChoiceAuto}, nil
	case "none":
		return &canonical.ToolChoice{Kind: canonical.ToolChoiceNone}, nil
	case "tool":
		if obj.Name == "" {
			return nil, providererrors.New(providererrors.KindInvalidRequest, "tool_choice: tool name required")
		}
		return &canonical.ToolChoice{Kind: canonical.ToolChoiceTool, Name: obj.Name}, nil
	default:
		return nil, providererrors.New(providererrors.KindInvalidRequest, fmt.Sprintf("tool_choice: unsupported type %q", obj.Type))
	}
}
