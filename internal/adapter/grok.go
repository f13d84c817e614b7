package adapter

import (
	"encoding/json"
	"strings"

	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// grokToolCallNote is prepended as its own system message because Grok
// models otherwise tend to emit tool calls as inline XML rather than the
// native tool_calls delta shape.
const grokToolCallNote = "When you need to call a tool, use the provided function-calling interface (tool_calls); do not emit XML-style <function_calls> blocks."

// grokAdapter handles the Grok / x-ai family. It both steers the model
// toward native tool_calls via a system note and, since the steer is not
// always honored, extracts any XML tool calls that slip through anyway.
type grokAdapter struct {
	state xmlToolState
}

func newGrokAdapter() *grokAdapter { return &grokAdapter{} }

func (*grokAdapter) ShouldHandle(modelID string) bool {
	lower := strings.ToLower(modelID)
	return strings.Contains(lower, "grok") || strings.Contains(lower, "x-ai")
}

func (*grokAdapter) PrepareRequest(payload *openaiapi.Request, _ *canonical.Request) {
	note := openaiapi.Message{Role: "system", Content: mustMarshalString(grokToolCallNote)}
	payload.Messages = append([]openaiapi.Message{note}, payload.Messages...)
}

func (a *grokAdapter) ProcessTextContent(_, accumulated string) (string, []ExtractedToolCall, bool) {
	return a.state.process(accumulated)
}

func (a *grokAdapter) Reset() {
	a.state.reset()
}

func mustMarshalString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
