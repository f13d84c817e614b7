package adapter

import (
	"encoding/json"
	"strings"

	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// minimaxAdapter handles the MiniMax family: when the
// canonical request asked for extended thinking, it is translated to the
// family's own reasoning_split flag instead of a thinking parameter OpenAI
// upstreams don't understand.
type minimaxAdapter struct{}

func newMiniMaxAdapter() *minimaxAdapter { return &minimaxAdapter{} }

func (*minimaxAdapter) ShouldHandle(modelID string) bool {
	return strings.Contains(strings.ToLower(modelID), "minimax")
}

func (*minimaxAdapter) PrepareRequest(payload *openaiapi.Request, req *canonical.Request) {
	if req.Thinking != nil {
		payload.ReasoningSplit = json.RawMessage("true")
	}
}

func (*minimaxAdapter) ProcessTextContent(deltaText, _ string) (string, []ExtractedToolCall, bool) {
	return deltaText, nil, false
}

func (*minimaxAdapter) Reset() {}
