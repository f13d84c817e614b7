package adapter

import (
	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// defaultAdapter is the identity transform; it always matches.
type defaultAdapter struct{}

func newDefaultAdapter() *defaultAdapter { return &defaultAdapter{} }

func (*defaultAdapter) ShouldHandle(string) bool { return true }

func (*defaultAdapter) PrepareRequest(*openaiapi.Request, *canonical.Request) {}

func (*defaultAdapter) ProcessTextContent(deltaText, _ string) (string, []ExtractedToolCall, bool) {
	return deltaText, nil, false
}

func (*defaultAdapter) Reset() {}
