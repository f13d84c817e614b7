package adapter

import (
	"strings"

	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// xmlFamilySubstrings are model-id fragments known to emit tool calls as
// inline XML rather than native tool_calls deltas, independent of the
// Grok/x-ai family (which gets its own adapter below because it also needs
// the system-note injection). Not named explicitly in the distilled spec;
// chosen as representative open-weight families without native function
// calling in common OpenAI-compatible gateways (see DESIGN.md).
var xmlFamilySubstrings = []string{"glm", "qwen"}

// xmlToolAdapter is the generic XML-tool-extracting adapter.
type xmlToolAdapter struct {
	state xmlToolState
}

func newXMLToolAdapter() *xmlToolAdapter { return &xmlToolAdapter{} }

func (*xmlToolAdapter) ShouldHandle(modelID string) bool {
	lower := strings.ToLower(modelID)
	for _, s := range xmlFamilySubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func (*xmlToolAdapter) PrepareRequest(*openaiapi.Request, *canonical.Request) {}

func (a *xmlToolAdapter) ProcessTextContent(_, accumulated string) (string, []ExtractedToolCall, bool) {
	return a.state.process(accumulated)
}

func (a *xmlToolAdapter) Reset() {
	a.state.reset()
}
