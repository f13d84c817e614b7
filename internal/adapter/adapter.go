// Package adapter implements a model-family adapter registry: a
// first-match linear scan over per-model-family hooks that customize the
// outbound OpenAI payload and post-process upstream text deltas.
//
// Grounded on the dispatch shape of digitallysavvy-go-ai/pkg/registry/registry.go
// (a lookup keyed by model id, built once at startup), re-expressed per
// this is a list of (predicate, adapter) pairs rather than a map,
package adapter

import (
	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
)

// ExtractedToolCall is a tool invocation synthesized by an adapter from
// upstream text content (e.g. an XML-embedded function call) rather than
// a native OpenAI tool_calls delta.
type ExtractedToolCall struct {
	Name     string
	ArgsJSON []byte
}

// Adapter is the per-model-family capability set.
type Adapter interface {
	// ShouldHandle reports whether this adapter owns the given model id.
	ShouldHandle(modelID string) bool

	// PrepareRequest customizes the outbound OpenAI payload in place,
	// given the canonical request it was built from.
	PrepareRequest(payload *openaiapi.Request, req *canonical.Request)

	// ProcessTextContent inspects accumulated text content of the current
	// text run and returns the portion safe to emit now, any tool calls
	// it extracted, and whether it transformed the content at all. It may
	// be called more than once per upstream delta: each call resumes from
	// where the previous one left off in accumulated, so a caller should
	// keep calling (with the same accumulated string) until it returns no
	// extracted calls, to drain any text left over after an extraction.
	ProcessTextContent(deltaText, accumulated string) (cleaned string, extracted []ExtractedToolCall, transformed bool)

	// Reset clears any per-stream state. Called when a new request begins.
	Reset()
}

// Registry holds the ordered list of adapters consulted per request.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds the default registry: MiniMax, Grok/x-ai,
// a generic XML-tool-extracting family, and the Default adapter last.
func NewRegistry() *Registry {
	return &Registry{
		adapters: []Adapter{
			newMiniMaxAdapter(),
			newGrokAdapter(),
			newXMLToolAdapter(),
			newDefaultAdapter(),
		},
	}
}

// Select returns the first adapter whose ShouldHandle matches modelID. The
// Default adapter always matches, so Select never returns nil.
func (r *Registry) Select(modelID string) Adapter {
	for _, a := range r.adapters {
		if a.ShouldHandle(modelID) {
			return a
		}
	}
	// unreachable: Default always matches, kept as a defensive fallback.
	return newDefaultAdapter()
}
