package adapter

import (
	"testing"

	"github.com/elifarley/claudish/internal/canonical"
	"github.com/elifarley/claudish/internal/openaiapi"
	"github.com/stretchr/testify/require"
)

func TestRegistrySelectFirstMatch(t *testing.T) {
	r := NewRegistry()
	require.IsType(t, &minimaxAdapter{}, r.Select("minimax-m1"))
	require.IsType(t, &grokAdapter{}, r.Select("grok-4"))
	require.IsType(t, &xmlToolAdapter{}, r.Select("glm-4.5"))
	require.IsType(t, &defaultAdapter{}, r.Select("gpt-4o"))
}

func TestMiniMaxSetsReasoningSplit(t *testing.T) {
	a := newMiniMaxAdapter()
	payload := &openaiapi.Request{}
	req := &canonical.Request{Thinking: &canonical.Thinking{BudgetTokens: 1024}}
	a.PrepareRequest(payload, req)
	require.Equal(t, `true`, string(payload.ReasoningSplit))
}

func TestMiniMaxNoThinkingLeavesPayloadUntouched(t *testing.T) {
	a := newMiniMaxAdapter()
	payload := &openaiapi.Request{}
	a.PrepareRequest(payload, &canonical.Request{})
	require.Nil(t, payload.ReasoningSplit)
}

func TestGrokPrependsSystemNote(t *testing.T) {
	a := newGrokAdapter()
	payload := &openaiapi.Request{Messages: []openaiapi.Message{{Role: "user"}}}
	a.PrepareRequest(payload, &canonical.Request{})
	require.Len(t, payload.Messages, 2)
	require.Equal(t, "system", payload.Messages[0].Role)
}

func TestXMLExtractionSingleChunkRoundTrip(t *testing.T) {
	a := newXMLToolAdapter()
	text := "I'll run it.\n<function_calls>\n<invoke name=\"bash\">\n<parameter name=\"command\">ls</parameter>\n</invoke>\n</function_calls>\nDone."

	cleaned, extracted, transformed := a.ProcessTextContent(text, text)
	require.True(t, transformed)
	require.Equal(t, "I'll run it.\n", cleaned)
	require.Len(t, extracted, 1)
	require.Equal(t, "bash", extracted[0].Name)
	require.JSONEq(t, `{"command":"ls"}`, string(extracted[0].ArgsJSON))

	cleaned2, extracted2, transformed2 := a.ProcessTextContent("", text)
	require.False(t, transformed2)
	require.Empty(t, extracted2)
	require.Equal(t, "\nDone.", cleaned2)
}

func TestXMLExtractionWithholdsPartialTagAcrossChunks(t *testing.T) {
	a := newXMLToolAdapter()
	acc := "before <function_cal"
	cleaned, extracted, transformed := a.ProcessTextContent(acc, acc)
	require.Empty(t, extracted)
	require.False(t, transformed)
	require.Equal(t, "before ", cleaned)

	acc += "ls>\n<invoke name=\"x\"><parameter name=\"y\">1</parameter></invoke>\n</function_calls>after"
	cleaned2, extracted2, _ := a.ProcessTextContent(acc[len(acc)-40:], acc)
	require.NotEmpty(t, extracted2)
	require.Equal(t, "", cleaned2)

	cleaned3, extracted3, _ := a.ProcessTextContent("", acc)
	require.Empty(t, extracted3)
	require.Equal(t, "after", cleaned3)
}

func TestXMLExtractionNoTagPassesThrough(t *testing.T) {
	a := newXMLToolAdapter()
	cleaned, extracted, transformed := a.ProcessTextContent("just text", "just text")
	require.Equal(t, "just text", cleaned)
	require.Empty(t, extracted)
	require.False(t, transformed)
}

func TestDefaultAdapterPassthrough(t *testing.T) {
	a := newDefaultAdapter()
	cleaned, extracted, transformed := a.ProcessTextContent("hi", "hi")
	require.Equal(t, "hi", cleaned)
	require.Empty(t, extracted)
	require.False(t, transformed)
}
