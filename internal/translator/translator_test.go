package translator

import (
	"testing"

	"github.com/elifarley/claudish/internal/adapter"
	"github.com/elifarley/claudish/internal/anthropicapi"
	"github.com/elifarley/claudish/internal/openaiapi"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	name    string
	payload interface{}
}

type fakeSink struct {
	events []recordedEvent
}

func (f *fakeSink) Emit(name string, payload interface{}) error {
	f.events = append(f.events, recordedEvent{name: name, payload: payload})
	return nil
}

func (f *fakeSink) names() []string {
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.name
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestScenarioS1SimpleTextReply(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("gpt-4o"), "msg_1", "gpt-4o")
	require.NoError(t, tr.Start())

	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{Content: strPtr("He")}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{Content: strPtr("llo")}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{}, FinishReason: strPtr("stop")}},
		Usage:   &openaiapi.Usage{PromptTokens: 5, CompletionTokens: 2},
	}))
	require.NoError(t, tr.Terminate())

	require.Equal(t, []string{
		anthropicapi.EventMessageStart,
		anthropicapi.EventPing,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventMessageDelta,
		anthropicapi.EventMessageStop,
	}, sink.names())

	delta := sink.events[6].payload.(anthropicapi.MessageDeltaEvent)
	require.Equal(t, anthropicapi.StopReasonEndTurn, delta.Delta.StopReason)
	require.Equal(t, 2, delta.Usage.OutputTokens)
}

func TestScenarioS2ToolCallStreaming(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("gpt-4o"), "msg_1", "gpt-4o")
	require.NoError(t, tr.Start())

	idx := 0
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{ToolCalls: []openaiapi.ToolCall{
			{Index: &idx, ID: "call_42", Type: "function", Function: openaiapi.ToolCallFunc{Name: "get_weather"}},
		}}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{ToolCalls: []openaiapi.ToolCall{
			{Index: &idx, Function: openaiapi.ToolCallFunc{Arguments: `{"loc`}},
		}}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{ToolCalls: []openaiapi.ToolCall{
			{Index: &idx, Function: openaiapi.ToolCallFunc{Arguments: `ation":"Paris"}`}},
		}}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{}, FinishReason: strPtr("tool_calls")}},
	}))
	require.NoError(t, tr.Terminate())

	require.Equal(t, []string{
		anthropicapi.EventMessageStart,
		anthropicapi.EventPing,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventMessageDelta,
		anthropicapi.EventMessageStop,
	}, sink.names())

	start := sink.events[2].payload.(anthropicapi.ContentBlockStartEvent)
	require.Equal(t, 0, start.Index)
	require.Equal(t, "call_42", start.ContentBlock.ID)
	require.Equal(t, "get_weather", start.ContentBlock.Name)

	d1 := sink.events[3].payload.(anthropicapi.ContentBlockDeltaEvent)
	d2 := sink.events[4].payload.(anthropicapi.ContentBlockDeltaEvent)
	require.JSONEq(t, `{"location":"Paris"}`, d1.Delta.PartialJSON+d2.Delta.PartialJSON)

	delta := sink.events[6].payload.(anthropicapi.MessageDeltaEvent)
	require.Equal(t, anthropicapi.StopReasonToolUse, delta.Delta.StopReason)
}

func TestScenarioS3MixedTextThenTool(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("gpt-4o"), "msg_1", "gpt-4o")
	require.NoError(t, tr.Start())

	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{Content: strPtr("Looking up... ")}}},
	}))
	idx := 0
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{ToolCalls: []openaiapi.ToolCall{
			{Index: &idx, ID: "call_1", Function: openaiapi.ToolCallFunc{Name: "search"}},
		}}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{}, FinishReason: strPtr("tool_calls")}},
	}))
	require.NoError(t, tr.Terminate())

	textStart := sink.events[2].payload.(anthropicapi.ContentBlockStartEvent)
	require.Equal(t, 0, textStart.Index)

	toolStart := sink.events[5].payload.(anthropicapi.ContentBlockStartEvent)
	require.Equal(t, 1, toolStart.Index)
}

func TestScenarioS6XMLToolExtraction(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("glm-4.5"), "msg_1", "glm-4.5")
	require.NoError(t, tr.Start())

	text := "I'll run it.\n<function_calls>\n<invoke name=\"bash\">\n<parameter name=\"command\">ls</parameter>\n</invoke>\n</function_calls>\nDone."
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{Content: &text}}},
	}))
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{}, FinishReason: strPtr("stop")}},
	}))
	require.NoError(t, tr.Terminate())

	require.Equal(t, []string{
		anthropicapi.EventMessageStart,
		anthropicapi.EventPing,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventMessageDelta,
		anthropicapi.EventMessageStop,
	}, sink.names())

	firstText := sink.events[3].payload.(anthropicapi.ContentBlockDeltaEvent)
	require.Equal(t, "I'll run it.\n", firstText.Delta.Text)

	toolStart := sink.events[5].payload.(anthropicapi.ContentBlockStartEvent)
	require.Equal(t, "bash", toolStart.ContentBlock.Name)
	toolDelta := sink.events[6].payload.(anthropicapi.ContentBlockDeltaEvent)
	require.JSONEq(t, `{"command":"ls"}`, toolDelta.Delta.PartialJSON)

	lastText := sink.events[9].payload.(anthropicapi.ContentBlockDeltaEvent)
	require.Equal(t, "\nDone.", lastText.Delta.Text)
}

func TestMessageStartCarriesInputTokensOnly(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("gpt-4o"), "msg_1", "gpt-4o")
	require.NoError(t, tr.Start())
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{}, FinishReason: strPtr("stop")}},
		Usage:   &openaiapi.Usage{PromptTokens: 7, CompletionTokens: 0},
	}))
	require.NoError(t, tr.Terminate())

	start := sink.events[0].payload.(anthropicapi.MessageStartEvent)
	require.Equal(t, 0, start.Message.Usage.InputTokens, "message_start carries a placeholder usage, refined by message_delta at the end")

	delta := sink.events[len(sink.events)-2].payload.(anthropicapi.MessageDeltaEvent)
	require.Equal(t, 0, delta.Usage.OutputTokens)
}

func TestTerminateTimedOutForcesMaxTokensAndClosesOpenBlocks(t *testing.T) {
	sink := &fakeSink{}
	tr := New(sink, adapter.NewRegistry().Select("gpt-4o"), "msg_1", "gpt-4o")
	require.NoError(t, tr.Start())
	require.NoError(t, tr.HandleChunk(&openaiapi.ChunkResponse{
		Choices: []openaiapi.Choice{{Delta: openaiapi.Delta{Content: strPtr("partial")}}},
	}))

	require.NoError(t, tr.TerminateTimedOut())

	require.Equal(t, []string{
		anthropicapi.EventMessageStart,
		anthropicapi.EventPing,
		anthropicapi.EventContentBlockStart,
		anthropicapi.EventContentBlockDelta,
		anthropicapi.EventContentBlockStop,
		anthropicapi.EventMessageDelta,
		anthropicapi.EventMessageStop,
	}, sink.names())

	delta := sink.events[5].payload.(anthropicapi.MessageDeltaEvent)
	require.Equal(t, anthropicapi.StopReasonMaxTokens, delta.Delta.StopReason)
}
