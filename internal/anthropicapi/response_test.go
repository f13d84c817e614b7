package anthropicapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentBlockDeltaEventRoundTrip(t *testing.T) {
	ev := ContentBlockDeltaEvent{
		Type:  "content_block_delta",
		Index: 2,
		Delta: Delta{Type: DeltaTypeInputJSON, PartialJSON: `{"a":1}`},
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var out ContentBlockDeltaEvent
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, ev, out)
}

func TestNewErrorShape(t *testing.T) {
	e := NewError("invalid_request_error", "missing model")
	require.Equal(t, "error", e.Type)
	require.Equal(t, "invalid_request_error", e.Error.Type)
	require.Equal(t, "missing model", e.Error.Message)
}

func TestMessageStartEventSerializesNilStopReasonAsNull(t *testing.T) {
	ev := MessageStartEvent{
		Type: EventMessageStart,
		Message: MessageStartMsg{
			ID:      "msg_1",
			Type:    "message",
			Role:    "assistant",
			Model:   "claude-sonnet",
			Content: []ContentBlock{},
		},
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	require.Contains(t, string(b), `"content":[]`)
	require.Contains(t, string(b), `"stop_reason":null`)
}
