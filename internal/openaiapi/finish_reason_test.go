package openaiapi

import (
	"testing"

	"github.com/elifarley/claudish/internal/anthropicapi"
	"github.com/stretchr/testify/require"
)

func TestMapFinishReason(t *testing.T) {
	cases := map[string]string{
		FinishReasonStop:          anthropicapi.StopReasonEndTurn,
		"end_turn":                anthropicapi.StopReasonEndTurn,
		FinishReasonLength:        anthropicapi.StopReasonMaxTokens,
		FinishReasonToolCalls:     anthropicapi.StopReasonToolUse,
		"function_call":           anthropicapi.StopReasonToolUse,
		FinishReasonContentFilter: anthropicapi.StopReasonStopSequence,
		"unknown_value":           anthropicapi.StopReasonEndTurn,
	}
	for in, want := range cases {
		require.Equal(t, want, MapFinishReason(in), in)
	}
}
