package openaiapi

import "github.com/elifarley/claudish/internal/anthropicapi"

// MapFinishReason translates an upstream finish_reason into the Anthropic
// stop_reason vocabulary, grounded on
// digitallysavvy-go-ai/pkg/providerutils/finish_reason.go).
func MapFinishReason(reason string) string {
	switch reason {
	case FinishReasonToolCalls, "function_call":
		return anthropicapi.StopReasonToolUse
	case FinishReasonStop, "end_turn":
		return anthropicapi.StopReasonEndTurn
	case FinishReasonLength:
		return anthropicapi.StopReasonMaxTokens
	case FinishReasonContentFilter:
		return anthropicapi.StopReasonStopSequence
	default:
		return anthropicapi.StopReasonEndTurn
	}
}
