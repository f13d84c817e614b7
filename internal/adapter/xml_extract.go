package adapter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	functionCallsOpenTag  = "<function_calls>"
	functionCallsCloseTag = "</function_calls>"
)

var (
	reInvoke    = regexp.MustCompile(`(?s)<invoke name="([^"]*)">(.*?)</invoke>`)
	reParameter = regexp.MustCompile(`(?s)<parameter name="([^"]*)">(.*?)</parameter>`)
)

// xmlToolState is the streaming-safe cursor shared by adapters that extract
// XML-embedded tool calls from upstream text. resolvedUpTo
// indexes into the accumulated text seen so far; text before it has
// already been handed back to the caller (as plain text or consumed into
// an extracted tool call) and must not be re-emitted.
type xmlToolState struct {
	resolvedUpTo int
}

func (s *xmlToolState) reset() {
	s.resolvedUpTo = 0
}

// process implements one step of the extraction: it looks for the next
// complete <function_calls>...</function_calls> block in the unresolved
// suffix of accumulated. Callers should call repeatedly (same accumulated
// string, growing over time) until extracted is empty, to drain any text
// left over after a block.
func (s *xmlToolState) process(accumulated string) (cleaned string, extracted []ExtractedToolCall, transformed bool) {
	if s.resolvedUpTo > len(accumulated) {
		s.resolvedUpTo = len(accumulated)
	}
	unresolved := accumulated[s.resolvedUpTo:]

	openIdx := strings.Index(unresolved, functionCallsOpenTag)
	if openIdx == -1 {
		holdback := partialSuffixLen(unresolved, functionCallsOpenTag)
		emit := unresolved[:len(unresolved)-holdback]
		s.resolvedUpTo += len(emit)
		return emit, nil, false
	}

	pre := unresolved[:openIdx]
	rest := unresolved[openIdx:]
	closeIdx := strings.Index(rest, functionCallsCloseTag)
	if closeIdx == -1 {
		// Incomplete block: emit only the text before it, withhold the rest.
		s.resolvedUpTo += len(pre)
		return pre, nil, pre != ""
	}

	blockEnd := closeIdx + len(functionCallsCloseTag)
	block := rest[:blockEnd]
	s.resolvedUpTo += openIdx + blockEnd

	calls, err := parseFunctionCallsBlock(block)
	if err != nil || len(calls) == 0 {
		// Malformed block: surface the raw text untouched.
		return pre + block, nil, false
	}

	return pre, calls, true
}

// partialSuffixLen returns the length of the longest suffix of s that is
// also a strict prefix of tag, so a tag split across a chunk boundary is
// never emitted half-written.
func partialSuffixLen(s, tag string) int {
	maxLen := len(tag) - 1
	if maxLen > len(s) {
		maxLen = len(s)
	}
	for l := maxLen; l >= 1; l-- {
		if strings.HasSuffix(s, tag[:l]) {
			return l
		}
	}
	return 0
}

// parseFunctionCallsBlock parses a complete <function_calls>...</function_calls>
// block into one ExtractedToolCall per <invoke> element.
func parseFunctionCallsBlock(block string) ([]ExtractedToolCall, error) {
	matches := reInvoke.FindAllStringSubmatch(block, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no <invoke> elements found")
	}

	out := make([]ExtractedToolCall, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if name == "" {
			return nil, fmt.Errorf("invoke missing name attribute")
		}
		args := map[string]string{}
		for _, p := range reParameter.FindAllStringSubmatch(m[2], -1) {
			args[p[1]] = p[2]
		}
		argsJSON, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		out = append(out, ExtractedToolCall{Name: name, ArgsJSON: argsJSON})
	}
	return out, nil
}
