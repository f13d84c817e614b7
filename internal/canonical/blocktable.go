package canonical

import "fmt"

// ToolBlock tracks one in-flight Anthropic tool_use content block, keyed
// in BlockTable by the upstream's own tool-call index.
type ToolBlock struct {
	AnthropicIndex int
	ToolID         string
	ToolName       string
	Started        bool
	Closed         bool
	ArgBytes       []byte
}

// BlockTable is the translator-scoped block-indexing state machine: it
// owns the monotonic block-index counter, tracks at most one open text
// block and one open reasoning block, and maps upstream tool-call indices
// to ToolBlock entries. A BlockTable is owned by exactly one Translator
// for the lifetime of a single request — no locking needed.
type BlockTable struct {
	nextIndex int

	textIdx  int
	textOpen bool

	reasoningIdx  int
	reasoningOpen bool

	// tools is keyed by the upstream tool-call index (the arena of §9:
	// the map holds small integer keys, not pointers).
	tools map[int]*ToolBlock
	// toolOrder preserves the order blocks were opened, for deterministic
	// close-out at stream end.
	toolOrder []int
}

// NewBlockTable creates an empty BlockTable with next_index starting at 0.
func NewBlockTable() *BlockTable {
	return &BlockTable{
		tools: make(map[int]*ToolBlock),
	}
}

// allocIndex returns the next block index and advances the counter.
func (t *BlockTable) allocIndex() int {
	i := t.nextIndex
	t.nextIndex++
	return i
}

// TextOpen reports whether a text block is currently open, and its index.
func (t *BlockTable) TextOpen() (int, bool) {
	return t.textIdx, t.textOpen
}

// OpenText allocates and marks a new text block open, returning its index.
// Caller must ensure no text block is already open.
func (t *BlockTable) OpenText() int {
	t.textIdx = t.allocIndex()
	t.textOpen = true
	return t.textIdx
}

// CloseText marks the open text block closed.
func (t *BlockTable) CloseText() {
	t.textOpen = false
}

// ReasoningOpen reports whether a reasoning block is currently open, and its index.
func (t *BlockTable) ReasoningOpen() (int, bool) {
	return t.reasoningIdx, t.reasoningOpen
}

// OpenReasoning allocates and marks a new reasoning block open.
func (t *BlockTable) OpenReasoning() int {
	t.reasoningIdx = t.allocIndex()
	t.reasoningOpen = true
	return t.reasoningIdx
}

// CloseReasoning marks the open reasoning block closed.
func (t *BlockTable) CloseReasoning() {
	t.reasoningOpen = false
}

// ToolByUpstreamIndex looks up a tool block by the upstream's tool-call index.
func (t *BlockTable) ToolByUpstreamIndex(upstreamIdx int) (*ToolBlock, bool) {
	tb, ok := t.tools[upstreamIdx]
	return tb, ok
}

// OpenTool allocates a new Anthropic block index for a tool call first seen
// at the given upstream index, with the given id and name.
func (t *BlockTable) OpenTool(upstreamIdx int, id, name string) *ToolBlock {
	tb := &ToolBlock{
		AnthropicIndex: t.allocIndex(),
		ToolID:         id,
		ToolName:       name,
		Started:        true,
	}
	t.tools[upstreamIdx] = tb
	t.toolOrder = append(t.toolOrder, upstreamIdx)
	return tb
}

// AppendToolArgs appends raw argument bytes to a tool block's accumulator.
func (tb *ToolBlock) AppendToolArgs(b []byte) {
	tb.ArgBytes = append(tb.ArgBytes, b...)
}

// OpenToolIndices returns upstream indices of tools in the order they were opened.
func (t *BlockTable) OpenToolIndices() []int {
	return t.toolOrder
}

// Close marks a tool block closed.
func (tb *ToolBlock) Close() {
	tb.Closed = true
}

// AllOpenIndices returns the Anthropic block indices of every block that is
// currently open (text, reasoning, and any not-yet-closed tool blocks), in
// the order they should be closed: reasoning, then text, then tools in
// open-order. This mirrors the natural nesting an upstream chunk stream
// produces — reasoning always precedes text within a turn, and tool blocks
// are opened only after any preceding text/reasoning block was stopped.
func (t *BlockTable) AllOpenIndices() []int {
	var out []int
	if t.reasoningOpen {
		out = append(out, t.reasoningIdx)
	}
	if t.textOpen {
		out = append(out, t.textIdx)
	}
	for _, upstreamIdx := range t.toolOrder {
		tb := t.tools[upstreamIdx]
		if tb != nil && tb.Started && !tb.Closed {
			out = append(out, tb.AnthropicIndex)
		}
	}
	return out
}

// NextIndex exposes the counter for diagnostics/tests.
func (t *BlockTable) NextIndex() int {
	return t.nextIndex
}

// Validate is a best-effort internal consistency check used by tests and by
// the translator_error path when an invariant is violated.
func (t *BlockTable) Validate() error {
	if t.textOpen && t.textIdx >= t.nextIndex {
		return fmt.Errorf("text block index %d out of range", t.textIdx)
	}
	if t.reasoningOpen && t.reasoningIdx >= t.nextIndex {
		return fmt.Errorf("reasoning block index %d out of range", t.reasoningIdx)
	}
	return nil
}
