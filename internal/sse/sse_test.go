package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeedSingleEvent(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: {\"a\":1}\n\n"))
	require.Len(t, events, 1)
	require.Equal(t, `{"a":1}`, events[0].Data)
}

func TestFeedAcrossChunkBoundary(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: {\"a\""))
	require.Empty(t, events)
	events = p.Feed([]byte(":1}\n\n"))
	require.Len(t, events, 1)
	require.Equal(t, `{"a":1}`, events[0].Data)
}

func TestFeedDoneSentinel(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: [DONE]\n\n"))
	require.Len(t, events, 1)
	require.True(t, IsDone(events[0].Data))
}

func TestFeedEventNameLine(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("event: message\ndata: {}\n\n"))
	require.Len(t, events, 1)
	require.Equal(t, "message", events[0].Name)
}

func TestFeedCommentLineIgnored(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte(": keep-alive\ndata: {}\n\n"))
	require.Len(t, events, 1)
}

func TestFeedMultipleEventsInOneChunk(t *testing.T) {
	p := NewParser()
	events := p.Feed([]byte("data: 1\n\ndata: 2\n\n"))
	require.Len(t, events, 2)
	require.Equal(t, "1", events[0].Data)
	require.Equal(t, "2", events[1].Data)
}

func TestFeedOverflowDiscardsOldestHalf(t *testing.T) {
	p := NewParser()
	junk := strings.Repeat("x", maxBufferBytes+100)
	_ = p.Feed([]byte(junk))
	require.True(t, p.Overflowed())
	require.LessOrEqual(t, len(p.buf), maxBufferBytes)
}
