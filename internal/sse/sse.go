// Package sse implements an incremental Server-Sent Events parser: it turns
// arbitrary byte chunks from an upstream stream into a lazy sequence of
// framed (event, data) objects.
//
// Grounded on digitallysavvy-go-ai/pkg/providerutils/streaming/sse.go, but
// reworked from a bufio.Scanner-over-io.Reader shape into an incremental
// Feed(chunk) shape so the overflow policy below can be
// enforced on our own buffer rather than relying on bufio's line limits.
package sse

import "strings"

// maxBufferBytes is the hard cap on the line-accumulating buffer.
const maxBufferBytes = 64 * 1024

// DoneSentinel is the payload value of a `data: [DONE]` line.
const DoneSentinel = "[DONE]"

// Event is one parsed (event-name, data) pair. Name is "" when the
// upstream sent no `event:` line.
type Event struct {
	Name string
	Data string
}

// Parser accumulates byte chunks and yields framed events.
type Parser struct {
	buf        []byte
	eventName  string
	dataLines  []string
	overflowed bool
}

// NewParser creates an empty Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends a chunk of upstream bytes and returns every event that
// became complete as a result (zero or more).
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)
	p.enforceCap()

	var events []Event
	for {
		idx := indexByte(p.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(p.buf[:idx])
		p.buf = p.buf[idx+1:]
		line = strings.TrimSuffix(line, "\r")

		if ev, ok := p.consumeLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// consumeLine processes one complete line, returning a completed event if
// the line was a blank line that closed out an accumulated one.
func (p *Parser) consumeLine(line string) (Event, bool) {
	if line == "" {
		if len(p.dataLines) == 0 && p.eventName == "" {
			return Event{}, false
		}
		ev := Event{Name: p.eventName, Data: strings.Join(p.dataLines, "\n")}
		p.eventName = ""
		p.dataLines = nil
		return ev, true
	}

	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	colon := strings.IndexByte(line, ':')
	var field, value string
	if colon < 0 {
		field = line
	} else {
		field = line[:colon]
		value = strings.TrimPrefix(line[colon+1:], " ")
	}

	switch field {
	case "event":
		p.eventName = value
	case "data":
		p.dataLines = append(p.dataLines, value)
	}
	return Event{}, false
}

// enforceCap discards the oldest half of the buffer on overflow, per
// prevents unbounded growth from unframed/malicious data.
// A discard necessarily drops any in-flight event accumulator too, since
// the discarded bytes may contain part of it.
func (p *Parser) enforceCap() {
	if len(p.buf) <= maxBufferBytes {
		return
	}
	half := len(p.buf) / 2
	p.buf = append([]byte(nil), p.buf[half:]...)
	p.eventName = ""
	p.dataLines = nil
	p.overflowed = true
}

// Overflowed reports whether the buffer cap was ever exceeded.
func (p *Parser) Overflowed() bool {
	return p.overflowed
}

// IsDone reports whether an event's data is the upstream's terminal marker.
func IsDone(data string) bool {
	return data == "[DONE]"
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
