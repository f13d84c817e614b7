package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// sseSink writes Anthropic SSE event frames directly to the response
// writer, guarded by a mutex so ping events from the Dispatcher's ticker
// never interleave mid-frame with translator-driven writes.
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSESink(w http.ResponseWriter) *sseSink {
	flusher, _ := w.(http.Flusher)
	return &sseSink{w: w, flusher: flusher}
}

// Emit implements translator.Sink.
func (s *sseSink) Emit(eventName string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventName, b); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// writeDone writes the optional terminal [DONE] marker: no stray blank
// lines beyond the one frame terminator.
func (s *sseSink) writeDone() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "data: [DONE]\n\n")
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return err
}
