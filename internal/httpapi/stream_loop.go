package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/elifarley/claudish/internal/openaiapi"
	"github.com/elifarley/claudish/internal/providererrors"
	"github.com/elifarley/claudish/internal/sse"
	"github.com/elifarley/claudish/internal/translator"
	"github.com/elifarley/claudish/internal/upstream"
)

// readChunkSize is the buffer size used to read off the upstream body; SSE
// framing does not depend on it, it only bounds how much is fed to the
// parser per Read call.
const readChunkSize = 4096

// runTranslation drains stream through the SSE parser, translating each
// chunk in order until [DONE] or EOF. Per-chunk JSON parse errors are
// logged and skipped, not fatal.
// Returns non-nil only for conditions that should abort the whole stream:
// client cancellation, the request deadline expiring, a transport-level
// read failure, or a translator invariant violation.
func runTranslation(ctx context.Context, tr *translator.Translator, stream *upstream.Stream, logger *slog.Logger) error {
	parser := sse.NewParser()
	buf := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return classifyContextError(err)
		}

		n, err := stream.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if sse.IsDone(ev.Data) {
					return nil
				}
				if handleErr := translateOneChunk(tr, ev.Data, logger); handleErr != nil {
					return handleErr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return classifyContextError(err)
			}
			return providererrors.Wrap(providererrors.KindConnectionError, "upstream stream read failed", err)
		}
	}
}

// classifyContextError distinguishes the request deadline expiring from the
// client disconnecting, so the Dispatcher can surface each correctly: a
// deadline lets an already-started stream end with stop_reason "max_tokens"
// (or maps to 504 before any bytes went out), while a cancellation tears
// everything down with no further writes at all.
func classifyContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return providererrors.Wrap(providererrors.KindDeadlineExceeded, "request deadline exceeded", err)
	}
	return providererrors.Wrap(providererrors.KindCanceled, "client disconnected", err)
}

func translateOneChunk(tr *translator.Translator, data string, logger *slog.Logger) error {
	var chunk openaiapi.ChunkResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		if logger != nil {
			logger.Warn("skipping malformed upstream SSE chunk", "error", err)
		}
		return nil
	}
	if err := tr.HandleChunk(&chunk); err != nil {
		return providererrors.Wrap(providererrors.KindTranslatorError, "translator invariant violated", err)
	}
	return nil
}
