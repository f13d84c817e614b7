// Package httpapi implements the HTTP dispatcher: it routes
// POST /v1/messages and GET /health, resolves the request's model to an
// upstream target, and drives the Stream Translator or Non-streaming
// Assembler depending on body.stream.
//
// Grounded on the chi router + middleware.Logger/Recoverer/Timeout pattern
// digitallysavvy-go-ai demonstrates in its chi-server example, and on
// go-chi/cors for permissive local-client CORS.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/elifarley/claudish/internal/adapter"
	"github.com/elifarley/claudish/internal/anthropicapi"
	"github.com/elifarley/claudish/internal/assembler"
	"github.com/elifarley/claudish/internal/normalizer"
	"github.com/elifarley/claudish/internal/providererrors"
	"github.com/elifarley/claudish/internal/reqbuilder"
	"github.com/elifarley/claudish/internal/telemetry"
	"github.com/elifarley/claudish/internal/translator"
	"github.com/elifarley/claudish/internal/upstream"
)

// defaultRequestDeadline bounds the total lifetime of one request when the
// client supplies no deadline of its own.
const defaultRequestDeadline = 300 * time.Second

// pingInterval is the Dispatcher's own keep-alive cadence.
const pingInterval = 1 * time.Second

// Dispatcher is the HTTP entrypoint of the gateway.
type Dispatcher struct {
	resolver        Resolver
	logger          *slog.Logger
	upstream        *upstream.Client
	adapters        *adapter.Registry
	telemetry       *telemetry.Settings
	requestDeadline time.Duration
}

// New creates a Dispatcher. resolver must be non-nil; it is the only way
// the Dispatcher learns where to send a given model id.
func New(resolver Resolver, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		resolver:        resolver,
		logger:          logger,
		upstream:        upstream.New(),
		adapters:        adapter.NewRegistry(),
		telemetry:       telemetry.DefaultSettings(),
		requestDeadline: defaultRequestDeadline,
	}
}

// Routes builds the chi router exposing POST /v1/messages and GET /health.
func (d *Dispatcher) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(d.accessLogMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "anthropic-version", "anthropic-beta", "Authorization"},
		AllowCredentials: false,
	}))

	r.Get("/health", d.handleHealth)
	r.Post("/v1/messages", d.handleMessages)
	return r
}

func (d *Dispatcher) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// accessLogMiddleware emits one structured log line per request with
// request id, method, path, status, and duration.
func (d *Dispatcher) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		d.logger.Info("access",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (d *Dispatcher) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	if r.Header.Get("anthropic-version") == "" {
		writeError(w, providererrors.New(providererrors.KindInvalidRequest, "anthropic-version header is required"))
		return
	}

	var wireReq anthropicapi.Request
	if err := json.NewDecoder(r.Body).Decode(&wireReq); err != nil {
		writeError(w, providererrors.New(providererrors.KindInvalidRequest, "malformed JSON body"))
		return
	}

	norm, err := normalizer.Normalize(&wireReq)
	if err != nil {
		writeError(w, err)
		return
	}

	resolution, ok := d.resolver(norm.Request.Model)
	if !ok {
		writeError(w, providererrors.New(providererrors.KindModelNotFound, "unknown model: "+norm.Request.Model))
		return
	}

	if len(norm.Request.Tools) > 0 && !resolution.Capabilities.SupportsTools {
		d.logger.Warn("stripping tools: target does not support them", "model", norm.Request.Model)
		norm.Request.Tools = nil
		norm.Request.ToolChoice = nil
		norm.Dropped = append(norm.Dropped, "tools")
	}

	payload, err := reqbuilder.Build(norm.Request)
	if err != nil {
		writeError(w, err)
		return
	}

	ad := d.adapters.Select(norm.Request.Model)
	ad.Reset()
	ad.PrepareRequest(payload, norm.Request)
	payload.Stream = true // always stream upstream, even for a JSON response

	ctx, reqSpan := telemetry.StartRequestSpan(ctx, d.telemetry, norm.Request.Model, norm.Request.Stream)
	defer reqSpan.End()

	upstreamCtx, upstreamSpan := telemetry.StartUpstreamSpan(ctx, d.telemetry)
	stream, err := d.upstream.Post(upstreamCtx, upstream.Target{
		BaseURL:     resolution.BaseURL,
		APIPath:     resolution.APIPath,
		BearerToken: resolution.BearerToken,
	}, payload)
	upstreamSpan.End()
	if err != nil {
		telemetry.RecordError(reqSpan, err)
		writeError(w, err)
		return
	}
	defer stream.Close()

	if len(norm.Dropped) > 0 {
		w.Header().Set("X-Dropped-Params", strings.Join(norm.Dropped, ", "))
	}

	messageID := "msg_" + uuid.NewString()

	if norm.Request.Stream {
		d.serveStreaming(ctx, w, stream, ad, messageID, norm.Request.Model, reqSpan)
		return
	}
	d.serveNonStreaming(ctx, w, stream, ad, messageID, norm.Request.Model)
}

func (d *Dispatcher) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d.requestDeadline)
}

func writeError(w http.ResponseWriter, err error) {
	ge, _ := providererrors.As(err)
	if ge == nil {
		ge = providererrors.Wrap(providererrors.KindUpstreamError, "unexpected error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if ge.RetryAfter != "" {
		w.Header().Set("Retry-After", ge.RetryAfter)
	}
	w.WriteHeader(ge.Kind.StatusCode())
	body := anthropicapi.NewError(string(ge.Kind), ge.Message)
	json.NewEncoder(w).Encode(body)
}

// serveNonStreaming drains the upstream stream into an Assembler and
// writes a single AnthropicResponse body.
func (d *Dispatcher) serveNonStreaming(ctx context.Context, w http.ResponseWriter, stream *upstream.Stream, ad adapter.Adapter, messageID, model string) {
	asm := assembler.New(d.logger, messageID, model)
	tr := translator.New(asm, ad, messageID, model)
	tr.Start()

	streamCtx, streamSpan := telemetry.StartStreamSpan(ctx, d.telemetry)
	err := runTranslation(streamCtx, tr, stream, d.logger)
	if err != nil {
		telemetry.RecordError(streamSpan, err)
	}
	streamSpan.End()
	if err != nil {
		if providererrors.KindOf(err) == providererrors.KindCanceled {
			// Client already disconnected; nothing to write back.
			return
		}
		writeError(w, err)
		return
	}
	tr.Terminate()

	resp := asm.Response()
	resp.Usage.InputTokens = tr.Usage().InputTokens
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// serveStreaming drives the translator directly against the response
// writer, with a 1s keep-alive ticker.
func (d *Dispatcher) serveStreaming(ctx context.Context, w http.ResponseWriter, stream *upstream.Stream, ad adapter.Adapter, messageID, model string, reqSpan trace.Span) {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := newSSESink(w)
	tr := translator.New(sink, ad, messageID, model)

	if err := tr.Start(); err != nil {
		return
	}

	done := make(chan struct{})
	go d.pingTicker(sink, done)
	defer close(done)

	streamCtx, streamSpan := telemetry.StartStreamSpan(ctx, d.telemetry)
	err := runTranslation(streamCtx, tr, stream, d.logger)
	if err != nil {
		telemetry.RecordError(streamSpan, err)
	}
	streamSpan.End()
	if err != nil {
		telemetry.RecordError(reqSpan, err)
		switch providererrors.KindOf(err) {
		case providererrors.KindCanceled:
			// Client disconnected: tear down, no further events at all.
			return
		case providererrors.KindDeadlineExceeded:
			// message_start (and the 200 status) already went out; end the
			// stream cleanly instead of surfacing an HTTP-level error.
			tr.TerminateTimedOut()
			sink.writeDone()
			return
		default:
			ge, _ := providererrors.As(err)
			errType, msg := string(providererrors.KindUpstreamError), "internal error"
			if ge != nil {
				errType, msg = string(ge.Kind), ge.Message
			}
			tr.Fail(errType, msg)
			return
		}
	}

	tr.Terminate()
	sink.writeDone()
}

func (d *Dispatcher) pingTicker(sink *sseSink, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			sink.Emit(anthropicapi.EventPing, anthropicapi.PingEvent{Type: anthropicapi.EventPing})
		}
	}
}
