// Package upstream implements the upstream HTTP client: it POSTs
// an OpenAI chat-completions payload to a configured endpoint and exposes
// the response body as a byte stream, mapping transport/HTTP failures onto
// the gateway's error taxonomy.
//
// Grounded on digitallysavvy-go-ai/pkg/internal/http/client.go's
// Client/Config/DoStream shape, adapted to bearer auth and a fixed connect
// timeout dialer rather than a generic header bag.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elifarley/claudish/internal/openaiapi"
	"github.com/elifarley/claudish/internal/providererrors"
)

// connectTimeout bounds the TCP+TLS handshake only; once bytes start
// flowing, the Dispatcher's ping ticker and request deadline take over
// once the request body starts streaming back.
const connectTimeout = 10 * time.Second

// Target describes where and how to reach an OpenAI-compatible endpoint.
type Target struct {
	BaseURL     string
	APIPath     string
	BearerToken string
}

// Client issues streaming chat-completions requests against a Target.
type Client struct {
	http *http.Client
}

// New creates an upstream Client with a dialer bounded by connectTimeout.
func New() *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectTimeout,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			// No client-wide Timeout: the Dispatcher enforces the overall
			// request deadline via ctx, and streams must not be cut short
			// by read-idle timeouts.
		},
	}
}

// Stream is an open upstream response body; the caller must Close it.
type Stream struct {
	body io.ReadCloser
}

// Read satisfies io.Reader, delegating to the underlying response body.
func (s *Stream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Close releases the underlying connection, aborting the request promptly
// when the caller cancels mid-stream.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Post issues the chat-completions POST and returns the streaming body, or
// a *providererrors.GatewayError classifying the failure.
func (c *Client) Post(ctx context.Context, target Target, payload *openaiapi.Request) (*Stream, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providererrors.Wrap(providererrors.KindTranslatorError, "failed to encode upstream request", err)
	}

	url := target.BaseURL + target.APIPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providererrors.Wrap(providererrors.KindTranslatorError, "failed to build upstream request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+target.BearerToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(resp.Body)
		return nil, classifyHTTPError(resp.StatusCode, resp.Header, errBody)
	}

	return &Stream{body: resp.Body}, nil
}

// classifyTransportError maps a network-level failure onto connection_error
// context cancellation is reported as-is so callers can
// distinguish "client went away" from "upstream unreachable".
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return providererrors.Wrap(providererrors.KindConnectionError, "failed to reach upstream", err)
}

// classifyHTTPError maps a non-2xx upstream response onto the error
// taxonomy.
func classifyHTTPError(status int, headers http.Header, body []byte) error {
	bodyStr := strings.ToLower(string(body))

	switch {
	case status == 401 || status == 403:
		return providererrors.New(providererrors.KindAuthError, fmt.Sprintf("upstream rejected credentials (%d)", status))
	case status == 404 && strings.Contains(bodyStr, "model"):
		return providererrors.New(providererrors.KindModelNotFound, "upstream reports unknown model")
	case status == 400 && (strings.Contains(bodyStr, "tool") || strings.Contains(bodyStr, "not supported")):
		return providererrors.New(providererrors.KindCapabilityError, "upstream does not support a requested capability")
	case status == 429:
		ge := providererrors.New(providererrors.KindRateLimited, "upstream rate limit exceeded")
		ge.RetryAfter = headers.Get("Retry-After")
		return ge
	case status >= 500:
		return providererrors.New(providererrors.KindUpstreamError, fmt.Sprintf("upstream error (%d)", status))
	default:
		return providererrors.New(providererrors.KindUpstreamError, fmt.Sprintf("upstream returned %d: %s", status, string(body)))
	}
}
