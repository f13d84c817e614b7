package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeResolver(baseURL string) Resolver {
	return func(modelID string) (*Resolution, bool) {
		if modelID == "unknown-model" {
			return nil, false
		}
		return &Resolution{
			HandlerKind: HandlerOpenAICompat,
			BaseURL:     baseURL,
			APIPath:     "/v1/chat/completions",
			BearerToken: "sk-test",
			Capabilities: Capabilities{
				SupportsTools:     true,
				SupportsStreaming: true,
			},
		}, true
	}
}

func TestHealthEndpoint(t *testing.T) {
	d := New(fakeResolver(""), testLogger())
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestMissingAnthropicVersionHeaderRejected(t *testing.T) {
	d := New(fakeResolver(""), testLogger())
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/messages", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 400, resp.StatusCode)
}

func TestUnknownModelReturns404(t *testing.T) {
	d := New(fakeResolver(""), testLogger())
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	body := `{"model":"unknown-model","max_tokens":10,"messages":[{"role":"user","content":"hi"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 404, resp.StatusCode)
}

func TestNonStreamingRoundTrip(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}],\"usage\":{\"prompt_tokens\":1,\"completion_tokens\":1}}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer upstreamSrv.Close()

	d := New(fakeResolver(upstreamSrv.URL), testLogger())
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	body := `{"model":"gpt-4o","max_tokens":10,"messages":[{"role":"user","content":"hi"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Equal(t, "message", decoded["type"])
	content := decoded["content"].([]interface{})
	require.Len(t, content, 1)
	block := content[0].(map[string]interface{})
	require.Equal(t, "Hello", block["text"])
}

func TestServeNonStreamingDeadlineExceededReturns504(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer upstreamSrv.Close()

	d := New(fakeResolver(upstreamSrv.URL), testLogger())
	d.requestDeadline = 30 * time.Millisecond
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	body := `{"model":"gpt-4o","max_tokens":10,"stream":false,"messages":[{"role":"user","content":"hi"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 504, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	errObj := decoded["error"].(map[string]interface{})
	require.Equal(t, "deadline_exceeded", errObj["type"])
}

func TestServeStreamingDeadlineExceededEndsWithMaxTokens(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer upstreamSrv.Close()

	d := New(fakeResolver(upstreamSrv.URL), testLogger())
	d.requestDeadline = 30 * time.Millisecond
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	body := `{"model":"gpt-4o","max_tokens":10,"stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	sseBody := string(raw)
	require.Contains(t, sseBody, "message_start")
	require.Contains(t, sseBody, `"stop_reason":"max_tokens"`)
	require.Contains(t, sseBody, "message_stop")
	require.NotContains(t, sseBody, "event: error")
}

func TestUpstream401MapsToAuthError(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
	}))
	defer upstreamSrv.Close()

	d := New(fakeResolver(upstreamSrv.URL), testLogger())
	srv := httptest.NewServer(d.Routes())
	defer srv.Close()

	body := `{"model":"gpt-4o","max_tokens":10,"messages":[{"role":"user","content":"hi"}]}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/messages", bytes.NewBufferString(body))
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 401, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	errObj := decoded["error"].(map[string]interface{})
	require.Equal(t, "auth_error", errObj["type"])
}
