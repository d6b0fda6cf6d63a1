package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"), WithRateLimit(0))
}

func TestComplete_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != APIVersion {
			t.Errorf("anthropic-version = %q", got)
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		if req.Model != DefaultModel || len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected request %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}],"stop_reason":"end_turn"}`))
	})

	got, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("Complete() = %q", got)
	}
}

func TestComplete_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, KindRateLimited},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`, KindTransport},
		{"server error", http.StatusInternalServerError, `oops`, KindTransport},
		{"bad request", http.StatusBadRequest, `{}`, KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), "x")
			if err == nil {
				t.Fatal("Complete() expected error")
			}
			if got := Kind(err); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q (err %v)", got, tt.wantKind, err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("error %v is not an APIError with status %d", err, tt.status)
			}
		})
	}
}

func TestComplete_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"no content", `{"content":[],"stop_reason":"max_tokens"}`},
		{"only whitespace", `{"content":[{"type":"text","text":"  "}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := client.Complete(context.Background(), "x")
			if !IsMalformed(err) {
				t.Errorf("error = %v, want malformed response", err)
			}
		})
	}
}

func TestComplete_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(WithBaseURL(url), WithRateLimit(0))
	_, err := client.Complete(context.Background(), "x")
	if !IsTransport(err) {
		t.Errorf("error = %v, want transport error", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRateLimited, KindRateLimited},
		{&APIError{StatusCode: 429}, KindRateLimited},
		{&APIError{StatusCode: 503}, KindTransport},
		{ErrMalformedResponse, KindMalformed},
		{errors.New("other"), ""},
		{context.Canceled, ""},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
