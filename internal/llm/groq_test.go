package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const completionBody = `{
	"choices": [{"message": {"role": "assistant", "content": "{\"selections\":[]}"}}],
	"usage": {"total_tokens": 412}
}`

func TestClient_Complete(t *testing.T) {
	var gotReq chatRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(completionBody))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	content, err := c.Complete(context.Background(), "Be strict.", "Pick two.")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != `{"selections":[]}` {
		t.Errorf("content = %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotReq.Model != GroqModel {
		t.Errorf("model = %s, want %s", gotReq.Model, GroqModel)
	}
	if gotReq.Temperature != 0.3 {
		t.Errorf("temperature = %g, want 0.3", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d, want 2000", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("sent %d messages, want 2", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "Be strict." {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "Pick two." {
		t.Errorf("user message = %+v", gotReq.Messages[1])
	}
}

func TestClient_CompleteOptions(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(completionBody))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key",
		WithModel("llama-3.1-8b-instant"),
		WithTemperature(0.7),
		WithMaxTokens(512),
	)
	if _, err := c.Complete(context.Background(), "s", "u"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotReq.Model != "llama-3.1-8b-instant" {
		t.Errorf("model = %s", gotReq.Model)
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("temperature = %g", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 512 {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
}

func TestClient_CompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit reached", "type": "tokens"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestClient_CompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestClient_CompleteWithoutKey(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.Complete(context.Background(), "s", "u")
	if err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if calls != 0 {
		t.Errorf("unconfigured client made %d requests", calls)
	}
}
