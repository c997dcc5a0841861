package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegram_Send(t *testing.T) {
	var gotPath string
	var gotReq sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	tg := NewTelegram(server.URL, "123:abc", "-100500")
	if err := tg.Send(context.Background(), "whale alert body"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %s", gotPath)
	}
	if gotReq.ChatID != "-100500" {
		t.Errorf("chat_id = %s", gotReq.ChatID)
	}
	if gotReq.Text != "whale alert body" {
		t.Errorf("text = %q", gotReq.Text)
	}
	if gotReq.ParseMode != "Markdown" {
		t.Errorf("parse_mode = %s", gotReq.ParseMode)
	}
	if !gotReq.DisableWebPagePreview {
		t.Error("web page preview should be disabled")
	}
}

func TestTelegram_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer server.Close()

	tg := NewTelegram(server.URL, "123:abc", "-100500")
	err := tg.Send(context.Background(), "body")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error should carry the API description: %v", err)
	}
}

func TestTelegram_SendClipsLongMessages(t *testing.T) {
	var gotReq sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	tg := NewTelegram(server.URL, "123:abc", "-100500")
	if err := tg.Send(context.Background(), strings.Repeat("a", 5000)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n := len([]rune(gotReq.Text)); n != telegramMaxMessageLen {
		t.Errorf("sent %d runes, want %d", n, telegramMaxMessageLen)
	}
	if !strings.HasSuffix(gotReq.Text, "…") {
		t.Error("clipped text should end with an ellipsis")
	}
}

func TestTelegram_NotConfigured(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	tg := NewTelegram(server.URL, "", "-100500")
	if err := tg.Send(context.Background(), "body"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if calls != 0 {
		t.Errorf("unconfigured channel made %d requests", calls)
	}
}
