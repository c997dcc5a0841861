package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// TelegramBaseURL is the Bot API root.
const TelegramBaseURL = "https://api.telegram.org"

const telegramTimeout = 30 * time.Second

// telegramMaxMessageLen is the Bot API ceiling on message length.
// Alert bodies are already held to their own tighter limit upstream.
const telegramMaxMessageLen = 4096

// ErrNotConfigured is returned when the bot token or chat id is
// missing.
var ErrNotConfigured = errors.New("notify: telegram token or chat id not configured")

// Channel delivers one rendered message to the configured destination.
type Channel interface {
	Send(ctx context.Context, text string) error
}

// Telegram sends Markdown messages through the Bot API sendMessage
// method. Messages longer than the alert ceiling are clipped before
// delivery.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

type TelegramOption func(*Telegram)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

// NewTelegram creates a Bot API channel. An empty baseURL selects the
// public endpoint.
func NewTelegram(baseURL, token, chatID string, opts ...TelegramOption) *Telegram {
	if baseURL == "" {
		baseURL = TelegramBaseURL
	}
	t := &Telegram{
		baseURL: baseURL,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: telegramTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t.token == "" || t.chatID == "" {
		return ErrNotConfigured
	}
	text = clipRunes(text, telegramMaxMessageLen)

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram send failed (status %d): %s", resp.StatusCode, parsed.Description)
	}

	log.Debug().Int("chars", len([]rune(text))).Msg("Telegram message sent")
	return nil
}
