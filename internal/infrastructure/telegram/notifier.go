package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"BrainCandy/internal/config"
	"BrainCandy/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Client talks to the Telegram Bot API.
type Client struct {
	apiBase  string
	botToken string
	client   *http.Client
}

// NewClient builds a Bot API client from configuration.
func NewClient(cfg config.TelegramConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{apiBase: base, botToken: cfg.BotToken, client: httpClient}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	if c == nil || c.botToken == "" || c.client == nil {
		return fmt.Errorf("telegram %s: %w", method, ports.ErrNotConfigured)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram error: %s", resp.Status)
		}
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.OK {
		return fmt.Errorf("telegram error: %s: %s", resp.Status, decoded.Description)
	}

	if result != nil && len(decoded.Result) > 0 {
		if err := json.Unmarshal(decoded.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// Notifier sends HTML messages via sendMessage.
type Notifier struct {
	client *Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wraps a Bot API client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Deliver posts an HTML message to recipient, a chat id or @channel name.
func (n *Notifier) Deliver(ctx context.Context, recipient, text string) error {
	if recipient == "" {
		return fmt.Errorf("telegram recipient: %w", ports.ErrNotConfigured)
	}
	return n.client.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:    recipient,
		Text:      text,
		ParseMode: "HTML",
	}, nil)
}
