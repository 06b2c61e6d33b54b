// Package notify delivers monitor reports to a Telegram chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/services/monitor"
)

// Error message constants for consistent error handling
const (
	errNotConfigured    = "telegram notifier is not configured"
	errEncodeFailed     = "encode failed: %w"
	errBuildRequest     = "build request: %w"
	errRequestFailed    = "request failed: %w"
	errUnexpectedStatus = "unexpected status %d: %s"
)

const (
	// DefaultBaseURL is the Telegram Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

var _ monitor.Notifier = (*Telegram)(nil)

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	logger  log.Logger
}

// Options configures the Telegram notifier. An empty Token or ChatID yields a
// disabled notifier.
type Options struct {
	Token  string
	ChatID string
	// options to inject for testing purposes
	BaseURL string
	Client  *http.Client
	Logger  log.Logger
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func NewTelegram(opts Options) *Telegram {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Telegram{
		token:   opts.Token,
		chatID:  opts.ChatID,
		baseURL: opts.BaseURL,
		client:  opts.Client,
		logger:  opts.Logger,
	}
}

// Enabled reports whether both the bot token and the chat id are set.
func (t *Telegram) Enabled() bool {
	return t.token != "" && t.chatID != ""
}

// Send posts text to the configured chat using HTML parse mode.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if !t.Enabled() {
		return fmt.Errorf(errNotConfigured)
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf(errEncodeFailed, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf(errBuildRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// the request URL carries the token; keep it out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf(errRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf(errUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(detail))
	}

	t.logger.Info(map[string]any{"chat_id": t.chatID}, "telegram message sent")
	return nil
}
