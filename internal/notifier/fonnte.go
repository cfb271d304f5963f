// Package notifier delivers WhatsApp messages through the Fonnte gateway.
package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender delivers one message to one phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// FonnteClient posts messages to the Fonnte send endpoint. The API takes a
// form-encoded target/message pair authenticated by a bare token header.
type FonnteClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewFonnteClient constructs a client. An empty baseURL falls back to the
// public endpoint.
func NewFonnteClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *FonnteClient {
	if baseURL == "" {
		baseURL = "https://api.fonnte.com/send"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FonnteClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send delivers one WhatsApp message. The phone number is normalised to the
// international 62 prefix before sending.
func (c *FonnteClient) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("target", NormalizePhone(phone))
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("whatsapp gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// NormalizePhone rewrites a local Indonesian number into the 62 form the
// gateway expects: a leading 0 becomes 62, a leading +62 loses the plus, and
// anything else passes through unchanged.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "0"):
		return "62" + phone[1:]
	case strings.HasPrefix(phone, "+62"):
		return phone[1:]
	default:
		return phone
	}
}
