package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20 // 1 MiB — API error bodies are small.

// TwilioConfig holds the Twilio REST API credentials and sender address.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"` // WhatsApp-enabled number, e.g. "+14155238886"
	APIURL     string `yaml:"api_url"`
}

// defaults applies default values to unset fields.
func (c *TwilioConfig) defaults() {
	if c.APIURL == "" {
		c.APIURL = "https://api.twilio.com"
	}
}

// Twilio is a thin HTTP wrapper around the Twilio Messages API, sending
// WhatsApp texts.
type Twilio struct {
	config TwilioConfig
	http   *http.Client
}

// Compile-time interface check.
var _ Sender = (*Twilio)(nil)

// NewTwilio creates a Twilio sender.
func NewTwilio(cfg TwilioConfig) *Twilio {
	cfg.defaults()
	return &Twilio{
		config: cfg,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the JSON error body Twilio returns on failed requests.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message. The recipient keeps whatever channel prefix the
// webhook reported (e.g. "whatsapp:+491701234567"); the sender address gets
// the whatsapp: prefix added when missing.
func (t *Twilio) Send(ctx context.Context, to, body string) error {
	from := t.config.From
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.config.APIURL, t.config.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.config.AccountSID, t.config.AuthToken)

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("twilio: send rejected (status %d, code %d): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("twilio: send rejected with status %d", resp.StatusCode)
}
