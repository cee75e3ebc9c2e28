package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize is the maximum allowed response size from the email API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrSendFailed indicates the provider rejected or could not accept the message
var ErrSendFailed = errors.New("email: send failed")

// Config holds Resend API settings
type Config struct {
	APIKey         string
	Endpoint       string
	FromAddress    string
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("email: api key is required")
	}
	if c.Endpoint == "" {
		return errors.New("email: endpoint is required")
	}
	if c.FromAddress == "" {
		return errors.New("email: from address is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
	}
	return nil
}

// OutboundMessage is one transactional email to deliver
type OutboundMessage struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// ResendClient delivers transactional email through the Resend API
type ResendClient struct {
	config     *Config
	httpClient *http.Client
}

// NewResendClient creates a new ResendClient with the given configuration
func NewResendClient(config *Config) (*ResendClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ResendClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers one message and returns the provider's message ID
func (c *ResendClient) Send(ctx context.Context, msg OutboundMessage) (string, error) {
	payload, err := json.Marshal(sendRequest{
		From:    c.config.FromAddress,
		To:      []string{msg.To},
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("email: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("email: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("email: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("%w: HTTP %d: %s", ErrSendFailed, resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("%w: HTTP %d", ErrSendFailed, resp.StatusCode)
	}

	var result sendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("email: failed to parse response: %w", err)
	}
	return result.ID, nil
}
