package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize is the maximum allowed response size from the siteverify API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrVerificationUnavailable indicates the siteverify API could not be reached
var ErrVerificationUnavailable = errors.New("turnstile: verification service unavailable")

// Config holds Cloudflare Turnstile siteverify settings
type Config struct {
	Secret         string
	Endpoint       string
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("turnstile: secret is required")
	}
	if c.Endpoint == "" {
		return errors.New("turnstile: endpoint is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// TurnstileVerifier verifies submitted tokens against Cloudflare's siteverify API
type TurnstileVerifier struct {
	config     *Config
	httpClient *http.Client
}

// NewTurnstileVerifier creates a new TurnstileVerifier with the given configuration
func NewTurnstileVerifier(config *Config) (*TurnstileVerifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TurnstileVerifier{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// siteverifyResponse is the siteverify API response body
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a token against the siteverify API. It returns false with a
// nil error when the token is rejected, and an error only when the API itself
// could not be consulted. Callers treat both as a failed challenge.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	values := url.Values{}
	values.Set("secret", v.config.Secret)
	values.Set("response", token)
	if remoteIP != "" {
		values.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.config.Endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return false, fmt.Errorf("turnstile: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, fmt.Errorf("turnstile: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("%w: HTTP %d", ErrVerificationUnavailable, resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("turnstile: failed to parse response: %w", err)
	}

	return result.Success, nil
}
