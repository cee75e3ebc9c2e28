package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the directory API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// ErrDirectoryUnavailable indicates the identity directory could not be reached
var ErrDirectoryUnavailable = errors.New("directory: service unavailable")

// Config holds the admin identity directory settings. The directory resolves
// an auth user ID to the account email, which is never stored in this service.
type Config struct {
	BaseURL        string
	ServiceKey     string
	TimeoutSeconds int
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("directory: base URL is required")
	}
	if c.ServiceKey == "" {
		return errors.New("directory: service key is required")
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}

// AdminClient looks up account emails through the admin identity API
type AdminClient struct {
	config     *Config
	httpClient *http.Client
}

// NewAdminClient creates a new AdminClient with the given configuration
func NewAdminClient(config *Config) (*AdminClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &AdminClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LookupEmail resolves an auth user ID to the account's email address
func (c *AdminClient) LookupEmail(ctx context.Context, authUserID uuid.UUID) (string, error) {
	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/admin/users/" + authUserID.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("directory: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.ServiceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("directory: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", shared.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: HTTP %d", ErrDirectoryUnavailable, resp.StatusCode)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("directory: failed to parse response: %w", err)
	}
	if user.Email == "" {
		return "", shared.ErrNotFound
	}
	return user.Email, nil
}
