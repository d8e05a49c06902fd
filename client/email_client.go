package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// EmailCheckClient asks the user service whether an email is already taken.
type EmailCheckClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewEmailCheckClient(baseURL string, timeout time.Duration) *EmailCheckClient {
	return &EmailCheckClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Exists reports whether an account with the given email already exists.
func (c *EmailCheckClient) Exists(ctx context.Context, email string) (bool, error) {
	endpoint := c.baseURL + "/api/v1/users/exists?email=" + url.QueryEscape(email)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("email check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("email check returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Exists, nil
}
