package whop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production upstream API.
const DefaultBaseURL = "https://api.whop.com/api/v5"

// Client talks to the upstream directory API with a bearer credential.
type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient creates a client authorized with the given API key. The key is
// installed as a static bearer token on the underlying transport.
func NewClient(baseURL string, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 10 * time.Second

	return &Client{
		BaseURL: baseURL,
		Client:  httpClient,
	}
}

// GetUser fetches a user record for member enrichment.
func (c *Client) GetUser(ctx context.Context, userID string) (*UserInfo, error) {
	url := fmt.Sprintf("%s/app/users/%s", c.BaseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user, status code: %d", res.StatusCode)
	}

	var user UserInfo
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &user, nil
}

// GetCompany fetches a company record for display metadata.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*CompanyInfo, error) {
	url := fmt.Sprintf("%s/app/companies/%s", c.BaseURL, companyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get company, status code: %d", res.StatusCode)
	}

	var company CompanyInfo
	if err := json.NewDecoder(res.Body).Decode(&company); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &company, nil
}
