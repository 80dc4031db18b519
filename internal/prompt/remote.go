package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteConfig holds prompt-management service connection settings
type RemoteConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// RemoteClient reads prompt variants from the prompt-management service
type RemoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteClient creates a new prompt service client
func NewRemoteClient(cfg RemoteConfig) *RemoteClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &RemoteClient{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// remotePrompt is the service's prompt representation
type remotePrompt struct {
	ID          string   `json:"id"`
	Version     string   `json:"version"`
	QueryType   string   `json:"query_type,omitempty"`
	Template    string   `json:"template"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

type catalogResponse struct {
	Prompts []remotePrompt `json:"prompts"`
}

// GetPrompt fetches one prompt by id and optional version
func (c *RemoteClient) GetPrompt(ctx context.Context, id, version string) (*remotePrompt, error) {
	path := "/v1/prompts/" + url.PathEscape(id)
	if version != "" {
		path += "?version=" + url.QueryEscape(version)
	}
	return c.getOne(ctx, path)
}

// GetByQueryType fetches the prompt mapped to a classification
func (c *RemoteClient) GetByQueryType(ctx context.Context, queryType string) (*remotePrompt, error) {
	return c.getOne(ctx, "/v1/prompts/by-type/"+url.PathEscape(queryType))
}

// ListPrompts fetches the full catalog for the warm cache
func (c *RemoteClient) ListPrompts(ctx context.Context) ([]remotePrompt, error) {
	resp, err := c.doRequest(ctx, "/v1/prompts")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prompt service returned status %d: %s", resp.StatusCode, string(body))
	}

	var catalog catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode prompt catalog: %w", err)
	}
	return catalog.Prompts, nil
}

func (c *RemoteClient) getOne(ctx context.Context, path string) (*remotePrompt, error) {
	resp, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("prompt not found")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prompt service returned status %d: %s", resp.StatusCode, string(body))
	}

	var p remotePrompt
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode prompt: %w", err)
	}
	if p.Template == "" {
		return nil, fmt.Errorf("prompt service returned an empty template")
	}
	return &p, nil
}

func (c *RemoteClient) doRequest(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prompt service request failed: %w", err)
	}
	return resp, nil
}
