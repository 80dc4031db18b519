package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Record is one structured entity record from the data backend
type Record map[string]interface{}

// Result is the outcome of fetching one data domain for one entity.
// Failures and not-found cases are expressed as Found=false with a
// Message, never as an opaque error: the model must always receive a
// parseable payload it can explain gracefully.
type Result struct {
	Domain  string   `json:"domain"`
	Entity  string   `json:"entity"`
	Found   bool     `json:"found"`
	Records []Record `json:"records,omitempty"`
	Message string   `json:"message,omitempty"`
}

// NoData builds a structured negative result
func NoData(domain, entity, message string) Result {
	return Result{Domain: domain, Entity: entity, Found: false, Message: message}
}

// ClientConfig holds data service connection settings
type ClientConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client queries the customer-data backend
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new data service client
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type queryRequest struct {
	Domain string `json:"domain"`
	Entity string `json:"entity"`
}

type queryResponse struct {
	Records []Record `json:"records"`
}

// Fetch retrieves records for one domain and entity. Service failures
// degrade to a no-data result so the request can still finish.
func (c *Client) Fetch(ctx context.Context, domain, entity string) Result {
	body, err := json.Marshal(queryRequest{Domain: domain, Entity: entity})
	if err != nil {
		return NoData(domain, entity, "internal error preparing data query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return NoData(domain, entity, "internal error preparing data query")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Data service request failed", "domain", domain, "error", err)
		return NoData(domain, entity, "data service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NoData(domain, entity, fmt.Sprintf("no %s records found", domain))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Warn("Data service returned error", "domain", domain, "status", resp.StatusCode, "body", string(respBody))
		return NoData(domain, entity, "data service unavailable")
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		c.logger.Warn("Failed to decode data service response", "domain", domain, "error", err)
		return NoData(domain, entity, "data service returned an unreadable response")
	}
	if len(qr.Records) == 0 {
		return NoData(domain, entity, fmt.Sprintf("no %s records found", domain))
	}

	return Result{Domain: domain, Entity: entity, Found: true, Records: qr.Records}
}
