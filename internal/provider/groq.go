package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqConfig holds Groq client configuration
type GroqConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	ContextWindow int
}

// GroqClient talks to the Groq API, which speaks the OpenAI chat
// completions wire protocol but serves models with a much smaller
// context window.
type GroqClient struct {
	baseURL       string
	apiKey        string
	contextWindow int
	timeout       time.Duration
	httpClient    *http.Client
}

// NewGroqClient creates a new Groq client
func NewGroqClient(cfg *GroqConfig) (*GroqClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	window := cfg.ContextWindow
	if window == 0 {
		window = 8192
	}
	return &GroqClient{
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		contextWindow: window,
		timeout:       timeout,
		httpClient:    &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider name
func (c *GroqClient) Name() string { return "groq" }

// Limits returns the provider's context window and timeout
func (c *GroqClient) Limits() Limits {
	return Limits{ContextWindow: c.contextWindow, Timeout: c.timeout}
}

// Send sends a chat completion request
func (c *GroqClient) Send(ctx context.Context, req *Request) (*Response, error) {
	return sendChatCompletions(ctx, c.httpClient, c.Name(), c.baseURL, c.apiKey, req)
}
