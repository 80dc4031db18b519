package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleConfig holds Google client configuration
type GoogleConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	ContextWindow int
}

// GoogleClient talks to the Gemini generateContent API and translates
// between the OpenAI-shaped message list and the contents/parts shape.
type GoogleClient struct {
	baseURL       string
	apiKey        string
	contextWindow int
	timeout       time.Duration
	httpClient    *http.Client
}

// NewGoogleClient creates a new Google client. The timeout default is
// higher than the other families; Gemini tail latency warrants it.
func NewGoogleClient(cfg *GoogleConfig) (*GoogleClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	window := cfg.ContextWindow
	if window == 0 {
		window = 1000000
	}
	return &GoogleClient{
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		contextWindow: window,
		timeout:       timeout,
		httpClient:    &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider name
func (c *GoogleClient) Name() string { return "google" }

// Limits returns the provider's context window and timeout
func (c *GoogleClient) Limits() Limits {
	return Limits{ContextWindow: c.contextWindow, Timeout: c.timeout}
}

// Send sends a generateContent request
func (c *GoogleClient) Send(ctx context.Context, req *Request) (*Response, error) {
	wireReq := generateContentRequest{}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			wireReq.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: m.Content}},
			}
		case RoleAssistant:
			var parts []geminiPart
			if m.Content != "" {
				parts = append(parts, geminiPart{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var args map[string]interface{}
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = map[string]interface{}{}
				}
				parts = append(parts, geminiPart{
					FunctionCall: &geminiFunctionCall{Name: tc.Name, Args: args},
				})
			}
			wireReq.Contents = append(wireReq.Contents, geminiContent{
				Role:  "model",
				Parts: parts,
			})
		case RoleTool:
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(m.Content), &payload); err != nil {
				payload = map[string]interface{}{"content": m.Content}
			}
			wireReq.Contents = append(wireReq.Contents, geminiContent{
				Role: "user",
				Parts: []geminiPart{{
					FunctionResponse: &geminiFunctionResponse{
						Name:     m.Name,
						Response: payload,
					},
				}},
			})
		default:
			wireReq.Contents = append(wireReq.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	if len(req.Tools) > 0 {
		var decls []geminiFunctionDeclaration
		for _, t := range req.Tools {
			decls = append(decls, geminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		wireReq.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		wireReq.GenerationConfig = &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, classifyStatus(c.Name(), resp.StatusCode, string(respBody))
	}

	var wireResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(wireResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	out := &Response{
		Model:            req.Model,
		Provider:         c.Name(),
		PromptTokens:     wireResp.UsageMetadata.PromptTokenCount,
		CompletionTokens: wireResp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:      wireResp.UsageMetadata.TotalTokenCount,
		Latency:          time.Since(start),
	}
	for i, part := range wireResp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				args = []byte("{}")
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d", i),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
			continue
		}
		out.Content += part.Text
	}
	return out, nil
}

type generateContentRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}
