package provider

import (
	"context"
	"time"
)

// Message roles in the normalized OpenAI-compatible shape
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single conversation turn
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a tool invocation emitted by a model or synthesized by the
// engine. Arguments is a JSON object string.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDescriptor describes a tool advertised to the model
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Request is the normalized request shape sent to any provider
type Request struct {
	Model       string
	Messages    []Message
	Tools       []ToolDescriptor
	Temperature *float64
	MaxTokens   *int
}

// Response is the normalized provider response
type Response struct {
	Content          string
	Model            string
	Provider         string
	ToolCalls        []ToolCall
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
}

// Limits describes a provider's operational envelope
type Limits struct {
	ContextWindow int
	Timeout       time.Duration
}

// Provider is the capability interface implemented once per provider
// family.
type Provider interface {
	Send(ctx context.Context, req *Request) (*Response, error)
	Limits() Limits
	Name() string
}
