// Package assemble shapes engine outcomes into OpenAI-compatible chat
// completion envelopes. Gateway-specific details travel in a dedicated
// metadata block and never inside message content.
package assemble

import (
	"fmt"
	"time"

	"github.com/creditwise/chat-gateway/internal/engine"
	"github.com/google/uuid"
)

// ChatCompletion is the OpenAI-compatible response envelope
type ChatCompletion struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Gateway *Metadata `json:"x_gateway,omitempty"`
}

// Choice carries the assistant message
type Choice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

// AssistantMessage is the response message body
type AssistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage mirrors the OpenAI usage block
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Metadata is the gateway-specific block appended to every envelope
type Metadata struct {
	Classification string `json:"classification"`
	PromptID       string `json:"prompt_id,omitempty"`
	PromptVersion  string `json:"prompt_version,omitempty"`
	PromptSource   string `json:"prompt_source,omitempty"`
	Provider       string `json:"provider,omitempty"`
	ToolInvoked    bool   `json:"tool_invoked"`
	ForcedTool     bool   `json:"forced_tool_invocation,omitempty"`
	Truncated      bool   `json:"context_truncated,omitempty"`
	CacheHit       bool   `json:"cache_hit,omitempty"`
	Degraded       bool   `json:"degraded,omitempty"`
}

const degradedAnswer = "I'm sorry, our assistant is temporarily unavailable. Please try again in a moment."

func newID() string {
	return fmt.Sprintf("chatcmpl-%s", uuid.NewString())
}

// FromOutcome builds the completion envelope for a finalized request
func FromOutcome(out *engine.Outcome) *ChatCompletion {
	meta := &Metadata{
		Classification: string(out.Classification.Type),
		Provider:       out.Provider,
		ToolInvoked:    out.ToolInvoked,
		ForcedTool:     out.Forced,
		Truncated:      out.Truncated,
		CacheHit:       out.CacheHit,
	}
	if out.Variant != nil {
		meta.PromptID = out.Variant.ID
		meta.PromptVersion = out.Variant.Version
		meta.PromptSource = string(out.Variant.Source)
	}

	return &ChatCompletion{
		ID:      newID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   out.Model,
		Choices: []Choice{{
			Index:        0,
			Message:      AssistantMessage{Role: "assistant", Content: out.Answer},
			FinishReason: "stop",
		}},
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
		Gateway: meta,
	}
}

// Degraded builds the envelope returned when every provider path failed.
// The client still receives a well-formed completion so OpenAI-compatible
// SDKs keep working.
func Degraded(model string) *ChatCompletion {
	return &ChatCompletion{
		ID:      newID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{{
			Index:        0,
			Message:      AssistantMessage{Role: "assistant", Content: degradedAnswer},
			FinishReason: "stop",
		}},
		Gateway: &Metadata{Degraded: true},
	}
}
