package assemble

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/creditwise/chat-gateway/internal/classifier"
	"github.com/creditwise/chat-gateway/internal/engine"
	"github.com/creditwise/chat-gateway/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOutcome(t *testing.T) {
	out := &engine.Outcome{
		Answer:   "Your credit score is 720.",
		Model:    "gpt-4o-mini",
		Provider: "openai",
		Usage:    engine.Usage{PromptTokens: 20, CompletionTokens: 30, TotalTokens: 50},
		Variant: &prompt.Variant{
			ID:      "credit-analysis",
			Version: "3",
			Source:  prompt.TierRemote,
		},
		Classification: classifier.Classification{Type: classifier.TypeCredit},
		ToolInvoked:    true,
		Truncated:      true,
	}

	c := FromOutcome(out)
	assert.True(t, strings.HasPrefix(c.ID, "chatcmpl-"))
	assert.Equal(t, "chat.completion", c.Object)
	assert.NotZero(t, c.Created)
	assert.Equal(t, "gpt-4o-mini", c.Model)

	require.Len(t, c.Choices, 1)
	assert.Equal(t, "assistant", c.Choices[0].Message.Role)
	assert.Equal(t, "Your credit score is 720.", c.Choices[0].Message.Content)
	assert.Equal(t, "stop", c.Choices[0].FinishReason)
	assert.Equal(t, 50, c.Usage.TotalTokens)

	require.NotNil(t, c.Gateway)
	assert.Equal(t, "credit", c.Gateway.Classification)
	assert.Equal(t, "credit-analysis", c.Gateway.PromptID)
	assert.Equal(t, "3", c.Gateway.PromptVersion)
	assert.Equal(t, "remote", c.Gateway.PromptSource)
	assert.True(t, c.Gateway.ToolInvoked)
	assert.True(t, c.Gateway.Truncated)
	assert.False(t, c.Gateway.Degraded)
}

func TestMetadataStaysOutOfMessageContent(t *testing.T) {
	out := &engine.Outcome{
		Answer:         "All good.",
		Model:          "gpt-4o-mini",
		Provider:       "openai",
		Variant:        &prompt.Variant{ID: "builtin-status", Version: "1", Source: prompt.TierBuiltin},
		Classification: classifier.Classification{Type: classifier.TypeStatus},
	}

	raw, err := json.Marshal(FromOutcome(out))
	require.NoError(t, err)

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	content := decoded.Choices[0].Message.Content
	assert.NotContains(t, content, "builtin-status")
	assert.NotContains(t, content, "prompt_id")
	assert.Equal(t, "All good.", content)
}

func TestDegraded(t *testing.T) {
	c := Degraded("gemini-2.0-flash")
	assert.True(t, strings.HasPrefix(c.ID, "chatcmpl-"))
	assert.Equal(t, "gemini-2.0-flash", c.Model)
	require.Len(t, c.Choices, 1)
	assert.NotEmpty(t, c.Choices[0].Message.Content)
	require.NotNil(t, c.Gateway)
	assert.True(t, c.Gateway.Degraded)
}

func TestUniqueIDs(t *testing.T) {
	a := Degraded("m")
	b := Degraded("m")
	assert.NotEqual(t, a.ID, b.ID)
}
