package engine

import (
	"regexp"
	"strings"

	"github.com/creditwise/chat-gateway/internal/provider"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	namePattern  = regexp.MustCompile(`(?:for|of|about)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
)

// ExtractEntity finds the customer identifier in the conversation,
// scanning user turns from newest to oldest. Email addresses win over
// "for Jane Doe" style name references.
func ExtractEntity(messages []provider.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != provider.RoleUser {
			continue
		}
		if email := emailPattern.FindString(messages[i].Content); email != "" {
			return strings.ToLower(email)
		}
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != provider.RoleUser {
			continue
		}
		if m := namePattern.FindStringSubmatch(messages[i].Content); m != nil {
			return m[1]
		}
	}
	return ""
}

// LatestUserText returns the content of the most recent user turn
func LatestUserText(messages []provider.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == provider.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
