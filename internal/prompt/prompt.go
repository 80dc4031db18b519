package prompt

import (
	"fmt"
	"strings"

	"github.com/creditwise/chat-gateway/internal/classifier"
)

// SourceTier identifies where a prompt variant was resolved from
type SourceTier string

const (
	TierRemote  SourceTier = "remote"
	TierLocal   SourceTier = "local"
	TierBuiltin SourceTier = "builtin"
)

// Variant is one resolved system prompt
type Variant struct {
	ID             string
	Version        string
	Source         SourceTier
	Template       string
	Temperature    *float64
	MaxTokens      *int
	RoutingContext string
}

// SystemPrompt returns the template augmented with the routing-context
// block.
func (v *Variant) SystemPrompt() string {
	if v.RoutingContext == "" {
		return v.Template
	}
	return v.Template + "\n\n" + v.RoutingContext
}

// routingContext builds the explanatory block describing why this
// variant was selected and which data domains to expect, so the model
// can explain gracefully when expected data is missing.
func routingContext(class classifier.Classification) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Routing context: this conversation was classified as %q.", class.Type))
	if domains := classifier.Domains(class.Type); len(domains) > 0 {
		b.WriteString(fmt.Sprintf(" Customer data from the following domains may be retrieved for you: %s.", strings.Join(domains, ", ")))
		b.WriteString(" If a domain you expected is missing or marked as not found in the tool results, say so plainly instead of guessing.")
	} else {
		b.WriteString(" No customer data retrieval applies to this conversation; answer from general knowledge and offer to look up account details if the user provides an identifier.")
	}
	return b.String()
}
