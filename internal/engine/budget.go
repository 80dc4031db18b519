package engine

import "github.com/creditwise/chat-gateway/internal/provider"

// anticipatedToolResultTokens is the reserve held for the upcoming tool
// result when checking the context budget.
const anticipatedToolResultTokens = 1500

// estimateTokens approximates token count at four characters per token.
// Deliberately conservative and provider-agnostic; the budget check
// only needs to keep us clearly inside the window.
func estimateTokens(s string) int {
	return len(s)/4 + 1
}

func estimateMessages(msgs []provider.Message) int {
	total := 0
	for _, m := range msgs {
		total += estimateTokens(m.Content) + 4 // role and framing overhead
	}
	return total
}

// truncateToBudget drops the oldest conversation turns until the
// estimated total fits the window. The system prompt (index 0) and the
// most recent user turn are never dropped. Returns the possibly
// shortened slice and whether truncation occurred.
func truncateToBudget(msgs []provider.Message, window int) ([]provider.Message, bool) {
	if window <= 0 {
		return msgs, false
	}
	budget := window - anticipatedToolResultTokens
	if estimateMessages(msgs) <= budget {
		return msgs, false
	}

	lastUser := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == provider.RoleUser {
			lastUser = i
			break
		}
	}

	truncated := false
	out := msgs
	// Oldest droppable turn sits right after the system prompt.
	for estimateMessages(out) > budget {
		dropIdx := -1
		for i, m := range out {
			if m.Role == provider.RoleSystem {
				continue
			}
			if i == lastUser {
				continue
			}
			dropIdx = i
			break
		}
		if dropIdx < 0 {
			break
		}
		out = append(out[:dropIdx:dropIdx], out[dropIdx+1:]...)
		if lastUser > dropIdx {
			lastUser--
		}
		truncated = true
	}
	return out, truncated
}
