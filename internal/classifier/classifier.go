package classifier

import (
	"sort"
	"strings"
)

// QueryType is the discrete label assigned to a user message
type QueryType string

const (
	TypeStatus      QueryType = "status"
	TypeCredit      QueryType = "credit"
	TypeTransaction QueryType = "transaction"
	TypeMultiData   QueryType = "multi_data"
	TypePhone       QueryType = "phone"
	TypeFallback    QueryType = "fallback"
)

// dataTypes are the classifications that imply a data-retrieval tool call
var dataTypes = map[QueryType]bool{
	TypeCredit:      true,
	TypeTransaction: true,
	TypePhone:       true,
	TypeMultiData:   true,
}

// NeedsTool reports whether a classification implies a data fetch
func NeedsTool(t QueryType) bool {
	return dataTypes[t]
}

// Classification is the result of classifying a user message
type Classification struct {
	Type     QueryType
	Matched  []string // trigger phrases that fired, for audit
}

// Rules maps each query type to its trigger phrase set. Matching is
// case-insensitive substring containment.
type Rules map[QueryType][]string

// DefaultRules returns the built-in keyword tables
func DefaultRules() Rules {
	return Rules{
		TypeStatus: {
			"account status", "account active", "account blocked",
			"account state", "is my account", "status for", "status of",
		},
		TypeCredit: {
			"credit", "score", "loan", "debt", "overdue", "delinquen",
		},
		TypeTransaction: {
			"transaction", "payment", "transfer", "spending", "purchase",
			"deposit", "withdrawal",
		},
		TypePhone: {
			"phone", "mobile number", "contact number", "msisdn",
		},
	}
}

// Merge overlays configured keyword lists onto the defaults. A configured
// list replaces the default list for that type entirely.
func (r Rules) Merge(overrides map[string][]string) Rules {
	merged := make(Rules, len(r))
	for t, kws := range r {
		merged[t] = kws
	}
	for name, kws := range overrides {
		if len(kws) > 0 {
			merged[QueryType(name)] = kws
		}
	}
	return merged
}

// Classifier assigns query types from the rule table
type Classifier struct {
	rules Rules
}

// New creates a classifier with the given rules
func New(rules Rules) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify maps free-text user input to a query type. Pure: no I/O, no
// state. Empty input classifies as fallback.
func (c *Classifier) Classify(text string) Classification {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return Classification{Type: TypeFallback}
	}

	matchedTypes := map[QueryType][]string{}
	for qt, phrases := range c.rules {
		for _, p := range phrases {
			if strings.Contains(lower, strings.ToLower(p)) {
				matchedTypes[qt] = append(matchedTypes[qt], p)
			}
		}
	}

	if len(matchedTypes) == 0 {
		return Classification{Type: TypeFallback}
	}

	var matched []string
	for _, ps := range matchedTypes {
		matched = append(matched, ps...)
	}
	sort.Strings(matched)

	// Two or more distinct data domains means the user wants a
	// cross-domain view, not a single-domain deep dive.
	dataDomains := 0
	var single QueryType
	for qt := range matchedTypes {
		if qt != TypeStatus {
			dataDomains++
			single = qt
		}
	}
	switch {
	case dataDomains >= 2:
		return Classification{Type: TypeMultiData, Matched: matched}
	case dataDomains == 1:
		return Classification{Type: single, Matched: matched}
	default:
		return Classification{Type: TypeStatus, Matched: matched}
	}
}

// Domains returns the data domains a classification is expected to cover
func Domains(t QueryType) []string {
	switch t {
	case TypeCredit:
		return []string{"credit"}
	case TypeTransaction:
		return []string{"transaction"}
	case TypePhone:
		return []string{"phone"}
	case TypeStatus:
		return []string{"account_status"}
	case TypeMultiData:
		return []string{"credit", "transaction", "phone", "account_status"}
	default:
		return nil
	}
}
