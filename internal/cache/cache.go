package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TTLClass selects how long an entry lives. Raw data fetches expire
// quickly because upstream customer data changes; finalized LLM answers
// are expensive to regenerate and live longer.
type TTLClass string

const (
	ClassData     TTLClass = "data"
	ClassResponse TTLClass = "response"
)

// TTLs holds the configured duration per class
type TTLs struct {
	Data     time.Duration
	Response time.Duration
}

// For returns the duration for a TTL class
func (t TTLs) For(class TTLClass) time.Duration {
	if class == ClassResponse {
		return t.Response
	}
	return t.Data
}

// ComputeFunc produces a value for GetOrCompute on a cache miss
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Store is a key-value store with TTL classes and single-flight
// semantics: concurrent GetOrCompute callers for the same key share one
// computation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, class TTLClass) error
	GetOrCompute(ctx context.Context, key string, class TTLClass, compute ComputeFunc) ([]byte, error)
}

// ResponseKey derives the response-cache key from the classification,
// entity identifier and normalized query text.
func ResponseKey(queryType, entity, query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return "resp:" + queryType + ":" + hashKey(strings.ToLower(entity)+"|"+normalized)
}

// DataKey derives the tool-result cache key from the data domain and
// entity identifier. Independent of ResponseKey so a data refresh does
// not discard cached final answers.
func DataKey(domain, entity string) string {
	return "data:" + domain + ":" + hashKey(strings.ToLower(entity))
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
