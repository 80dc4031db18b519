package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/creditwise/chat-gateway/internal/cache"
	"github.com/creditwise/chat-gateway/internal/metrics"
	"github.com/creditwise/chat-gateway/internal/provider"
)

// ToolName is the single data-retrieval tool advertised to models
const ToolName = "get_customer_data"

// Domains the data backend serves
var knownDomains = map[string]bool{
	"credit":         true,
	"transaction":    true,
	"phone":          true,
	"account_status": true,
}

// Descriptors returns the static tool set advertised on every dispatch
func Descriptors() []provider.ToolDescriptor {
	return []provider.ToolDescriptor{{
		Name:        ToolName,
		Description: "Retrieve customer records for one customer. Supports credit, transaction, phone and account_status domains; pass several domains for a cross-domain view.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"entity": map[string]interface{}{
					"type":        "string",
					"description": "Customer identifier: email address, full name or internal id",
				},
				"domains": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "enum": []string{"credit", "transaction", "phone", "account_status"}},
					"description": "Data domains to fetch",
				},
			},
			"required": []string{"entity", "domains"},
		},
	}}
}

// ToolArgs are the parsed arguments of a get_customer_data call
type ToolArgs struct {
	Entity  string   `json:"entity"`
	Domains []string `json:"domains"`
	// some models emit a single domain string instead of an array
	Domain string `json:"domain,omitempty"`
}

// ToolPayload is the structured result fed back to the model
type ToolPayload struct {
	Entity  string   `json:"entity"`
	Results []Result `json:"results"`
}

// Executor runs data-retrieval tool calls through the data cache
type Executor struct {
	client *Client
	store  cache.Store
	logger *slog.Logger
}

// NewExecutor creates a tool executor
func NewExecutor(client *Client, store cache.Store, logger *slog.Logger) *Executor {
	return &Executor{client: client, store: store, logger: logger}
}

// ParseArgs decodes and normalizes tool call arguments
func ParseArgs(arguments string) (ToolArgs, error) {
	var args ToolArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return args, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	if len(args.Domains) == 0 && args.Domain != "" {
		args.Domains = []string{args.Domain}
	}
	if args.Entity == "" {
		return args, fmt.Errorf("tool arguments missing entity")
	}
	if len(args.Domains) == 0 {
		return args, fmt.Errorf("tool arguments missing domains")
	}
	return args, nil
}

// Execute runs one tool call. Each domain fetch goes through the data
// cache with single-flight, so concurrent requests for the same
// (domain, entity) share one backend query. Returns the JSON payload to
// append as a tool-role message; a failed or empty fetch yields a
// structured no-data entry, never an error that aborts the request.
func (e *Executor) Execute(ctx context.Context, call provider.ToolCall) ([]byte, error) {
	args, err := ParseArgs(call.Arguments)
	if err != nil {
		e.logger.Warn("Unparseable tool call", "tool", call.Name, "error", err)
		payload := ToolPayload{Results: []Result{NoData("unknown", "", "could not interpret the data request")}}
		return json.Marshal(payload)
	}

	payload := ToolPayload{Entity: args.Entity}
	for _, domain := range args.Domains {
		if !knownDomains[domain] {
			metrics.ToolFetches.WithLabelValues(domain, "unknown_domain").Inc()
			payload.Results = append(payload.Results, NoData(domain, args.Entity, "unknown data domain"))
			continue
		}

		key := cache.DataKey(domain, args.Entity)
		d := domain
		raw, err := e.store.GetOrCompute(ctx, key, cache.ClassData, func(ctx context.Context) ([]byte, error) {
			metrics.CacheMisses.WithLabelValues(string(cache.ClassData)).Inc()
			result := e.client.Fetch(ctx, d, args.Entity)
			outcome := "found"
			if !result.Found {
				outcome = "no_data"
			}
			metrics.ToolFetches.WithLabelValues(d, outcome).Inc()
			return json.Marshal(result)
		})
		if err != nil {
			payload.Results = append(payload.Results, NoData(domain, args.Entity, "data fetch failed"))
			continue
		}

		var result Result
		if err := json.Unmarshal(raw, &result); err != nil {
			payload.Results = append(payload.Results, NoData(domain, args.Entity, "cached data unreadable"))
			continue
		}
		payload.Results = append(payload.Results, result)
	}

	return json.Marshal(payload)
}
