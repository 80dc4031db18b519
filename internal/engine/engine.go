package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/creditwise/chat-gateway/internal/cache"
	"github.com/creditwise/chat-gateway/internal/classifier"
	"github.com/creditwise/chat-gateway/internal/metrics"
	"github.com/creditwise/chat-gateway/internal/prompt"
	"github.com/creditwise/chat-gateway/internal/provider"
	"github.com/creditwise/chat-gateway/internal/retrieval"
)

// State is the per-request execution state
type State string

const (
	StateClassified    State = "CLASSIFIED"
	StatePrompted      State = "PROMPTED"
	StateDispatched    State = "DISPATCHED"
	StateToolRequested State = "TOOL_REQUESTED"
	StateToolExecuted  State = "TOOL_EXECUTED"
	StateFinalized     State = "FINALIZED"
)

// Dispatcher sends normalized requests to the provider for a model
type Dispatcher interface {
	Send(ctx context.Context, model string, req *provider.Request) (*provider.Response, error)
	LimitsFor(model string) (provider.Limits, error)
}

// ToolExecutor runs one data-retrieval tool call
type ToolExecutor interface {
	Execute(ctx context.Context, call provider.ToolCall) ([]byte, error)
}

// Request is a parsed chat completion request
type Request struct {
	Model         string
	Messages      []provider.Message
	Temperature   *float64
	MaxTokens     *int
	PromptID      string
	PromptVersion string
}

// Usage aggregates token usage across all provider calls in a request
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Outcome is the finalized result of processing one request
type Outcome struct {
	Answer         string
	Model          string
	Provider       string
	Usage          Usage
	Variant        *prompt.Variant
	Classification classifier.Classification
	ToolInvoked    bool
	Forced         bool
	Truncated      bool
	CacheHit       bool
}

// cachedAnswer is the response-cache payload
type cachedAnswer struct {
	Answer        string `json:"answer"`
	PromptID      string `json:"prompt_id"`
	PromptVersion string `json:"prompt_version"`
}

const fallbackAnswer = "I'm sorry, I wasn't able to complete that request. Please try again."

// Engine orchestrates classification, prompt resolution, tool calling
// and provider dispatch for one request at a time. No per-request state
// is shared; the cache store is the only synchronization point.
type Engine struct {
	classifier     *classifier.Classifier
	resolver       *prompt.Resolver
	dispatcher     Dispatcher
	executor       ToolExecutor
	store          cache.Store
	tools          []provider.ToolDescriptor
	requestTimeout time.Duration
	logger         *slog.Logger
}

// New creates an engine
func New(cls *classifier.Classifier, resolver *prompt.Resolver, dispatcher Dispatcher, executor ToolExecutor, store cache.Store, logger *slog.Logger) *Engine {
	return &Engine{
		classifier:     cls,
		resolver:       resolver,
		dispatcher:     dispatcher,
		executor:       executor,
		store:          store,
		tools:          retrieval.Descriptors(),
		requestTimeout: 2 * time.Minute,
		logger:         logger,
	}
}

// Process runs the request through the state machine:
// CLASSIFIED -> PROMPTED -> DISPATCHED -> (TOOL_REQUESTED ->
// TOOL_EXECUTED)? -> FINALIZED. At most one tool round per request.
func (e *Engine) Process(ctx context.Context, req *Request) (*Outcome, error) {
	userText := LatestUserText(req.Messages)
	class := e.classifier.Classify(userText)
	metrics.Classifications.WithLabelValues(string(class.Type)).Inc()
	state := StateClassified

	variant := e.resolver.Resolve(ctx, class, req.PromptID, req.PromptVersion)
	state = e.advance(state, StatePrompted, class)

	entity := ExtractEntity(req.Messages)

	outcome := &Outcome{
		Model:          req.Model,
		Variant:        variant,
		Classification: class,
	}

	respKey := ""
	if class.Type != classifier.TypeFallback && entity != "" {
		respKey = cache.ResponseKey(string(class.Type), entity, userText)
		if raw, ok, err := e.store.Get(ctx, respKey); err == nil && ok {
			var ca cachedAnswer
			if err := json.Unmarshal(raw, &ca); err == nil {
				metrics.CacheHits.WithLabelValues(string(cache.ClassResponse)).Inc()
				outcome.Answer = ca.Answer
				outcome.CacheHit = true
				return outcome, nil
			}
		}
		metrics.CacheMisses.WithLabelValues(string(cache.ClassResponse)).Inc()
	}

	// Detach from the client connection: if the caller disconnects,
	// in-flight provider and tool calls still complete and populate
	// the cache for subsequent callers.
	procCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.requestTimeout)
	defer cancel()

	conv := make([]provider.Message, 0, len(req.Messages)+1)
	conv = append(conv, provider.Message{Role: provider.RoleSystem, Content: variant.SystemPrompt()})
	for _, m := range req.Messages {
		if m.Role != provider.RoleSystem {
			conv = append(conv, m)
		}
	}

	temperature := req.Temperature
	if temperature == nil {
		temperature = variant.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == nil {
		maxTokens = variant.MaxTokens
	}

	resp, err := e.dispatcher.Send(procCtx, req.Model, &provider.Request{
		Messages:    conv,
		Tools:       e.tools,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}
	state = e.advance(state, StateDispatched, class)
	outcome.Provider = resp.Provider
	addUsage(&outcome.Usage, resp)

	var toolCall *provider.ToolCall
	switch {
	case len(resp.ToolCalls) > 0:
		tc := resp.ToolCalls[0]
		toolCall = &tc
		state = e.advance(state, StateToolRequested, class)
	case classifier.NeedsTool(class.Type) && entity != "":
		// The model answered in prose where a data fetch was expected
		// (or described the call as text instead of invoking it).
		// Synthesize the call and execute it directly.
		args, _ := json.Marshal(retrieval.ToolArgs{
			Entity:  entity,
			Domains: classifier.Domains(class.Type),
		})
		toolCall = &provider.ToolCall{ID: "forced_1", Name: retrieval.ToolName, Arguments: string(args)}
		outcome.Forced = true
		metrics.ForcedInvocations.Inc()
		state = e.advance(state, StateToolRequested, class)
	}

	if toolCall != nil {
		if limits, lerr := e.dispatcher.LimitsFor(req.Model); lerr == nil {
			var truncated bool
			conv, truncated = truncateToBudget(conv, limits.ContextWindow)
			if truncated {
				outcome.Truncated = true
				metrics.ContextTruncations.Inc()
				e.logger.Warn("Conversation truncated to fit context budget",
					"model", req.Model, "window", limits.ContextWindow)
			}
		}

		payload, terr := e.executor.Execute(procCtx, *toolCall)
		if terr != nil {
			// The executor degrades internally; this is a last resort.
			payload, _ = json.Marshal(retrieval.ToolPayload{
				Results: []retrieval.Result{retrieval.NoData("unknown", entity, "data fetch failed")},
			})
		}
		state = e.advance(state, StateToolExecuted, class)
		outcome.ToolInvoked = true

		conv = append(conv, provider.Message{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{*toolCall}})
		conv = append(conv, provider.Message{
			Role:       provider.RoleTool,
			Name:       toolCall.Name,
			ToolCallID: toolCall.ID,
			Content:    string(payload),
		})

		// Final call advertises no tools: the model gets exactly one
		// opportunity per request, whatever its reply asks for.
		finalResp, err := e.dispatcher.Send(procCtx, req.Model, &provider.Request{
			Messages:    conv,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return nil, err
		}
		outcome.Provider = finalResp.Provider
		addUsage(&outcome.Usage, finalResp)
		resp = finalResp
	}

	state = e.advance(state, StateFinalized, class)

	outcome.Answer = strings.TrimSpace(resp.Content)
	if outcome.Answer == "" {
		outcome.Answer = fallbackAnswer
	}

	if respKey != "" && outcome.Answer != fallbackAnswer {
		raw, err := json.Marshal(cachedAnswer{
			Answer:        outcome.Answer,
			PromptID:      variant.ID,
			PromptVersion: variant.Version,
		})
		if err == nil {
			if err := e.store.Set(procCtx, respKey, raw, cache.ClassResponse); err != nil {
				e.logger.Warn("Failed to cache response", "error", err)
			}
		}
	}

	return outcome, nil
}

func (e *Engine) advance(from, to State, class classifier.Classification) State {
	e.logger.Debug("State transition", "from", from, "to", to, "classification", class.Type)
	return to
}

func addUsage(u *Usage, resp *provider.Response) {
	u.PromptTokens += resp.PromptTokens
	u.CompletionTokens += resp.CompletionTokens
	u.TotalTokens += resp.TotalTokens
}
