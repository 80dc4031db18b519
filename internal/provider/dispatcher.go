package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/creditwise/chat-gateway/internal/config"
	"github.com/creditwise/chat-gateway/internal/metrics"
)

// route maps a logical model name to provider-native targets
type route struct {
	primary       string
	nativeModel   string
	fallback      string
	fallbackModel string
}

// Dispatcher normalizes the three provider families behind one send
// call. Providers and routes are fixed at construction; no ambient
// singletons.
type Dispatcher struct {
	providers map[string]Provider
	routes    map[string]route
	logger    *slog.Logger
}

// NewDispatcher builds providers and the model route table from config
func NewDispatcher(cfg *config.Config, logger *slog.Logger) (*Dispatcher, error) {
	providers := make(map[string]Provider)
	for _, pc := range cfg.Providers {
		p, err := createProvider(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s provider: %w", pc.Name, err)
		}
		providers[pc.Name] = p
	}
	return NewDispatcherWithProviders(cfg.Models, providers, logger)
}

// NewDispatcherWithProviders wires pre-built providers to model routes
func NewDispatcherWithProviders(models []config.ModelRoute, providers map[string]Provider, logger *slog.Logger) (*Dispatcher, error) {
	routes := make(map[string]route)
	for _, m := range models {
		if _, ok := providers[m.Provider]; !ok {
			return nil, fmt.Errorf("model %s routes to unknown provider %s", m.Name, m.Provider)
		}
		native := m.NativeModel
		if native == "" {
			native = m.Name
		}
		fallbackModel := m.FallbackModel
		if fallbackModel == "" {
			fallbackModel = native
		}
		if m.Fallback != "" {
			if _, ok := providers[m.Fallback]; !ok {
				return nil, fmt.Errorf("model %s has unknown fallback provider %s", m.Name, m.Fallback)
			}
		}
		routes[m.Name] = route{
			primary:       m.Provider,
			nativeModel:   native,
			fallback:      m.Fallback,
			fallbackModel: fallbackModel,
		}
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("at least one model route is required")
	}
	return &Dispatcher{providers: providers, routes: routes, logger: logger}, nil
}

func createProvider(pc config.ProviderConfig) (Provider, error) {
	switch pc.Name {
	case "openai":
		return NewOpenAIClient(&OpenAIConfig{
			BaseURL:       pc.BaseURL,
			APIKey:        pc.APIKey,
			Timeout:       pc.GetTimeout(),
			ContextWindow: pc.ContextWindow,
		})
	case "google":
		return NewGoogleClient(&GoogleConfig{
			BaseURL:       pc.BaseURL,
			APIKey:        pc.APIKey,
			Timeout:       pc.GetTimeout(),
			ContextWindow: pc.ContextWindow,
		})
	case "groq":
		return NewGroqClient(&GroqConfig{
			BaseURL:       pc.BaseURL,
			APIKey:        pc.APIKey,
			Timeout:       pc.GetTimeout(),
			ContextWindow: pc.ContextWindow,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", pc.Name)
	}
}

// Send routes the request to the provider for the logical model. A
// retryable failure is retried exactly once on the configured alternate
// provider; terminal failures surface immediately.
func (d *Dispatcher) Send(ctx context.Context, model string, req *Request) (*Response, error) {
	rt, ok := d.routes[model]
	if !ok {
		return nil, &Error{Provider: "dispatcher", Kind: KindBadRequest, Err: fmt.Errorf("unknown model %s", model)}
	}

	resp, err := d.sendTo(ctx, rt.primary, rt.nativeModel, req)
	if err == nil {
		return resp, nil
	}

	var provErr *Error
	if errors.As(err, &provErr) && provErr.Retryable() && rt.fallback != "" {
		d.logger.Warn("Provider failed, retrying on alternate",
			"model", model, "provider", rt.primary, "alternate", rt.fallback, "error", err)
		return d.sendTo(ctx, rt.fallback, rt.fallbackModel, req)
	}
	return nil, err
}

func (d *Dispatcher) sendTo(ctx context.Context, providerName, nativeModel string, req *Request) (*Response, error) {
	p := d.providers[providerName]
	sendReq := *req
	sendReq.Model = nativeModel

	callCtx, cancel := context.WithTimeout(ctx, p.Limits().Timeout)
	defer cancel()

	resp, err := p.Send(callCtx, &sendReq)
	if err != nil {
		var provErr *Error
		if errors.As(err, &provErr) {
			metrics.ProviderErrors.WithLabelValues(providerName, string(provErr.Kind)).Inc()
		} else {
			metrics.ProviderErrors.WithLabelValues(providerName, "other").Inc()
		}
		return nil, err
	}
	metrics.ProviderLatency.WithLabelValues(providerName).Observe(resp.Latency.Seconds())
	return resp, nil
}

// LimitsFor returns the acting provider's limits for a logical model
func (d *Dispatcher) LimitsFor(model string) (Limits, error) {
	rt, ok := d.routes[model]
	if !ok {
		return Limits{}, fmt.Errorf("unknown model %s", model)
	}
	return d.providers[rt.primary].Limits(), nil
}

// ListModels returns the logical model names the gateway serves
func (d *Dispatcher) ListModels() []string {
	models := make([]string, 0, len(d.routes))
	for name := range d.routes {
		models = append(models, name)
	}
	sort.Strings(models)
	return models
}
