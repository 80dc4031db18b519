package prompt

import (
	"context"
	"log/slog"
	"time"

	"github.com/creditwise/chat-gateway/internal/classifier"
	"github.com/creditwise/chat-gateway/internal/metrics"
)

// Resolver resolves one prompt variant per request through the ordered
// source chain: remote service, local templates, built-in defaults.
// Resolution never fails; the built-in tier exists for every
// classification value.
type Resolver struct {
	remote  *RemoteClient // nil when no service is configured
	catalog *Catalog      // nil when no service is configured
	local   *LocalStore   // nil when no local file is configured
	timeout time.Duration
	logger  *slog.Logger
}

// NewResolver creates a resolver. remote, catalog and local may each be
// nil; the chain skips unconfigured tiers.
func NewResolver(remote *RemoteClient, catalog *Catalog, local *LocalStore, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{
		remote:  remote,
		catalog: catalog,
		local:   local,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve returns exactly one variant for the classification. An
// explicit promptID overrides the classification-to-variant mapping on
// the remote tier.
func (r *Resolver) Resolve(ctx context.Context, class classifier.Classification, promptID, version string) *Variant {
	if v := r.resolveRemote(ctx, class, promptID, version); v != nil {
		metrics.PromptResolutions.WithLabelValues(string(TierRemote)).Inc()
		return v
	}

	if v := r.resolveLocal(class); v != nil {
		metrics.PromptResolutions.WithLabelValues(string(TierLocal)).Inc()
		return v
	}

	metrics.PromptResolutions.WithLabelValues(string(TierBuiltin)).Inc()
	return builtinVariant(class)
}

func (r *Resolver) resolveRemote(ctx context.Context, class classifier.Classification, promptID, version string) *Variant {
	if r.remote == nil {
		return nil
	}

	// Warm catalog first; it costs nothing and survives service outages.
	if r.catalog != nil {
		if promptID != "" {
			if p, ok := r.catalog.LookupID(promptID, version); ok {
				return r.toVariant(p, class)
			}
		} else if p, ok := r.catalog.LookupType(string(class.Type)); ok {
			return r.toVariant(p, class)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		p   *remotePrompt
		err error
	)
	if promptID != "" {
		p, err = r.remote.GetPrompt(callCtx, promptID, version)
	} else {
		p, err = r.remote.GetByQueryType(callCtx, string(class.Type))
	}
	if err != nil {
		metrics.PromptTierFailures.WithLabelValues(string(TierRemote)).Inc()
		r.logger.Warn("Remote prompt resolution failed", "query_type", class.Type, "prompt_id", promptID, "error", err)
		return nil
	}
	return r.toVariant(*p, class)
}

func (r *Resolver) toVariant(p remotePrompt, class classifier.Classification) *Variant {
	return &Variant{
		ID:             p.ID,
		Version:        p.Version,
		Source:         TierRemote,
		Template:       p.Template,
		Temperature:    p.Temperature,
		MaxTokens:      p.MaxTokens,
		RoutingContext: routingContext(class),
	}
}

func (r *Resolver) resolveLocal(class classifier.Classification) *Variant {
	if r.local == nil {
		return nil
	}
	p, ok := r.local.Lookup(class.Type)
	if !ok {
		metrics.PromptTierFailures.WithLabelValues(string(TierLocal)).Inc()
		return nil
	}
	version := p.Version
	if version == "" {
		version = "1"
	}
	return &Variant{
		ID:             p.ID,
		Version:        version,
		Source:         TierLocal,
		Template:       p.Template,
		Temperature:    p.Temperature,
		MaxTokens:      p.MaxTokens,
		RoutingContext: routingContext(class),
	}
}
