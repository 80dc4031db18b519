package prompt

import (
	"context"
	"log/slog"
	"sync"

	"github.com/creditwise/chat-gateway/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Catalog is a warm copy of the remote prompt catalog. Resolution
// consults it before issuing a per-request remote lookup, and a cron
// job keeps it fresh. A failed refresh leaves the previous catalog
// intact.
type Catalog struct {
	remote *RemoteClient
	logger *slog.Logger

	mu     sync.RWMutex
	byID   map[string]remotePrompt // key: id or id@version
	byType map[string]remotePrompt

	cron *cron.Cron
}

// NewCatalog creates an empty catalog backed by the remote client
func NewCatalog(remote *RemoteClient, logger *slog.Logger) *Catalog {
	return &Catalog{
		remote: remote,
		logger: logger,
		byID:   make(map[string]remotePrompt),
		byType: make(map[string]remotePrompt),
	}
}

// Refresh replaces the catalog contents from the remote service
func (c *Catalog) Refresh(ctx context.Context) error {
	prompts, err := c.remote.ListPrompts(ctx)
	if err != nil {
		metrics.PromptTierFailures.WithLabelValues(string(TierRemote)).Inc()
		c.logger.Warn("Prompt catalog refresh failed", "error", err)
		return err
	}

	byID := make(map[string]remotePrompt, len(prompts)*2)
	byType := make(map[string]remotePrompt, len(prompts))
	for _, p := range prompts {
		byID[p.ID] = p
		if p.Version != "" {
			byID[p.ID+"@"+p.Version] = p
		}
		if p.QueryType != "" {
			byType[p.QueryType] = p
		}
	}

	c.mu.Lock()
	c.byID = byID
	c.byType = byType
	c.mu.Unlock()

	c.logger.Info("Prompt catalog refreshed", "prompts", len(prompts))
	return nil
}

// StartRefresh schedules periodic refreshes with the given cron spec
func (c *Catalog) StartRefresh(schedule string) error {
	c.cron = cron.New()
	_, err := c.cron.AddFunc(schedule, func() {
		c.Refresh(context.Background())
	})
	if err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

// StopRefresh stops the refresh schedule and waits for a running job
func (c *Catalog) StopRefresh() {
	if c.cron != nil {
		ctx := c.cron.Stop()
		<-ctx.Done()
	}
}

// LookupID returns a cataloged prompt by id and optional version
func (c *Catalog) LookupID(id, version string) (remotePrompt, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if version != "" {
		p, ok := c.byID[id+"@"+version]
		return p, ok
	}
	p, ok := c.byID[id]
	return p, ok
}

// LookupType returns a cataloged prompt by query type
func (c *Catalog) LookupType(queryType string) (remotePrompt, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byType[queryType]
	return p, ok
}
