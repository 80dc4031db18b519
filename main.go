package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creditwise/chat-gateway/internal/cache"
	"github.com/creditwise/chat-gateway/internal/classifier"
	"github.com/creditwise/chat-gateway/internal/config"
	"github.com/creditwise/chat-gateway/internal/engine"
	"github.com/creditwise/chat-gateway/internal/logging"
	"github.com/creditwise/chat-gateway/internal/prompt"
	"github.com/creditwise/chat-gateway/internal/provider"
	"github.com/creditwise/chat-gateway/internal/retrieval"
	"github.com/creditwise/chat-gateway/internal/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	logger := logging.WithComponent("main")
	logger.Info("Starting chat gateway", "version", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "error", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Logging.Level)

	ttls := cache.TTLs{
		Data:     cfg.Cache.GetDataTTL(),
		Response: cfg.Cache.GetResponseTTL(),
	}
	var store cache.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, ttls)
		if err != nil {
			logger.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info("Redis cache connected", "addr", cfg.Redis.Addr)
	} else {
		store = cache.NewMemoryStore(ttls)
		logger.Info("Using in-memory cache")
	}

	// Prompt resolution chain: remote service, local file, built-ins.
	var (
		remote  *prompt.RemoteClient
		catalog *prompt.Catalog
		local   *prompt.LocalStore
	)
	if cfg.Prompts.ServiceURL != "" {
		remote = prompt.NewRemoteClient(prompt.RemoteConfig{
			URL:     cfg.Prompts.ServiceURL,
			APIKey:  cfg.Prompts.ServiceAPIKey,
			Timeout: cfg.Prompts.GetServiceTimeout(),
		})
		catalog = prompt.NewCatalog(remote, logging.WithComponent("prompt-catalog"))
		if err := catalog.Refresh(context.Background()); err != nil {
			logger.Warn("Initial prompt catalog refresh failed", "error", err)
		}
		if cfg.Prompts.RefreshSchedule != "" {
			if err := catalog.StartRefresh(cfg.Prompts.RefreshSchedule); err != nil {
				logger.Error("Invalid prompt refresh schedule", "schedule", cfg.Prompts.RefreshSchedule, "error", err)
				os.Exit(1)
			}
			defer catalog.StopRefresh()
			logger.Info("Prompt catalog refresh scheduled", "schedule", cfg.Prompts.RefreshSchedule)
		}
	}
	if cfg.Prompts.LocalFile != "" {
		local, err = prompt.LoadLocalStore(cfg.Prompts.LocalFile)
		if err != nil {
			logger.Error("Failed to load local prompts", "file", cfg.Prompts.LocalFile, "error", err)
			os.Exit(1)
		}
		logger.Info("Local prompts loaded", "file", cfg.Prompts.LocalFile)
	}
	resolver := prompt.NewResolver(remote, catalog, local, cfg.Prompts.GetServiceTimeout(), logging.WithComponent("prompt-resolver"))

	dispatcher, err := provider.NewDispatcher(cfg, logging.WithComponent("dispatcher"))
	if err != nil {
		logger.Error("Failed to create provider dispatcher", "error", err)
		os.Exit(1)
	}

	dataClient := retrieval.NewClient(retrieval.ClientConfig{
		URL:     cfg.DataService.URL,
		APIKey:  cfg.DataService.APIKey,
		Timeout: cfg.DataService.GetTimeout(),
	}, logging.WithComponent("data-client"))
	executor := retrieval.NewExecutor(dataClient, store, logging.WithComponent("tool-executor"))

	rules := classifier.DefaultRules().Merge(cfg.Classifier.Keywords)
	eng := engine.New(
		classifier.New(rules),
		resolver,
		dispatcher,
		executor,
		store,
		logging.WithComponent("engine"),
	)

	srv := server.New(cfg, eng, dispatcher, logging.WithComponent("server"))

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("Gateway listening", "host", cfg.Server.Host, "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}
