package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-feed-loader/internal/collector"
	"github.com/samvad-hq/samvad-feed-loader/internal/config"
	"github.com/samvad-hq/samvad-feed-loader/internal/logger"
	"github.com/samvad-hq/samvad-feed-loader/internal/storage"
	"github.com/samvad-hq/samvad-feed-loader/pkg/endpoints"
	"github.com/samvad-hq/samvad-feed-loader/pkg/httpclient"
	"github.com/samvad-hq/samvad-feed-loader/pkg/publishers"
)

// Runner drives the load loop: it owns the endpoint registry, the collector
// with its per-endpoint loaders, the publisher fanout and the seen-item store.
type Runner struct {
	cfg          *config.Config
	endpointReg  *endpoints.Registry
	fanout       *publishers.Fanout
	service      *collector.Service
	loadInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewRunner builds a runner from config files.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	endpointReg, err := endpoints.LoadRegistry(cfg.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("load endpoints registry: %w", err)
	}
	endpointIDs := make([]string, 0)
	for _, ep := range endpointReg.Enabled() {
		endpointIDs = append(endpointIDs, ep.ID)
	}
	log.InfoObj("endpoints registry loaded", "endpoints_meta", map[string]any{
		"count":   len(endpointReg.All()),
		"enabled": endpointIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ItemTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"item_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	service := collector.NewService(
		collector.RemoteLoaderFactory(client, log),
		fanout,
		store,
		log,
		cfg.LoadConcurrency,
		collector.WithRateLimit(cfg.LoadRatePerSecond, cfg.LoadBurst),
	)

	return &Runner{
		cfg:          cfg,
		endpointReg:  endpointReg,
		fanout:       fanout,
		service:      service,
		loadInterval: cfg.LoadInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run loads every enabled endpoint once, then again on each tick, until the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("runner is not initialized")
	}
	defer r.shutdown()

	eps := r.endpointReg.Enabled()
	if len(eps) == 0 {
		r.log.WarnObj("no endpoints enabled; runner idle", "endpoints_file", r.cfg.EndpointsFile)
		<-ctx.Done()
		return nil
	}

	r.log.InfoObj("load loop starting", "runner_state", map[string]any{
		"endpoints_count":  len(eps),
		"publishers_count": r.fanout.Size(),
		"load_interval":    r.loadInterval.String(),
	})

	if err := r.runOnce(ctx, eps); err != nil {
		r.log.ErrorObj("initial load failed", "error", err)
	}

	ticker := time.NewTicker(r.loadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("load loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx, eps); err != nil {
				r.log.ErrorObj("scheduled load failed", "error", err)
			}
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, eps []endpoints.Endpoint) error {
	start := time.Now()
	r.log.InfoObj("load pass started", "pass_meta", map[string]any{
		"endpoints_count": len(eps),
		"started_at":      start.UTC(),
	})
	if err := r.service.Run(ctx, eps); err != nil {
		return err
	}
	r.log.InfoObj("load pass completed", "pass_meta", map[string]any{
		"endpoints_count": len(eps),
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})
	return nil
}

// shutdown closes loaders first so late completions never reach a closed sink.
func (r *Runner) shutdown() {
	var errs []error
	if err := r.service.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close loaders: %w", err))
	}
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publishers: %w", err))
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		r.log.ErrorObj("runner shutdown failed", "error", err)
	}
}
