package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-feed-loader/internal/domain"
	"github.com/samvad-hq/samvad-feed-loader/internal/logger"
	"github.com/samvad-hq/samvad-feed-loader/pkg/endpoints"
	"github.com/samvad-hq/samvad-feed-loader/pkg/feedapi"
	"github.com/samvad-hq/samvad-feed-loader/pkg/httpclient"
	"github.com/samvad-hq/samvad-feed-loader/pkg/publishers"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultConcurrency = 4

// Service runs load passes over a set of endpoints.
type Service struct {
	factory     LoaderFactory
	publisher   EventPublisher
	deduper     Deduper
	log         logger.Logger
	concurrency int
	limiter     *rate.Limiter

	mu      sync.Mutex
	loaders map[string]FeedLoader
}

// Option customizes a Service.
type Option func(*Service)

// WithRateLimit caps how many endpoint loads start per second across a pass.
// A non-positive rate leaves loads unthrottled.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewService wires a collector. A nil deduper forwards every item on every pass.
func NewService(factory LoaderFactory, publisher EventPublisher, deduper Deduper, log logger.Logger, concurrency int, opts ...Option) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	s := &Service{
		factory:     factory,
		publisher:   publisher,
		deduper:     deduper,
		log:         logger.Ensure(log),
		concurrency: concurrency,
		loaders:     make(map[string]FeedLoader),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteLoaderFactory returns a factory building feedapi.RemoteLoader values
// that share client.
func RemoteLoaderFactory(client httpclient.Client, log logger.Logger) LoaderFactory {
	return func(ep endpoints.Endpoint) FeedLoader {
		return feedapi.NewRemoteLoader(ep.URL, client, feedapi.WithLogger(log))
	}
}

// Run executes one load pass for all endpoints and joins their failures.
func (s *Service) Run(ctx context.Context, eps []endpoints.Endpoint) error {
	if s == nil || s.factory == nil {
		return fmt.Errorf("collector service is not initialized")
	}
	if len(eps) == 0 {
		return fmt.Errorf("no endpoints configured for loading")
	}

	errs := s.runAll(ctx, eps)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, eps []endpoints.Endpoint) []error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, ep := range eps {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := s.runEndpoint(ctx, ep); err != nil {
				s.log.ErrorObj("endpoint load failed", "endpoint_error", map[string]any{
					"endpoint_id": ep.ID,
					"error":       err.Error(),
				})
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

func (s *Service) runEndpoint(ctx context.Context, ep endpoints.Endpoint) error {
	if s.limiter != nil {
		// Wait only fails when ctx ends, or would end, before a token frees up.
		if err := s.limiter.Wait(ctx); err != nil {
			s.log.WarnObj("endpoint load skipped", "endpoint_skip", map[string]any{
				"endpoint_id": ep.ID,
				"reason":      err.Error(),
			})
			return nil
		}
	}

	res := s.loaderFor(ep).LoadSync(ctx)
	if res.Err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("load endpoint %s: %w", ep.ID, res.Err)
	}

	fresh := s.filterNewItems(ep, res.Items)
	published, err := s.publishItems(ctx, ep, fresh)

	s.log.InfoObj("endpoint load completed", "endpoint_result", map[string]any{
		"endpoint_id":     ep.ID,
		"items_loaded":    len(res.Items),
		"items_new":       len(fresh),
		"items_published": published,
	})
	return err
}

func (s *Service) loaderFor(ep endpoints.Endpoint) FeedLoader {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.loaders[ep.ID]; ok {
		return l
	}
	l := s.factory(ep)
	s.loaders[ep.ID] = l
	return l
}

// filterNewItems drops items the deduper already saw. Lookup failures keep the item.
func (s *Service) filterNewItems(ep endpoints.Endpoint, items []domain.FeedItem) []domain.FeedItem {
	if s.deduper == nil {
		return items
	}

	out := make([]domain.FeedItem, 0, len(items))
	for _, item := range items {
		seen, err := s.deduper.SeenItem(ep.ID, item.ID)
		if err != nil {
			s.log.WarnObj("seen item lookup failed", "dedupe_error", map[string]any{
				"endpoint_id": ep.ID,
				"item_id":     item.ID.String(),
				"error":       err.Error(),
			})
		}
		if seen {
			continue
		}
		out = append(out, item)
	}
	return out
}

// publishItems sends every item and marks the ones at least one sink accepted.
func (s *Service) publishItems(ctx context.Context, ep endpoints.Endpoint, items []domain.FeedItem) (int, error) {
	if s.publisher == nil || len(items) == 0 {
		return 0, nil
	}

	var (
		errs      []error
		delivered []uuid.UUID
	)
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		n, err := s.publisher.Publish(ctx, publishers.NewEvent(ep.ID, ep.Name, item))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish item %s from %s: %w", item.ID, ep.ID, err))
		}
		if n > 0 {
			delivered = append(delivered, item.ID)
		}
	}

	if s.deduper != nil && len(delivered) > 0 {
		if err := s.deduper.MarkItems(ep.ID, delivered); err != nil {
			errs = append(errs, fmt.Errorf("mark items for %s: %w", ep.ID, err))
		}
	}
	return len(delivered), errors.Join(errs...)
}

// Close tears down every loader; pending completions are dropped.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, l := range s.loaders {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close loader %s: %w", id, err))
		}
		delete(s.loaders, id)
	}
	return errors.Join(errs...)
}
