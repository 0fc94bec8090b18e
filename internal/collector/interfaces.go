package collector

import (
	"context"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-feed-loader/pkg/endpoints"
	"github.com/samvad-hq/samvad-feed-loader/pkg/feedapi"
	"github.com/samvad-hq/samvad-feed-loader/pkg/publishers"
)

// FeedLoader is the part of feedapi.RemoteLoader the collector drives.
type FeedLoader interface {
	LoadSync(ctx context.Context) feedapi.LoadResult
	Close() error
}

// LoaderFactory builds the loader for an endpoint. It is called once per endpoint.
type LoaderFactory func(ep endpoints.Endpoint) FeedLoader

// EventPublisher publishes loaded items downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers which items were already forwarded.
type Deduper interface {
	SeenItem(endpointID string, id uuid.UUID) (bool, error)
	MarkItems(endpointID string, ids []uuid.UUID) error
}
