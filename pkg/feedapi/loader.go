package feedapi

import (
	"context"
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/samvad-hq/samvad-feed-loader/internal/logger"
	"github.com/samvad-hq/samvad-feed-loader/pkg/httpclient"
)

// RemoteLoader loads feed items from one endpoint through an httpclient.Client.
//
// Each Load issues its own GET. Completions are delivered on whatever
// goroutine the client completes on, and are dropped if the loader has been
// closed or garbage collected by then.
type RemoteLoader struct {
	url    string
	client httpclient.Client
	log    logger.Logger
	closed atomic.Bool
}

// Option customizes a RemoteLoader.
type Option func(*RemoteLoader)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(l *RemoteLoader) {
		l.log = logger.Ensure(log)
	}
}

// NewRemoteLoader builds a loader for url. No request is made until Load.
func NewRemoteLoader(url string, client httpclient.Client, opts ...Option) *RemoteLoader {
	l := &RemoteLoader{
		url:    url,
		client: client,
		log:    logger.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load requests the endpoint and calls completion exactly once with the
// outcome, unless the loader is gone before the client answers.
func (l *RemoteLoader) Load(ctx context.Context, completion func(LoadResult)) {
	if completion == nil {
		completion = func(LoadResult) {}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// The continuation must not keep the loader alive.
	self := weak.Make(l)
	log, url := l.log, l.url

	log.DebugObj("feed load requested", "feed_request", map[string]any{"url": url})

	l.client.Get(ctx, url, func(res httpclient.Result) {
		loader := self.Value()
		if loader == nil || loader.closed.Load() {
			log.DebugObj("feed load completion dropped", "feed_request", map[string]any{"url": url})
			return
		}
		completion(loader.interpret(res))
	})
}

// LoadSync runs Load and waits for its result or for ctx to end. A closed
// loader never answers, so LoadSync then returns only when ctx ends.
func (l *RemoteLoader) LoadSync(ctx context.Context) LoadResult {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan LoadResult, 1)
	l.Load(ctx, func(r LoadResult) { ch <- r })

	defer runtime.KeepAlive(l)
	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return Failure(ctx.Err())
	}
}

// Close stops delivery of any pending completion. In-flight requests still run.
func (l *RemoteLoader) Close() error {
	l.closed.Store(true)
	return nil
}

func (l *RemoteLoader) interpret(res httpclient.Result) LoadResult {
	if res.Err != nil || res.Response == nil {
		l.log.WarnObj("feed transport failed", "feed_error", map[string]any{
			"url":   l.url,
			"error": errString(res.Err),
		})
		return Failure(ErrConnectivity)
	}

	out := MapItems(res.Body, res.Response)
	if out.Err != nil {
		l.log.WarnObj("feed response rejected", "feed_error", map[string]any{
			"url":         l.url,
			"status_code": res.Response.StatusCode(),
			"body_bytes":  len(res.Body),
		})
		return out
	}
	l.log.DebugObj("feed loaded", "feed_result", map[string]any{
		"url":   l.url,
		"items": len(out.Items),
	})
	return out
}

func errString(err error) string {
	if err == nil {
		return "missing response"
	}
	return err.Error()
}
