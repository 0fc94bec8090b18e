package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Get performs an HTTP GET on a background goroutine and delivers the outcome to completion.
func (r *RestyClient) Get(ctx context.Context, url string, completion Completion) {
	if completion == nil {
		completion = func(Result) {}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		completion(r.Do(ctx, url))
	}()
}

// Do performs the GET synchronously.
func (r *RestyClient) Do(ctx context.Context, url string) Result {
	resp, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Failure(err)
	}
	return Success(resp.Body(), &restyResponseAdapter{resp: resp})
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponseAdapter) URL() string {
	if raw := r.resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return r.resp.Request.URL
}
