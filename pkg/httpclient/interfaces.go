package httpclient

import "context"

// Response is the status metadata of a completed HTTP exchange.
type Response interface {
	StatusCode() int
	URL() string
}

// Result is the outcome of a single Get call. Exactly one of Err or
// (Body, Response) is set. Body is never nil on success.
type Result struct {
	Body     []byte
	Response Response
	Err      error
}

// Completion receives the outcome of a Get call.
type Completion func(Result)

// Client abstracts HTTP calls so callers can inject spies or different transports.
//
// Get returns immediately and invokes completion exactly once, possibly on
// another goroutine. Transport failures are delivered as Result.Err; any
// completed exchange, whatever its status, is delivered with Body and Response.
// Implementations must be safe for concurrent use.
type Client interface {
	Get(ctx context.Context, url string, completion Completion)
}

// Failure builds a Result carrying a transport error.
func Failure(err error) Result {
	return Result{Err: err}
}

// Success builds a Result for a completed exchange, substituting an empty body for nil.
func Success(body []byte, resp Response) Result {
	if body == nil {
		body = []byte{}
	}
	return Result{Body: body, Response: resp}
}

// StaticResponse is a plain Response value, handy for adapters and test doubles.
type StaticResponse struct {
	Code        int
	ResponseURL string
}

func (s StaticResponse) StatusCode() int { return s.Code }
func (s StaticResponse) URL() string     { return s.ResponseURL }
