package feedapi

import "github.com/samvad-hq/samvad-feed-loader/internal/domain"

// LoadResult is the outcome of a load: either the full item list or an error.
type LoadResult struct {
	Items []domain.FeedItem
	Err   error
}

// Success wraps a decoded item list. A nil list becomes an empty one.
func Success(items []domain.FeedItem) LoadResult {
	if items == nil {
		items = []domain.FeedItem{}
	}
	return LoadResult{Items: items}
}

// Failure wraps an error.
func Failure(err error) LoadResult {
	return LoadResult{Err: err}
}

// IsSuccess reports whether the result carries items.
func (r LoadResult) IsSuccess() bool { return r.Err == nil }
