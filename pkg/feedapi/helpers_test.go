package feedapi

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-feed-loader/internal/domain"
	"github.com/samvad-hq/samvad-feed-loader/pkg/httpclient"
)

const anyURL = "https://a-url.com"

// httpClientSpy records requests and lets tests complete them later.
type httpClientSpy struct {
	mu       sync.Mutex
	messages []spyMessage
}

type spyMessage struct {
	url        string
	completion httpclient.Completion
}

func (s *httpClientSpy) Get(_ context.Context, url string, completion httpclient.Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, spyMessage{url: url, completion: completion})
}

func (s *httpClientSpy) requestedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, 0, len(s.messages))
	for _, m := range s.messages {
		urls = append(urls, m.url)
	}
	return urls
}

func (s *httpClientSpy) message(t *testing.T, index int) spyMessage {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= len(s.messages) {
		t.Fatalf("no request at index %d (have %d)", index, len(s.messages))
	}
	return s.messages[index]
}

func (s *httpClientSpy) completeWithError(t *testing.T, err error, index int) {
	t.Helper()
	s.message(t, index).completion(httpclient.Failure(err))
}

func (s *httpClientSpy) completeWithStatus(t *testing.T, code int, body []byte, index int) {
	t.Helper()
	m := s.message(t, index)
	m.completion(httpclient.Success(body, httpclient.StaticResponse{Code: code, ResponseURL: m.url}))
}

func makeItem(description, location *string, imageURL string) (domain.FeedItem, map[string]any) {
	fi := domain.NewFeedItem(uuid.New(), description, location, imageURL)
	wire := map[string]any{
		"id":    fi.ID.String(),
		"image": fi.ImageURL,
	}
	if description != nil {
		wire["description"] = *description
	}
	if location != nil {
		wire["location"] = *location
	}
	return fi, wire
}

func makeItemsJSON(t *testing.T, items []map[string]any) []byte {
	t.Helper()
	if items == nil {
		items = []map[string]any{}
	}
	data, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		t.Fatalf("marshal items: %v", err)
	}
	return data
}

func assertResult(t *testing.T, got, want LoadResult) {
	t.Helper()
	switch {
	case want.IsSuccess() && got.IsSuccess():
		if got.Items == nil {
			t.Fatalf("success must carry a non-nil list")
		}
		if !domain.EqualItems(got.Items, want.Items) {
			t.Fatalf("items = %+v, want %+v", got.Items, want.Items)
		}
	case !want.IsSuccess() && !got.IsSuccess():
		if got.Err != want.Err {
			t.Fatalf("error = %v, want %v", got.Err, want.Err)
		}
		if got.Items != nil {
			t.Fatalf("failure must not carry items: %+v", got.Items)
		}
	default:
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

// asyncClientStub answers every request with result from a new goroutine.
type asyncClientStub struct {
	result httpclient.Result
}

func (s *asyncClientStub) Get(_ context.Context, _ string, completion httpclient.Completion) {
	go completion(s.result)
}
