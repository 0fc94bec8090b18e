package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-feed-loader/internal/domain"
)

// Event is the payload published downstream for each freshly loaded item.
type Event struct {
	EndpointID   string          `json:"endpoint_id"`
	EndpointName string          `json:"endpoint_name"`
	Item         domain.FeedItem `json:"item"`
	LoadedAt     time.Time       `json:"loaded_at"`
}

// NewEvent constructs an Event for the given endpoint + item.
func NewEvent(endpointID, endpointName string, item domain.FeedItem) Event {
	return Event{
		EndpointID:   endpointID,
		EndpointName: endpointName,
		Item:         item,
		LoadedAt:     time.Now().UTC(),
	}
}

// attributes are the message attributes every queue/topic sink attaches.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"endpoint_id": e.EndpointID,
		"item_id":     e.Item.ID.String(),
	}
}
