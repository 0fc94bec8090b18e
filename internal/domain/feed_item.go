package domain

import "github.com/google/uuid"

// FeedItem is one entry of a remote feed. Values are never mutated after
// construction; a nil Description or Location means the field was absent.
type FeedItem struct {
	ID          uuid.UUID `json:"id"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	ImageURL    string    `json:"image"`
}

// NewFeedItem builds a FeedItem, copying the optional text values.
func NewFeedItem(id uuid.UUID, description, location *string, imageURL string) FeedItem {
	return FeedItem{
		ID:          id,
		Description: cloneString(description),
		Location:    cloneString(location),
		ImageURL:    imageURL,
	}
}

// Equal reports whether every field of f and other matches.
func (f FeedItem) Equal(other FeedItem) bool {
	return f.ID == other.ID &&
		f.ImageURL == other.ImageURL &&
		equalOptional(f.Description, other.Description) &&
		equalOptional(f.Location, other.Location)
}

// EqualItems compares two item lists element by element, order included.
func EqualItems(a, b []FeedItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string { return &s }

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
