package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestFeedItemEqualComparesOptionalValues(t *testing.T) {
	id := uuid.New()
	a := NewFeedItem(id, StringPtr("desc"), nil, "https://a-url.com")
	b := NewFeedItem(id, StringPtr("desc"), nil, "https://a-url.com")
	if !a.Equal(b) {
		t.Fatalf("expected equal items: %+v vs %+v", a, b)
	}

	c := NewFeedItem(id, StringPtr(""), nil, "https://a-url.com")
	if a.Equal(c) {
		t.Fatalf("description mismatch should not be equal")
	}

	d := NewFeedItem(id, StringPtr("desc"), StringPtr(""), "https://a-url.com")
	if a.Equal(d) {
		t.Fatalf("absent and empty location must differ")
	}
}

func TestNewFeedItemCopiesOptionalText(t *testing.T) {
	desc := "original"
	item := NewFeedItem(uuid.New(), &desc, nil, "https://a-url.com")
	desc = "changed"
	if *item.Description != "original" {
		t.Fatalf("item description mutated through caller pointer: %q", *item.Description)
	}
}

func TestEqualItemsRespectsOrder(t *testing.T) {
	i1 := NewFeedItem(uuid.New(), nil, nil, "https://a-url.com")
	i2 := NewFeedItem(uuid.New(), nil, nil, "https://b-url.com")

	if !EqualItems([]FeedItem{i1, i2}, []FeedItem{i1, i2}) {
		t.Fatalf("expected equal lists")
	}
	if EqualItems([]FeedItem{i1, i2}, []FeedItem{i2, i1}) {
		t.Fatalf("order must matter")
	}
	if EqualItems([]FeedItem{i1}, nil) {
		t.Fatalf("length must matter")
	}
}
