package publishers

import (
	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-feed-loader/internal/domain"
)

var testItemID = uuid.MustParse("6f1c1b0e-9f7a-4d7e-8c55-0d1f2e3a4b5c")

func testEvent() Event {
	return NewEvent("endpoint-1", "Endpoint One", domain.NewFeedItem(
		testItemID,
		domain.StringPtr("a description"),
		nil,
		"https://img.example.com/1.png",
	))
}
