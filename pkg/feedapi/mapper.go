package feedapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-feed-loader/internal/domain"
	"github.com/samvad-hq/samvad-feed-loader/pkg/httpclient"
)

const canonicalUUIDLen = 36

// Wire keys are matched exactly; encoding/json struct decoding would fold case.
const (
	keyItems       = "items"
	keyID          = "id"
	keyImage       = "image"
	keyDescription = "description"
	keyLocation    = "location"
)

// wireItem is the encoded form EncodeItems writes.
type wireItem struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       string  `json:"image"`
}

type wireRoot struct {
	Items []wireItem `json:"items"`
}

// MapItems turns a completed exchange into a LoadResult. Anything other than
// a 200 carrying a fully valid feed is ErrInvalidData.
func MapItems(body []byte, resp httpclient.Response) LoadResult {
	if resp == nil || resp.StatusCode() != http.StatusOK {
		return Failure(ErrInvalidData)
	}
	items, err := decodeItems(body)
	if err != nil {
		return Failure(ErrInvalidData)
	}
	return Success(items)
}

func decodeItems(body []byte) ([]domain.FeedItem, error) {
	if !utf8.Valid(body) {
		return nil, errors.New("feed body is not valid utf-8")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	raw, ok := envelope[keyItems]
	if !ok {
		return nil, errors.New("items key missing")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if entries == nil {
		return nil, errors.New("items is null")
	}

	out := make([]domain.FeedItem, 0, len(entries))
	for i, entry := range entries {
		fi, err := decodeItem(entry)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		out = append(out, fi)
	}
	return out, nil
}

func decodeItem(raw json.RawMessage) (domain.FeedItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.FeedItem{}, err
	}
	if fields == nil {
		return domain.FeedItem{}, errors.New("null item")
	}

	rawID, err := requiredString(fields, keyID)
	if err != nil {
		return domain.FeedItem{}, err
	}
	rawImage, err := requiredString(fields, keyImage)
	if err != nil {
		return domain.FeedItem{}, err
	}
	description, err := optionalString(fields, keyDescription)
	if err != nil {
		return domain.FeedItem{}, err
	}
	location, err := optionalString(fields, keyLocation)
	if err != nil {
		return domain.FeedItem{}, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return domain.FeedItem{}, err
	}
	image, err := parseImageURL(rawImage)
	if err != nil {
		return domain.FeedItem{}, err
	}
	return domain.NewFeedItem(id, description, location, image), nil
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	v, err := optionalString(fields, key)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	return *v, nil
}

// optionalString returns nil for an absent or null key.
func optionalString(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// parseUUID accepts only the canonical 8-4-4-4-12 form.
func parseUUID(raw string) (uuid.UUID, error) {
	if len(raw) != canonicalUUIDLen {
		return uuid.Nil, fmt.Errorf("id %q is not a canonical uuid", raw)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("id %q: %w", raw, err)
	}
	return id, nil
}

func parseImageURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("image %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("image %q is not an absolute url", raw)
	}
	return raw, nil
}

// EncodeItems renders items in the wire shape MapItems accepts.
func EncodeItems(items []domain.FeedItem) ([]byte, error) {
	wire := make([]wireItem, 0, len(items))
	for _, fi := range items {
		wire = append(wire, wireItem{
			ID:          fi.ID.String(),
			Description: fi.Description,
			Location:    fi.Location,
			Image:       fi.ImageURL,
		})
	}
	return json.Marshal(wireRoot{Items: wire})
}
