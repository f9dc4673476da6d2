package item

import (
	"fmt"
	"strings"
	"time"
)

// Type is the kind of content a stored item was created from.
type Type string

const (
	// TypeText is free text entered by the user.
	TypeText Type = "text"
	// TypeURL is a web page captured by URL.
	TypeURL Type = "url"
	// TypeImage is an uploaded image.
	TypeImage Type = "image"
)

// ParseType validates a stored item type.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeText, TypeURL, TypeImage:
		return t, nil
	default:
		return "", fmt.Errorf("unknown item type %q", s)
	}
}

// QueryType narrows a search to one item type; QueryAll disables the type filter.
type QueryType string

// Query types accepted by search; the first three mirror the item types.
const (
	QueryText  QueryType = QueryType(TypeText)
	QueryURL   QueryType = QueryType(TypeURL)
	QueryImage QueryType = QueryType(TypeImage)
	QueryAll   QueryType = "all"
)

// ParseQueryType maps any value outside {text, url, image, all} to QueryAll.
func ParseQueryType(s string) QueryType {
	switch q := QueryType(strings.ToLower(strings.TrimSpace(s))); q {
	case QueryText, QueryURL, QueryImage, QueryAll:
		return q
	default:
		return QueryAll
	}
}

// Item is one persisted unit of user content.
type Item struct {
	id             string
	userID         string
	itemType       Type
	title          string
	summary        string
	content        string
	tags           []string
	category       []string
	sourcePlatform string
	mediaURL       string
	embedding      []float32
	createdAt      time.Time
}

// Fields groups the mutable-at-construction attributes of an Item.
type Fields struct {
	Title          string
	Summary        string
	Content        string
	Tags           []string
	Category       []string
	SourcePlatform string
	MediaURL       string
	Embedding      []float32
}

// New validates and creates an item. Tags are lower-cased and deduplicated.
func New(id, userID string, t Type, f Fields, createdAt time.Time) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item id is required")
	}
	if userID == "" {
		return Item{}, fmt.Errorf("user id is required")
	}
	if _, err := ParseType(string(t)); err != nil {
		return Item{}, err
	}
	return Item{
		id:             id,
		userID:         userID,
		itemType:       t,
		title:          f.Title,
		summary:        f.Summary,
		content:        f.Content,
		tags:           NormalizeTags(f.Tags),
		category:       f.Category,
		sourcePlatform: f.SourcePlatform,
		mediaURL:       f.MediaURL,
		embedding:      f.Embedding,
		createdAt:      createdAt.UTC(),
	}, nil
}

// Reconstruct restores an item from storage without validation.
func Reconstruct(id, userID string, t Type, f Fields, createdAt time.Time) Item {
	return Item{
		id: id, userID: userID, itemType: t,
		title: f.Title, summary: f.Summary, content: f.Content,
		tags: f.Tags, category: f.Category,
		sourcePlatform: f.SourcePlatform, mediaURL: f.MediaURL,
		embedding: f.Embedding, createdAt: createdAt,
	}
}

func (i *Item) ID() string             { return i.id }
func (i *Item) UserID() string         { return i.userID }
func (i *Item) Type() Type             { return i.itemType }
func (i *Item) Title() string          { return i.title }
func (i *Item) Summary() string        { return i.summary }
func (i *Item) Content() string        { return i.content }
func (i *Item) Tags() []string         { return i.tags }
func (i *Item) Category() []string     { return i.category }
func (i *Item) SourcePlatform() string { return i.sourcePlatform }
func (i *Item) MediaURL() string       { return i.mediaURL }
func (i *Item) Embedding() []float32   { return i.embedding }
func (i *Item) CreatedAt() time.Time   { return i.createdAt }

// HasEmbedding reports whether the item can take part in similarity ranking.
func (i *Item) HasEmbedding() bool { return len(i.embedding) > 0 }

// NormalizeTags lower-cases, trims and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
