package item

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domitem "github.com/kailas-cloud/synapse/internal/domain/item"
)

// itemDoc is the RedisJSON document shape of a stored item.
type itemDoc struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Content        string    `json:"content,omitempty"`
	Tags           []string  `json:"tags"`
	Category       []string  `json:"category"`
	SourcePlatform string    `json:"source_platform"`
	MediaURL       string    `json:"media_url,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"` // omitted so the vector index skips unembedded items
	CreatedAt      string    `json:"created_at"`
}

// searchPaths is the projection used by filtered scans. Content never leaves the store here.
var searchPaths = []string{
	"$.id", "$.user_id", "$.type", "$.title", "$.summary", "$.tags", "$.category",
	"$.source_platform", "$.media_url", "$.embedding", "$.created_at",
}

func buildDoc(it *domitem.Item) itemDoc {
	return itemDoc{
		ID:             it.ID(),
		UserID:         it.UserID(),
		Type:           string(it.Type()),
		Title:          it.Title(),
		Summary:        it.Summary(),
		Content:        it.Content(),
		Tags:           nonNil(it.Tags()),
		Category:       nonNil(it.Category()),
		SourcePlatform: it.SourcePlatform(),
		MediaURL:       it.MediaURL(),
		Embedding:      it.Embedding(),
		CreatedAt:      it.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func (d *itemDoc) toItem() domitem.Item {
	createdAt, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	return domitem.Reconstruct(d.ID, d.UserID, domitem.Type(d.Type), domitem.Fields{
		Title:          d.Title,
		Summary:        d.Summary,
		Content:        d.Content,
		Tags:           d.Tags,
		Category:       d.Category,
		SourcePlatform: d.SourcePlatform,
		MediaURL:       d.MediaURL,
		Embedding:      d.Embedding,
	}, createdAt)
}

// scopeFields exposes the filterable fields for filter.Scope.Matches.
func (d *itemDoc) scopeFields() map[string]string {
	return map[string]string{"user_id": d.UserID, "type": d.Type}
}

// decodeDoc accepts either a whole document or a multi-path JSON.GET reply,
// which maps each "$.field" path to an array of matches.
func decodeDoc(raw []byte) (itemDoc, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return itemDoc{}, fmt.Errorf("unmarshal item: %w", err)
	}

	projected := false
	for k := range top {
		if strings.HasPrefix(k, "$.") {
			projected = true
			break
		}
	}

	if projected {
		flat := make(map[string]json.RawMessage, len(top))
		for k, v := range top {
			var matches []json.RawMessage
			if err := json.Unmarshal(v, &matches); err != nil {
				return itemDoc{}, fmt.Errorf("unmarshal path %s: %w", k, err)
			}
			if len(matches) > 0 {
				flat[strings.TrimPrefix(k, "$.")] = matches[0]
			}
		}
		top = flat
	}

	data, err := json.Marshal(top)
	if err != nil {
		return itemDoc{}, fmt.Errorf("remarshal item: %w", err)
	}
	var d itemDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return itemDoc{}, fmt.Errorf("unmarshal item: %w", err)
	}
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
