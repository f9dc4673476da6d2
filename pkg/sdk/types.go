package synapse

import (
	"time"

	"github.com/kailas-cloud/synapse/internal/domain/search/result"
	ingestuc "github.com/kailas-cloud/synapse/internal/usecase/ingest"
)

// SearchResult is one matching item. Scores from the vector index and the
// exact scan are on different scales and must not be compared.
type SearchResult struct {
	ID             string
	Title          string
	Summary        string
	Tags           []string
	Category       []string
	Type           string
	SourcePlatform string
	MediaURL       string
	CreatedAt      time.Time
	Score          float64
}

// Added describes a stored item.
type Added struct {
	ID       string
	Title    string
	Summary  string
	Tags     []string
	Category []string
}

func searchResultsFromDomain(rs []result.Result) []SearchResult {
	out := make([]SearchResult, 0, len(rs))
	for i := range rs {
		r := &rs[i]
		out = append(out, SearchResult{
			ID:             r.ID(),
			Title:          r.Title(),
			Summary:        r.Summary(),
			Tags:           r.Tags(),
			Category:       r.Category(),
			Type:           r.Type(),
			SourcePlatform: r.SourcePlatform(),
			MediaURL:       r.MediaURL(),
			CreatedAt:      r.CreatedAt(),
			Score:          r.Score(),
		})
	}
	return out
}

func addedFromDomain(o ingestuc.Output) Added {
	return Added{
		ID:       o.ID,
		Title:    o.Title,
		Summary:  o.Summary,
		Tags:     o.Tags,
		Category: o.Category,
	}
}
