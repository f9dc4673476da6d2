package result

import "time"

// Result is a single search hit. It never carries the embedding, the raw content or the owner.
type Result struct {
	id             string
	title          string
	summary        string
	tags           []string
	category       []string
	itemType       string
	sourcePlatform string
	mediaURL       string
	createdAt      time.Time
	score          float64
}

// Fields holds the display attributes copied from a stored item.
type Fields struct {
	Title          string
	Summary        string
	Tags           []string
	Category       []string
	Type           string
	SourcePlatform string
	MediaURL       string
	CreatedAt      time.Time
}

// New creates a search result.
func New(id string, f Fields, score float64) Result {
	return Result{
		id:             id,
		title:          f.Title,
		summary:        f.Summary,
		tags:           f.Tags,
		category:       f.Category,
		itemType:       f.Type,
		sourcePlatform: f.SourcePlatform,
		mediaURL:       f.MediaURL,
		createdAt:      f.CreatedAt,
		score:          score,
	}
}

// ID returns the stored item identifier.
func (r *Result) ID() string { return r.id }

// Title returns the item title.
func (r *Result) Title() string { return r.title }

// Summary returns the item summary.
func (r *Result) Summary() string { return r.summary }

// Tags returns the item tags.
func (r *Result) Tags() []string { return r.tags }

// Category returns the item categories.
func (r *Result) Category() []string { return r.category }

// Type returns the item type.
func (r *Result) Type() string { return r.itemType }

// SourcePlatform returns the provenance label.
func (r *Result) SourcePlatform() string { return r.sourcePlatform }

// MediaURL returns the original resource location, if any.
func (r *Result) MediaURL() string { return r.mediaURL }

// CreatedAt returns the item creation time.
func (r *Result) CreatedAt() time.Time { return r.createdAt }

// Score returns the similarity score. Scores from different search paths are not comparable.
func (r *Result) Score() float64 { return r.score }

// Fields returns the display attributes without the score.
func (r *Result) Fields() Fields {
	return Fields{
		Title:          r.title,
		Summary:        r.summary,
		Tags:           r.tags,
		Category:       r.category,
		Type:           r.itemType,
		SourcePlatform: r.sourcePlatform,
		MediaURL:       r.mediaURL,
		CreatedAt:      r.createdAt,
	}
}

// Response is what a search returns to its caller.
type Response struct {
	Query   string
	Results []Result
}

// ResultsFound is the number of returned results, not a total match count.
func (r Response) ResultsFound() int { return len(r.Results) }
