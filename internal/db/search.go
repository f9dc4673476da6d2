package db

// Equality is a single pre-filter clause on a TAG field.
type Equality struct {
	Field string
	Value string
}

// ReturnField projects one document path into a search entry under Alias.
type ReturnField struct {
	Path  string
	Alias string
}

// KNNQuery is the input for native vector similarity search.
type KNNQuery struct {
	IndexName   string
	VectorField string // index alias of the vector attribute
	Vector      []float32
	Filters     []Equality
	// Candidates is the approximate-index candidate pool (EF_RUNTIME); 0 keeps the index default.
	Candidates   int
	K            int
	ReturnFields []ReturnField
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
