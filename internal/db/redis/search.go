package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/synapse/internal/db"
)

const scoreAlias = "__vector_score"

// SearchKNN runs a filtered KNN vector similarity search via FT.SEARCH.
// Cosine distances are converted to similarity max(0, 1-d).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.VectorField == "" {
		return nil, fmt.Errorf("vector field is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	args := []string{q.IndexName, buildKNNQuery(q)}
	args = append(args, buildReturn(q.ReturnFields)...)
	args = append(args,
		"SORTBY", scoreAlias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		switch {
		case isRedisErr(err, "unknown index name", "no such index"):
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		case isRedisErr(err, "unknown command"):
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrSearchUnsupported}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// buildKNNQuery renders "(filters)=>[KNN k @field $BLOB EF_RUNTIME n AS __vector_score]".
func buildKNNQuery(q *db.KNNQuery) string {
	var b strings.Builder
	b.WriteString("[KNN ")
	b.WriteString(strconv.Itoa(q.K))
	b.WriteString(" @")
	b.WriteString(q.VectorField)
	b.WriteString(" $BLOB")
	if q.Candidates > 0 {
		b.WriteString(" EF_RUNTIME ")
		b.WriteString(strconv.Itoa(q.Candidates))
	}
	b.WriteString(" AS ")
	b.WriteString(scoreAlias)
	b.WriteString("]")

	filter := buildFilter(q.Filters)
	if filter == "" {
		return "*=>" + b.String()
	}
	return "(" + filter + ")=>" + b.String()
}

func buildReturn(fields []db.ReturnField) []string {
	if len(fields) == 0 {
		return nil
	}
	parts := make([]string, 0, len(fields)*3+1)
	for _, f := range fields {
		parts = append(parts, f.Path)
		if f.Alias != "" {
			parts = append(parts, "AS", f.Alias)
		}
	}
	parts = append(parts, scoreAlias)
	return append([]string{"RETURN", strconv.Itoa(len(parts))}, parts...)
}

// buildFilter ANDs equality clauses into TAG pre-filters.
func buildFilter(filters []db.Equality) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", f.Field, tagEscaper.Replace(f.Value)))
	}
	return strings.Join(parts, " ")
}

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}
		if scoreStr, ok := entry.Fields[scoreAlias]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = max(0, 1.0-d)
			}
			delete(entry.Fields, scoreAlias)
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
