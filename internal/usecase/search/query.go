package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
	"github.com/kailas-cloud/synapse/internal/logger"
)

// Query turns a natural-language query into a type hint and a vector, then searches.
// Classification and embedding run concurrently and both fail open: an unclassifiable
// query searches every type, an unembeddable one returns no results.
func (s *Service) Query(ctx context.Context, userID, query string, limit int) (result.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return result.Response{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if userID == "" {
		return result.Response{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if limit < 1 {
		return result.Response{}, fmt.Errorf("%w: limit must be at least 1, got %d", domain.ErrInvalidRequest, limit)
	}

	log := logger.FromContext(ctx)

	var (
		queryType = item.QueryAll
		vector    []float32
		g         errgroup.Group
	)

	g.Go(func() error {
		queryType = s.classifier.Classify(ctx, query)
		s.obs.ObserveClassification(string(queryType))
		return nil
	})

	g.Go(func() error {
		emb, err := s.embed.Embed(ctx, query)
		if err != nil {
			log.Warn("Query embedding failed, searching with empty vector", zap.Error(err))
			return nil
		}
		vector = emb.Embedding
		return nil
	})

	_ = g.Wait() // both branches fail open

	results, err := s.Search(ctx, userID, vector, queryType, limit)
	if err != nil {
		return result.Response{}, err
	}

	log.Debug("Search completed",
		zap.String("query_type", string(queryType)),
		zap.Int("results_found", len(results)),
	)

	return result.Response{Query: query, Results: results}, nil
}
