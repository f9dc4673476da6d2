package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
	"github.com/kailas-cloud/synapse/internal/logger"
)

// Service answers similarity searches over a user's items.
// The native ranker is tried once; any error switches to the local ranker for that call.
type Service struct {
	native     Ranker
	local      Ranker
	classifier Classifier
	embed      Embedder
	obs        Observer
}

// New creates a search service. obs may be nil.
func New(native, local Ranker, classifier Classifier, embed Embedder, obs Observer) *Service {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{
		native:     native,
		local:      local,
		classifier: classifier,
		embed:      embed,
		obs:        obs,
	}
}

// Search ranks userID's items against vector, restricted to queryType unless it is item.QueryAll.
// An empty vector returns no results without touching the store.
func (s *Service) Search(
	ctx context.Context, userID string, vector []float32, queryType item.QueryType, limit int,
) ([]result.Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", domain.ErrInvalidRequest, limit)
	}
	if len(vector) == 0 {
		s.obs.ObserveSearch(PathSkipped, 0, 0)
		return []result.Result{}, nil
	}

	scope, err := filter.NewScope(userID, queryType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	start := time.Now()
	results, err := s.native.Rank(ctx, vector, scope, limit)
	if err == nil {
		s.obs.ObserveSearch(PathNative, time.Since(start), len(results))
		return nonNil(results), nil
	}

	logger.FromContext(ctx).Warn("Native search failed, falling back to local scan",
		zap.Stringer("scope", scope),
		zap.Int("limit", limit),
		zap.Error(err),
	)
	s.obs.ObserveFallback()

	start = time.Now()
	results, err = s.local.Rank(ctx, vector, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	s.obs.ObserveSearch(PathLocal, time.Since(start), len(results))
	return nonNil(results), nil
}

func nonNil(r []result.Result) []result.Result {
	if r == nil {
		return []result.Result{}
	}
	return r
}
