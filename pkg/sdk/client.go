package synapse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synapse/internal/db"
	dbMemory "github.com/kailas-cloud/synapse/internal/db/memory"
	dbRedis "github.com/kailas-cloud/synapse/internal/db/redis"
	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/result"
	"github.com/kailas-cloud/synapse/internal/logger"
	itemrepo "github.com/kailas-cloud/synapse/internal/repository/item"
	searchrepo "github.com/kailas-cloud/synapse/internal/repository/search"
	openaiTransport "github.com/kailas-cloud/synapse/internal/transport/openai"
	healthuc "github.com/kailas-cloud/synapse/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/synapse/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/synapse/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 3072
	defaultFetchTimeout     = 15 * time.Second
)

// Use case seams, swapped in tests.
type searchUseCase interface {
	Query(ctx context.Context, userID, query string, limit int) (result.Response, error)
}

type ingestUseCase interface {
	Add(ctx context.Context, userID string, in ingestuc.Input) (ingestuc.Output, error)
}

type itemCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

// Client is the synapse SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	ingestSvc ingestUseCase
	items     itemCounter
	healthSvc healthUseCase
	obs       *observer
}

// New creates a synapse Client, connects to the store and makes sure the
// vector index exists. The provided context is used for the initial
// readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		indexName:        domain.DefaultIndexName,
		vectorDimensions: defaultVectorDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("synapse: store required (use WithRedis or WithMemory)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("synapse: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, items := wireClient(store, cfg, obs)
	if err := items.EnsureIndex(ctx); err != nil && cfg.logger != nil {
		cfg.logger.Warn("vector index unavailable, searches use the exact scan",
			zap.String("index", cfg.indexName), zap.Error(err))
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("synapse: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("synapse: create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("synapse: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, *itemrepo.Repo) {
	aiCfg := &openaiTransport.Config{
		APIKey:     cfg.apiKey,
		BaseURL:    cfg.baseURL,
		Dimensions: cfg.vectorDimensions,
		Provider:   "openai",
		Logger:     cfg.logger,
	}

	var emb domain.Embedder = noopEmbedder{}
	var health domain.Embedder
	switch {
	case cfg.embedder != nil:
		emb = &embedderAdapter{inner: cfg.embedder}
	case cfg.apiKey != "":
		base := openaiTransport.NewEmbedder(aiCfg)
		emb, health = base, base
	}

	var cls searchuc.Classifier = allClassifier{}
	switch {
	case cfg.classifier != nil:
		cls = &classifierAdapter{inner: cfg.classifier}
	case cfg.apiKey != "":
		cls = openaiTransport.NewClassifier(aiCfg)
	}

	var enr ingestuc.Enricher = defaultEnricher{}
	switch {
	case cfg.enricher != nil:
		enr = cfg.enricher
	case cfg.apiKey != "":
		enr = openaiTransport.NewEnricher(aiCfg)
	}

	items := itemrepo.New(store, itemrepo.IndexConfig{
		Name:        cfg.indexName,
		Dimensions:  cfg.vectorDimensions,
		Algorithm:   db.VectorHNSW,
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})
	native := searchrepo.New(store, searchrepo.Options{IndexName: cfg.indexName, Algorithm: db.VectorHNSW})

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := health.(healthuc.EmbeddingChecker); ok {
		embCheck = hc
	}

	return &Client{
		store:     store,
		searchSvc: searchuc.New(native, searchuc.NewLocalRanker(items), cls, emb, nil),
		ingestSvc: ingestuc.New(items, enr, emb, ingestuc.NewHTTPFetcher(defaultFetchTimeout), nil),
		items:     items,
		healthSvc: healthuc.New(store, store, cfg.indexName, embCheck),
		obs:       obs,
	}, items
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search returns up to limit of the user's items most similar to query.
// An empty result with a nil error means nothing matched or the query could not be embedded.
func (c *Client) Search(ctx context.Context, userID, query string, limit int) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	resp, err := c.searchSvc.Query(c.withLogger(ctx), userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return searchResultsFromDomain(resp.Results), nil
}

// Count returns how many items the user has stored, embedded or not.
func (c *Client) Count(ctx context.Context, userID string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	if userID == "" {
		return 0, fmt.Errorf("count: %w: user id is required", ErrInvalidRequest)
	}
	n, err = c.items.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// AddText stores a note.
func (c *Client) AddText(ctx context.Context, userID, text string) (Added, error) {
	return c.add(ctx, "add.text", userID, ingestuc.Input{Type: item.TypeText, Text: text})
}

// AddURL fetches a web page and stores its readable text.
func (c *Client) AddURL(ctx context.Context, userID, rawURL string) (Added, error) {
	return c.add(ctx, "add.url", userID, ingestuc.Input{Type: item.TypeURL, URL: rawURL})
}

// AddImage stores an image by its generated description. Any format
// the imaging package can decode is accepted.
func (c *Client) AddImage(ctx context.Context, userID string, image []byte) (Added, error) {
	return c.add(ctx, "add.image", userID, ingestuc.Input{Type: item.TypeImage, Image: image})
}

func (c *Client) add(ctx context.Context, op, userID string, in ingestuc.Input) (_ Added, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	out, err := c.ingestSvc.Add(c.withLogger(ctx), userID, in)
	if err != nil {
		return Added{}, fmt.Errorf("%s: %w", op, err)
	}
	return addedFromDomain(out), nil
}

// withLogger makes the SDK logger visible to the use cases.
func (c *Client) withLogger(ctx context.Context) context.Context {
	if c.obs == nil || c.obs.logger == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.obs.logger)
}
