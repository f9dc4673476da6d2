package synapse

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	apiKey  string
	baseURL string

	embedder   Embedder
	classifier Classifier
	enricher   Enricher

	indexName        string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores items in a Redis instance with the search and JSON modules.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory stores items in process memory. Searches always take the exact path.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithOpenAI enables the OpenAI-compatible provider for embeddings,
// query classification and enrichment. An empty baseURL means api.openai.com.
// Components set with WithEmbedder, WithClassifier or WithEnricher take precedence.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithClassifier sets the query type classifier.
// Without one every query searches all item types.
func WithClassifier(cl Classifier) Option {
	return optionFunc(func(c *clientConfig) {
		c.classifier = cl
	})
}

// WithEnricher sets the metadata generator.
// Without one items get the default title, summary and category.
func WithEnricher(e Enricher) Option {
	return optionFunc(func(c *clientConfig) {
		c.enricher = e
	})
}

// WithIndexName overrides the vector index name. Default: synapse:item:idx.
func WithIndexName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithVectorDimensions sets the embedding size used for the index.
// Defaults to 3072 (text-embedding-3-large).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLogger enables structured logging for SDK operations. Default: disabled.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
