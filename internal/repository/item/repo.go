// Package item persists stored items as RedisJSON documents partitioned by user.
package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/synapse/internal/db"
	"github.com/kailas-cloud/synapse/internal/domain"
	domitem "github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/domain/search/filter"
)

// store is the consumer interface for items (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGetMulti(ctx context.Context, keys []string, paths ...string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// IndexConfig shapes the item FT index.
type IndexConfig struct {
	Name        string
	Dimensions  int
	Algorithm   db.VectorAlgorithm
	M           int
	EFConstruct int
}

// Repo implements usecase/search.ItemFinder and usecase/ingest.ItemSaver.
type Repo struct {
	store store
	index IndexConfig
}

// New creates an item repository.
func New(s store, idx IndexConfig) *Repo {
	if idx.Name == "" {
		idx.Name = domain.DefaultIndexName
	}
	return &Repo{store: s, index: idx}
}

// EnsureIndex creates the item index. An existing index is not an error.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.index)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Save writes the whole item document under its user-partitioned key.
func (r *Repo) Save(ctx context.Context, it *domitem.Item) error {
	data, err := json.Marshal(buildDoc(it))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	key := itemKey(it.UserID(), it.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Find returns every item matching the scope, without content.
// Keys are narrowed by the scope's user; each document is then checked with scope.Matches.
func (r *Repo) Find(ctx context.Context, scope filter.Scope) ([]domitem.Item, error) {
	keys, err := r.store.Scan(ctx, userPattern(scope.UserID()))
	if err != nil {
		return nil, fmt.Errorf("scan items of %s: %w", scope.UserID(), err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raws, err := r.store.JSONGetMulti(ctx, keys, searchPaths...)
	if err != nil {
		return nil, fmt.Errorf("fetch items of %s: %w", scope.UserID(), err)
	}

	items := make([]domitem.Item, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue // deleted between SCAN and GET
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if !scope.Matches(doc.scopeFields()) {
			continue
		}
		doc.Content = ""
		items = append(items, doc.toItem())
	}
	return items, nil
}

// Count returns the number of items stored for userID.
func (r *Repo) Count(ctx context.Context, userID string) (int, error) {
	keys, err := r.store.Scan(ctx, userPattern(userID))
	if err != nil {
		return 0, fmt.Errorf("scan items of %s: %w", userID, err)
	}
	return len(keys), nil
}

func buildIndex(cfg IndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(cfg.Name).
		OnJSON().
		Prefix(domain.ItemPrefix).
		Tag("$."+filter.FieldUserID, filter.FieldUserID).
		Tag("$."+filter.FieldType, filter.FieldType)
	if cfg.Algorithm == db.VectorFlat {
		b = b.VectorFlat("$.embedding", "embedding", cfg.Dimensions, db.DistanceCosine)
	} else {
		b = b.VectorHNSW("$.embedding", "embedding", cfg.Dimensions, db.DistanceCosine, cfg.M, cfg.EFConstruct)
	}
	return b.Build()
}

func itemKey(userID, id string) string {
	return domain.ItemPrefix + userID + ":" + id
}

// userPattern is the SCAN glob matching every item key of userID.
func userPattern(userID string) string {
	return domain.ItemPrefix + globEscaper.Replace(userID) + ":*"
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)
