// Package ingest turns raw user submissions (text, a URL or an image) into enriched, embedded items.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/synapse/internal/domain"
	"github.com/kailas-cloud/synapse/internal/domain/item"
	"github.com/kailas-cloud/synapse/internal/logger"
)

// Source platforms for content that does not come from a URL.
const (
	PlatformManual = "Manual Entry"
	PlatformUpload = "User Upload"
)

// SavedMessage is returned on every successful Add.
const SavedMessage = "Data saved successfully"

// Input is one submission. Exactly the payload matching Type is used.
type Input struct {
	Type  item.Type
	Text  string
	URL   string
	Image []byte
}

// Output describes the stored item.
type Output struct {
	ID       string
	Message  string
	Title    string
	Summary  string
	Tags     []string
	Category []string
}

// Service handles item ingestion.
type Service struct {
	repo     ItemSaver
	enricher Enricher
	embed    Embedder
	fetcher  Fetcher
	obs      Observer
	now      func() time.Time
	newID    func() string
}

// New creates an ingestion service. A nil observer disables telemetry.
func New(repo ItemSaver, enricher Enricher, embed Embedder, fetcher Fetcher, obs Observer) *Service {
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{
		repo:     repo,
		enricher: enricher,
		embed:    embed,
		fetcher:  fetcher,
		obs:      obs,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Add enriches, embeds and stores one submission for the user.
func (s *Service) Add(ctx context.Context, userID string, in Input) (Output, error) {
	start := time.Now()
	out, err := s.add(ctx, userID, in)
	status := "success"
	if err != nil {
		status = "error"
	}
	s.obs.ObserveIngest(string(in.Type), status, time.Since(start))
	return out, err
}

func (s *Service) add(ctx context.Context, userID string, in Input) (Output, error) {
	if userID == "" {
		return Output{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}

	var (
		f   item.Fields
		err error
	)
	switch in.Type {
	case item.TypeText:
		f, err = s.fromText(ctx, in.Text)
	case item.TypeURL:
		f, err = s.fromURL(ctx, in.URL)
	case item.TypeImage:
		f, err = s.fromImage(ctx, in.Image)
	default:
		return Output{}, fmt.Errorf("%w: unknown data type %q", domain.ErrInvalidRequest, in.Type)
	}
	if err != nil {
		return Output{}, err
	}

	f.Embedding = s.embedding(ctx, f)

	it, err := item.New(s.newID(), userID, in.Type, f, s.now())
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.repo.Save(ctx, &it); err != nil {
		return Output{}, fmt.Errorf("save item: %w", err)
	}

	logger.FromContext(ctx).Info("Item stored",
		zap.String("item_id", it.ID()),
		zap.String("type", string(it.Type())),
		zap.Bool("embedded", it.HasEmbedding()),
	)

	return Output{
		ID:       it.ID(),
		Message:  SavedMessage,
		Title:    it.Title(),
		Summary:  it.Summary(),
		Tags:     nonNil(it.Tags()),
		Category: nonNil(it.Category()),
	}, nil
}

func (s *Service) fromText(ctx context.Context, text string) (item.Fields, error) {
	if strings.TrimSpace(text) == "" {
		return item.Fields{}, fmt.Errorf("%w: text is required", domain.ErrInvalidRequest)
	}
	f := item.Fields{Content: text, SourcePlatform: PlatformManual}
	s.enrich(ctx, text, &f, true)
	return f, nil
}

func (s *Service) fromURL(ctx context.Context, rawURL string) (item.Fields, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return item.Fields{}, fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)
	}
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, domain.ErrFetchFailed) || errors.Is(err, domain.ErrInvalidRequest) {
			return item.Fields{}, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
		return item.Fields{}, fmt.Errorf("fetch %s: %w: %w", rawURL, domain.ErrFetchFailed, err)
	}
	f := item.Fields{
		Title:          page.Title,
		Content:        page.Text,
		SourcePlatform: SourcePlatform(rawURL),
		MediaURL:       rawURL,
	}
	s.enrich(ctx, page.Text, &f, false)
	return f, nil
}

func (s *Service) fromImage(ctx context.Context, data []byte) (item.Fields, error) {
	if len(data) == 0 {
		return item.Fields{}, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}
	png, err := Thumbnail(data)
	if err != nil {
		return item.Fields{}, err
	}
	caption := s.enricher.DescribeImage(ctx, png)

	f := item.Fields{Summary: caption, SourcePlatform: PlatformUpload}
	var g errgroup.Group
	g.Go(func() error {
		f.Content = s.enricher.Summarize(ctx, caption)
		return nil
	})
	g.Go(func() error {
		f.Tags = s.enricher.Tags(ctx, caption)
		return nil
	})
	g.Go(func() error {
		f.Category = s.enricher.Categories(ctx, caption)
		return nil
	})
	g.Go(func() error {
		f.Title = s.enricher.Title(ctx, caption)
		return nil
	})
	_ = g.Wait() // enrichment fails soft
	return f, nil
}

// enrich fills summary, tags and categories from content, and the title when withTitle is set.
func (s *Service) enrich(ctx context.Context, content string, f *item.Fields, withTitle bool) {
	var g errgroup.Group
	g.Go(func() error {
		f.Summary = s.enricher.Summarize(ctx, content)
		return nil
	})
	g.Go(func() error {
		f.Tags = s.enricher.Tags(ctx, content)
		return nil
	})
	g.Go(func() error {
		f.Category = s.enricher.Categories(ctx, content)
		return nil
	})
	if withTitle {
		g.Go(func() error {
			f.Title = s.enricher.Title(ctx, content)
			return nil
		})
	}
	_ = g.Wait() // enrichment fails soft
}

// embedding vectorizes the combined item text. A provider failure leaves the item unembedded.
func (s *Service) embedding(ctx context.Context, f item.Fields) []float32 {
	res, err := s.embed.Embed(ctx, CombinedText(f))
	if err != nil {
		logger.FromContext(ctx).Warn("Item embedding failed, storing without vector", zap.Error(err))
		return nil
	}
	return res.Embedding
}

// CombinedText is the text an item is embedded from.
func CombinedText(f item.Fields) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(f.Title)
	b.WriteString("\nSummary: ")
	b.WriteString(f.Summary)
	b.WriteString("\nContent: ")
	b.WriteString(f.Content)
	b.WriteString("\nTags: ")
	b.WriteString(strings.Join(f.Tags, ", "))
	b.WriteString("\nCategories: ")
	b.WriteString(strings.Join(f.Category, ", "))
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
