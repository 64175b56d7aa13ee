package products

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/product-feeds/app/feed"
	"github.com/lysyi3m/product-feeds/app/source"
)

const DefaultLimit = 50

// FetcherInterface performs the single outbound GET of a request.
type FetcherInterface interface {
	Run(ctx context.Context, url string, timeout time.Duration) (string, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)

type Result struct {
	Products    []feed.Product    `json:"products"`
	Total       int               `json:"total"`
	Brand       string            `json:"brand"`
	Skipped     int               `json:"-"`
	Diagnostics []feed.Diagnostic `json:"-"`
}

type Service struct {
	catalog      *source.Catalog
	fetcher      FetcherInterface
	parser       *feed.Parser
	ranker       *feed.Ranker
	fetchTimeout time.Duration
	limit        int
}

func NewService(catalog *source.Catalog, fetcher FetcherInterface, parser *feed.Parser,
	ranker *feed.Ranker, fetchTimeout time.Duration, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{
		catalog:      catalog,
		fetcher:      fetcher,
		parser:       parser,
		ranker:       ranker,
		fetchTimeout: fetchTimeout,
		limit:        limit,
	}
}

// ListSources returns the configured sources without fetching anything.
func (s *Service) ListSources() []source.Summary {
	return s.catalog.Summaries()
}

// GetProducts fetches and parses the source, ranks it against query when
// query is non-empty and returns at most the configured limit of products
// together with the pre-truncation total.
func (s *Service) GetProducts(ctx context.Context, sourceID, query string) (*Result, error) {
	src, err := s.lookup(sourceID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.load(ctx, src)
	if err != nil {
		return nil, err
	}

	matched := s.ranker.Run(parsed.Products, query)
	total := len(matched)
	if len(matched) > s.limit {
		matched = matched[:s.limit]
	}

	slog.Info("Products served",
		"source", src.ID,
		"query", query,
		"parsed", len(parsed.Products),
		"skipped", parsed.Skipped,
		"total", total,
		"returned", len(matched))

	return &Result{
		Products:    matched,
		Total:       total,
		Brand:       src.Name,
		Skipped:     parsed.Skipped,
		Diagnostics: parsed.Diagnostics,
	}, nil
}

func (s *Service) lookup(sourceID string) (source.Source, error) {
	src, ok := s.catalog.Get(sourceID)
	if !ok {
		return source.Source{}, &SourceNotFoundError{ID: sourceID, ValidIDs: s.catalog.IDs()}
	}
	if !src.Enabled {
		return source.Source{}, &SourceDisabledError{ID: sourceID}
	}
	return src, nil
}

func (s *Service) load(ctx context.Context, src source.Source) (*feed.ParseResult, error) {
	body, err := s.fetcher.Run(ctx, src.URL, src.GetTimeout(s.fetchTimeout))
	if err != nil {
		slog.Error("Feed fetch failed", "source", src.ID, "url", src.URL, "error", err)
		return nil, err
	}

	parsed, err := s.parser.Run(body, src.FeedFormat(), src.ParseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", src.ID, err)
	}

	return parsed, nil
}
