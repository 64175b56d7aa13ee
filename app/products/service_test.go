package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/product-feeds/app/feed"
	"github.com/lysyi3m/product-feeds/app/source"
)

type fakeFetcher struct {
	mu       sync.Mutex
	bodies   map[string]string
	errs     map[string]error
	calls    []string
	timeouts []time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (f *fakeFetcher) Run(ctx context.Context, url string, timeout time.Duration) (string, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if current <= peak || f.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.timeouts = append(f.timeouts, timeout)
	body, err := f.bodies[url], f.errs[url]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	return body, err
}

func csvFeed(n int) string {
	var b strings.Builder
	b.WriteString("id,title,price,brand\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "P%d,Product %d,%d.00,Maison\n", i, i, i)
	}
	return b.String()
}

func newTestService(t *testing.T, fetcher *fakeFetcher, sources ...*source.Source) *Service {
	t.Helper()
	catalog, err := source.NewCatalog(sources...)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(catalog, fetcher, feed.NewParser(), feed.NewRanker(), 20*time.Second, DefaultLimit)
}

func TestGetProductsTruncatesAndReportsTotal(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string]string{"https://shop.example.com/feed.csv": csvFeed(120)}}
	service := newTestService(t, fetcher, &source.Source{
		ID: "shop", Name: "Shop", URL: "https://shop.example.com/feed.csv", Enabled: true,
	})

	result, err := service.GetProducts(context.Background(), "shop", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Products) != 50 {
		t.Errorf("Expected 50 products, got %d", len(result.Products))
	}
	if result.Total != 120 {
		t.Errorf("Expected total 120, got %d", result.Total)
	}
	if result.Brand != "Shop" {
		t.Errorf("Expected brand 'Shop', got '%s'", result.Brand)
	}
	if result.Products[0].ID != "P1" || result.Products[49].ID != "P50" {
		t.Errorf("Expected feed order without query, got %s..%s", result.Products[0].ID, result.Products[49].ID)
	}
}

func TestGetProductsRanksQuery(t *testing.T) {
	body := "title,price\nGold Ring,10\nNecklace,20\nRing Box,5\n"
	fetcher := &fakeFetcher{bodies: map[string]string{"https://shop.example.com/feed.csv": body}}
	service := newTestService(t, fetcher, &source.Source{
		ID: "shop", Name: "Shop", URL: "https://shop.example.com/feed.csv", Enabled: true,
	})

	result, err := service.GetProducts(context.Background(), "shop", "ring")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Total != 2 || len(result.Products) != 2 {
		t.Fatalf("Expected 2 matches, got total %d, products %d", result.Total, len(result.Products))
	}
	if result.Products[0].Name != "Ring Box" || result.Products[1].Name != "Gold Ring" {
		t.Errorf("Unexpected order: %s, %s", result.Products[0].Name, result.Products[1].Name)
	}
}

func TestGetProductsUnknownSource(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := newTestService(t, fetcher,
		&source.Source{ID: "b", URL: "https://b.example.com", Enabled: true},
		&source.Source{ID: "a", URL: "https://a.example.com", Enabled: true},
	)

	_, err := service.GetProducts(context.Background(), "missing", "")

	var notFound *SourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected SourceNotFoundError, got %v", err)
	}
	if strings.Join(notFound.ValidIDs, ",") != "a,b" {
		t.Errorf("Expected valid ids [a b], got %v", notFound.ValidIDs)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected no fetch for unknown source, got %v", fetcher.calls)
	}
}

func TestGetProductsDisabledSource(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := newTestService(t, fetcher, &source.Source{ID: "off", URL: "https://off.example.com"})

	_, err := service.GetProducts(context.Background(), "off", "")

	var disabled *SourceDisabledError
	if !errors.As(err, &disabled) {
		t.Fatalf("Expected SourceDisabledError, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("Expected no fetch for disabled source, got %v", fetcher.calls)
	}
}

func TestGetProductsFetchError(t *testing.T) {
	url := "https://shop.example.com/feed.csv"
	fetchErr := &feed.FetchError{URL: url, StatusCode: 503, Status: "503 Service Unavailable"}
	fetcher := &fakeFetcher{errs: map[string]error{url: fetchErr}}
	service := newTestService(t, fetcher, &source.Source{ID: "shop", URL: url, Enabled: true})

	_, err := service.GetProducts(context.Background(), "shop", "")

	var got *feed.FetchError
	if !errors.As(err, &got) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if got.StatusCode != 503 {
		t.Errorf("Expected status 503, got %d", got.StatusCode)
	}
}

func TestGetProductsUsesSourceTimeout(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string]string{}}
	service := newTestService(t, fetcher,
		&source.Source{ID: "slow", URL: "https://slow.example.com", Enabled: true, Timeout: 90},
		&source.Source{ID: "fast", URL: "https://fast.example.com", Enabled: true},
	)

	_, _ = service.GetProducts(context.Background(), "slow", "")
	_, _ = service.GetProducts(context.Background(), "fast", "")

	if fetcher.timeouts[0] != 90*time.Second {
		t.Errorf("Expected source timeout 90s, got %v", fetcher.timeouts[0])
	}
	if fetcher.timeouts[1] != 20*time.Second {
		t.Errorf("Expected default timeout 20s, got %v", fetcher.timeouts[1])
	}
}

func TestGetProductsCarriesDiagnostics(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string]string{
		"https://shop.example.com": "title,price\nRobe,10\nJupe,N/A\n",
	}}
	service := newTestService(t, fetcher, &source.Source{ID: "shop", URL: "https://shop.example.com", Enabled: true})

	result, err := service.GetProducts(context.Background(), "shop", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Skipped != 1 || len(result.Diagnostics) != 1 {
		t.Errorf("Expected 1 skipped row with diagnostic, got %d / %v", result.Skipped, result.Diagnostics)
	}
}

func TestListSources(t *testing.T) {
	service := newTestService(t, &fakeFetcher{},
		&source.Source{ID: "b", Name: "B", Enabled: true},
		&source.Source{ID: "a", Name: "A"},
	)

	summaries := service.ListSources()
	if len(summaries) != 2 || summaries[0].ID != "a" || summaries[1].ID != "b" {
		t.Errorf("Expected sources [a b], got %+v", summaries)
	}
}

func TestNewServiceDefaultLimit(t *testing.T) {
	catalog, _ := source.NewCatalog()
	service := NewService(catalog, &fakeFetcher{}, feed.NewParser(), feed.NewRanker(), 0, 0)
	if service.limit != DefaultLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLimit, service.limit)
	}
}
