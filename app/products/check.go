package products

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// CheckReport is the outcome of fetching and parsing one source.
type CheckReport struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Products int           `json:"products"`
	Skipped  int           `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CheckSources fetches and parses every enabled source with at most workers
// fetches in flight. A failing source is reported, not returned as an error.
func (s *Service) CheckSources(ctx context.Context, workers int) []CheckReport {
	sources := s.catalog.Enabled()
	reports := make([]CheckReport, len(sources))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, src := range sources {
		g.Go(func() error {
			started := time.Now()
			report := CheckReport{ID: src.ID, Name: src.Name}

			parsed, err := s.load(ctx, src)
			if err != nil {
				report.Error = err.Error()
			} else {
				report.OK = true
				report.Products = len(parsed.Products)
				report.Skipped = parsed.Skipped
			}
			report.Duration = time.Since(started)

			reports[i] = report
			return nil
		})
	}
	g.Wait()

	return reports
}
