package api

import (
	"context"

	"github.com/lysyi3m/product-feeds/app/products"
	"github.com/lysyi3m/product-feeds/app/source"
)

type ProductServiceInterface interface {
	ListSources() []source.Summary
	GetProducts(ctx context.Context, sourceID, query string) (*products.Result, error)
	CheckSources(ctx context.Context, workers int) []products.CheckReport
}

var _ ProductServiceInterface = (*products.Service)(nil)

type Handler struct {
	service      ProductServiceInterface
	checkWorkers int
	version      string
}
