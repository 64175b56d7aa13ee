package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/product-feeds/app/feed"
	"github.com/lysyi3m/product-feeds/app/products"
)

func NewHandler(service ProductServiceInterface, checkWorkers int, version string) *Handler {
	return &Handler{
		service:      service,
		checkWorkers: checkWorkers,
		version:      version,
	}
}

// GetFeeds lists the configured sources, or serves the products of one
// source when the "source" query parameter is present.
func (h *Handler) GetFeeds(c *gin.Context) {
	sourceID := strings.TrimSpace(c.Query("source"))
	if sourceID == "" {
		feeds := h.service.ListSources()
		c.JSON(http.StatusOK, gin.H{
			"feeds": feeds,
			"total": len(feeds),
		})
		return
	}

	h.serveProducts(c, sourceID)
}

func (h *Handler) GetFeedProducts(c *gin.Context) {
	sourceID := c.Param("id")
	if sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed source parameter"})
		return
	}

	h.serveProducts(c, sourceID)
}

func (h *Handler) serveProducts(c *gin.Context, sourceID string) {
	query := strings.TrimSpace(c.Query("q"))

	result, err := h.service.GetProducts(c.Request.Context(), sourceID, query)
	if err != nil {
		h.writeError(c, sourceID, err)
		return
	}

	c.Header("X-Feed-Total", strconv.Itoa(result.Total))
	c.Header("X-Feed-Skipped", strconv.Itoa(result.Skipped))
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeError(c *gin.Context, sourceID string, err error) {
	var notFound *products.SourceNotFoundError
	var disabled *products.SourceDisabledError
	var fetchErr *feed.FetchError

	switch {
	case errors.As(err, &notFound):
		slog.Warn("Feed source not found", "source", sourceID)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         err.Error(),
			"valid_sources": notFound.ValidIDs,
		})
	case errors.As(err, &disabled):
		slog.Warn("Feed source disabled", "source", sourceID)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		body := gin.H{"error": "Failed to fetch feed"}
		if fetchErr.StatusCode != 0 {
			body["status"] = fetchErr.StatusCode
			body["status_text"] = fetchErr.Status
		}
		if fetchErr.Err != nil {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		slog.Error("Feed processing error", "source", sourceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process feed",
			"details": err.Error(),
		})
	}
}

func (h *Handler) CheckFeeds(c *gin.Context) {
	reports := h.service.CheckSources(c.Request.Context(), h.checkWorkers)

	failed := 0
	for _, report := range reports {
		if !report.OK {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": reports,
		"total":   len(reports),
		"failed":  failed,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   len(h.service.ListSources()),
		"version":   h.version,
	})
}
