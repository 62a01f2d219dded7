package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/export"
	"github.com/use-agent/harvest/listing"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/pipeline"
)

// Runner executes one harvest.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Companies returns a handler for GET /api/v1/companies.
//
// Query parameters:
//
//	n                   record cap; omitted means no cap
//	filters[key]=v      scalar listing filter
//	filters[key][]=v    list listing filter, repeated per element
//	format              csv (default), json, xlsx, markdown
//
// The harvest runs synchronously and the artifact is returned as an
// attachment.
func Companies(runner Runner, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := parseLimit(c.Query("n"))
		if err != nil {
			invalidInput(c, err.Error())
			return
		}
		filters, err := parseFilterQuery(c.Request.URL.RawQuery)
		if err != nil {
			invalidInput(c, err.Error())
			return
		}
		enc, err := export.ForFormat(c.Query("format"))
		if err != nil {
			respondError(c, err)
			return
		}

		res, err := runner.Run(c.Request.Context(), pipeline.Request{
			Limit:   limit,
			Filters: filters.Permit(models.AllowedFilters...),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		writeArtifact(c, enc, res.Records, m)
	}
}

// parseLimit accepts "" (no cap) or a non-negative integer.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return listing.NoLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("n must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
