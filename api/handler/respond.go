package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/export"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/models"
)

// respondError maps err to an HTTP status and writes a JSON error body.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

func invalidInput(c *gin.Context, msg string) {
	respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, msg, nil))
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeNotReady:
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}

// writeArtifact encodes records fully before writing any header, so an
// encoding failure can still be reported as a JSON error.
func writeArtifact(c *gin.Context, enc export.Encoder, records []models.Record, m *metrics.Metrics) {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, records); err != nil {
		respondError(c, models.NewScrapeError(models.ErrCodeExport, "failed to encode result", err))
		return
	}
	m.Exported(enc.Format())

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(enc)+`"`)
	c.Data(http.StatusOK, enc.ContentType(), buf.Bytes())
}
