package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sikampus-api/internal/models"
	appErrors "github.com/noah-isme/sikampus-api/pkg/errors"
	"github.com/noah-isme/sikampus-api/pkg/response"
)

type summaryService interface {
	Summary(ctx context.Context, periodStart *time.Time) (*models.MetricsSummary, error)
}

// SummaryHandler serves staff metrics.
type SummaryHandler struct {
	service summaryService
}

// NewSummaryHandler builds a new handler.
func NewSummaryHandler(svc summaryService) *SummaryHandler {
	return &SummaryHandler{service: svc}
}

// Summary godoc
// @Summary Registration and capacity summary
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param periodStart query string false "YYYY-MM-DD, defaults to the first day of the current month (UTC)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *SummaryHandler) Summary(c *gin.Context) {
	var periodStart *time.Time
	if raw := c.Query("periodStart"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "periodStart must be YYYY-MM-DD"))
			return
		}
		periodStart = &parsed
	}
	summary, err := h.service.Summary(c.Request.Context(), periodStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
