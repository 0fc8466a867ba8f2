package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salasvega/easyvinted8-sub003/internal/insight"
	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

type InsightService interface {
	LoadAll(ctx context.Context, ownerID string, force bool) (*insight.Snapshot, error)
	Dismiss(ctx context.Context, ownerID, insightID string) error
	Execute(ctx context.Context, ownerID, insightID string) error
}

type InsightHandler struct {
	service InsightService
	ping    func() error
}

func NewInsightHandler(service InsightService, ping func() error) *InsightHandler {
	return &InsightHandler{service: service, ping: ping}
}

// OwnerRequired resolves the authenticated owner for the request. The core
// never manages authentication itself; the gateway injects the header.
func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader("X-Owner-ID")
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing owner"})
			return
		}
		c.Set("owner_id", ownerID)
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString("owner_id")
}

func (h *InsightHandler) GetInsights(c *gin.Context) {
	force := c.Query("force") == "true"

	snap, err := h.service.LoadAll(c.Request.Context(), ownerID(c), force)
	if err != nil {
		slog.Error("error loading insights", "owner_id", ownerID(c), "error", err)
		writeError(c, err)
		return
	}

	res := InsightsResponse{
		General:    []InsightResponse{},
		Pricing:    []InsightResponse{},
		Scheduling: []InsightResponse{},
		Badge:      snap.BadgeCount,
	}
	for _, ins := range snap.General {
		if snap.LocalDismissed[ins.Title] {
			continue
		}
		res.General = append(res.General, toInsightResponse(ins))
	}
	for _, ins := range snap.Pricing {
		res.Pricing = append(res.Pricing, toInsightResponse(ins))
	}
	for _, ins := range snap.Scheduling {
		res.Scheduling = append(res.Scheduling, toInsightResponse(ins))
	}
	res.Counts = CountsResponse{
		General:    len(res.General),
		Pricing:    len(res.Pricing),
		Scheduling: len(res.Scheduling),
	}
	if len(snap.PipelineErrors) > 0 {
		res.Errors = snap.PipelineErrors
	}

	c.JSON(http.StatusOK, res)
}

func (h *InsightHandler) DismissInsight(c *gin.Context) {
	err := h.service.Dismiss(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		slog.Error("error dismissing insight", "insight_id", c.Param("id"), "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": model.StatusDismissed})
}

func (h *InsightHandler) ExecuteInsight(c *gin.Context) {
	err := h.service.Execute(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		slog.Error("error executing insight", "insight_id", c.Param("id"), "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": model.StatusCompleted})
}

func (h *InsightHandler) GetHealth(c *gin.Context) {
	if err := h.ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func writeError(c *gin.Context, err error) {
	var validationErr *insight.ValidationError
	var generationErr *insight.GenerationError
	var partialErr *insight.PartialApplyError

	switch {
	case errors.Is(err, insight.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Insight not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Reason})
	case errors.As(err, &generationErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "The advice service is unavailable right now"})
	case errors.As(err, &partialErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": partialErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}
