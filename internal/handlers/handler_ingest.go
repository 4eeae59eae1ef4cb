package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
)

// ingestHandler handles HTTP requests for raw event ingestion.
type ingestHandler struct {
	normalizerService portssvc.NormalizerSvcFacade
}

func newIngestHandler(normalizerService portssvc.NormalizerSvcFacade) *ingestHandler {
	return &ingestHandler{normalizerService: normalizerService}
}

// ingestEvents accepts a connector batch, normalizes it and reports how many
// payloads were accepted versus queued for triage. Re-delivering a batch is safe:
// event IDs are deterministic and re-inserts are no-ops.
func (h *ingestHandler) ingestEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind ingest request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.normalizerService.IngestBatch(c.Request.Context(), tenantID, req.Events)
	if err != nil {
		logger.Error("Failed to ingest batch", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest events"})
		return
	}

	logger.Info("Ingest batch accepted", slog.Int("accepted", summary.Accepted), slog.Int("rejected", summary.Rejected))
	c.JSON(http.StatusOK, summary)
}

// listRejections pages the operator triage queue of payloads that failed
// normalization.
func (h *ingestHandler) listRejections(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListRejectionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind rejection query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rejections, err := h.normalizerService.ListRejections(c.Request.Context(), tenantID, params.Limit)
	if err != nil {
		logger.Error("Failed to list rejections", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rejections"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejections": dto.ToRejectionResponses(rejections)})
}

// registerIngestRoutes registers ingestion routes.
func registerIngestRoutes(group *gin.RouterGroup, normalizerService portssvc.NormalizerSvcFacade, rateLimit gin.HandlerFunc) {
	handler := newIngestHandler(normalizerService)

	ingest := group.Group("/ingest")
	ingest.GET("/rejections", handler.listRejections)
	// Only the connector-facing write path is rate limited.
	if rateLimit != nil {
		ingest.POST("/events", rateLimit, handler.ingestEvents)
	} else {
		ingest.POST("/events", handler.ingestEvents)
	}
}
