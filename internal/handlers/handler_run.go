package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/data-steve/rowcol-sub000/internal/apperrors"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
)

// runHandler handles HTTP requests that trigger reconciliation work.
type runHandler struct {
	reconService portssvc.ReconSvcFacade
}

func newRunHandler(reconService portssvc.ReconSvcFacade) *runHandler {
	return &runHandler{reconService: reconService}
}

// triggerRun starts a reconciliation batch for the caller's tenant. A second
// trigger while a run is in flight gets 409: runs are serialized per tenant.
func (h *runHandler) triggerRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	triggeredBy, _ := middleware.GetUserIDFromContext(c)

	run, err := h.reconService.RunReconciliation(c.Request.Context(), tenantID, triggeredBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrRunLockConflict) {
			logger.Warn("Run already in progress", slog.String("tenant_id", tenantID))
			c.JSON(http.StatusConflict, gin.H{"error": "A reconciliation run is already in progress for this tenant"})
			return
		}
		logger.Error("Reconciliation run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation run failed"})
		return
	}

	c.JSON(http.StatusOK, dto.ToRunResponse(run))
}

// triggerSweep runs the ghost receivable sweep for the caller's tenant.
func (h *runHandler) triggerSweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	raised, err := h.reconService.SweepGhostAR(c.Request.Context(), tenantID)
	if err != nil {
		logger.Error("Ghost receivable sweep failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ghost receivable sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exceptionsRaised": raised})
}

// registerRunRoutes registers reconciliation trigger routes.
func registerRunRoutes(group *gin.RouterGroup, reconService portssvc.ReconSvcFacade) {
	handler := newRunHandler(reconService)

	runs := group.Group("/runs")
	runs.POST("", handler.triggerRun)
	runs.POST("/sweep", handler.triggerSweep)
}
