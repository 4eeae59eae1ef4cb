package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/dto"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
)

// ledgerHandler handles HTTP requests for the read-only cash ledger feed.
type ledgerHandler struct {
	reconService portssvc.ReconSvcFacade
}

func newLedgerHandler(reconService portssvc.ReconSvcFacade) *ledgerHandler {
	return &ledgerHandler{reconService: reconService}
}

// listEntries pages the posted cash ledger, newest first.
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind ledger query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := h.reconService.ListLedgerEntries(c.Request.Context(), tenantID, params)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledger entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": dto.ToLedgerEntryResponses(entries)})
}

// registerLedgerRoutes registers the cash ledger feed routes.
func registerLedgerRoutes(group *gin.RouterGroup, reconService portssvc.ReconSvcFacade) {
	handler := newLedgerHandler(reconService)

	ledger := group.Group("/ledger")
	ledger.GET("/entries", handler.listEntries)
}
