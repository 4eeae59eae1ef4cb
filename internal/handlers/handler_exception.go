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

// exceptionHandler handles HTTP requests for the review queue.
type exceptionHandler struct {
	reconService portssvc.ReconSvcFacade
}

func newExceptionHandler(reconService portssvc.ReconSvcFacade) *exceptionHandler {
	return &exceptionHandler{reconService: reconService}
}

// listExceptions queries the review queue, optionally filtered by kind and status.
func (h *exceptionHandler) listExceptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExceptionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind exception query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	exceptions, err := h.reconService.ListExceptions(c.Request.Context(), tenantID, params)
	if err != nil {
		logger.Error("Failed to list exceptions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exceptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exceptions": dto.ToExceptionResponses(exceptions)})
}

// resolveException records a human decision on an open exception.
func (h *exceptionHandler) resolveException(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	exceptionID := c.Param("exceptionID")

	var req dto.ResolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind resolve request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}

	tenantID, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	resolvedBy, _ := middleware.GetUserIDFromContext(c)

	exception, err := h.reconService.ResolveException(c.Request.Context(), tenantID, exceptionID, req, resolvedBy)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Exception not found", slog.String("exception_id", exceptionID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Exception not found"})
		case errors.Is(err, apperrors.ErrConflict):
			logger.Warn("Conflicting resolution", slog.String("exception_id", exceptionID), slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Invalid resolution", slog.String("exception_id", exceptionID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to resolve exception", slog.String("exception_id", exceptionID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve exception"})
		}
		return
	}

	logger.Info("Exception resolved", slog.String("exception_id", exceptionID), slog.String("resolved_by", resolvedBy))
	c.JSON(http.StatusOK, dto.ToExceptionResponse(exception))
}

// registerExceptionRoutes registers review-queue routes.
func registerExceptionRoutes(group *gin.RouterGroup, reconService portssvc.ReconSvcFacade) {
	handler := newExceptionHandler(reconService)

	exceptions := group.Group("/exceptions")
	exceptions.GET("", handler.listExceptions)
	exceptions.POST("/:exceptionID/resolve", handler.resolveException)
}
