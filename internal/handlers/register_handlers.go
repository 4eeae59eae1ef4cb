package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/internal/middleware"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimit gin.HandlerFunc,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, rateLimit)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the entity route
// registrations. The whole group sits behind tenant-scoped JWT auth.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimit gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerIngestRoutes(v1, services.Normalizer, rateLimit)
	registerExceptionRoutes(v1, services.Recon)
	registerLedgerRoutes(v1, services.Recon)
	registerRunRoutes(v1, services.Recon)
}
