package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/snapdish/backend/config"
	"github.com/snapdish/backend/internal/service"
	"github.com/snapdish/backend/internal/store"
)

// SetupAPI wires services and handlers onto the router.
func SetupAPI(router *gin.Engine, cfg *config.Config, st store.Store, vision service.VisionAPI, s3Config *config.S3Config) error {
	ctx := context.Background()

	quota, err := service.NewQuotaTracker(ctx, st)
	if err != nil {
		return err
	}
	scans, err := service.NewScanRegistry(ctx, st)
	if err != nil {
		return err
	}

	photos := service.NewPhotoService(s3Config)
	generator := service.NewRecipeGenerator(vision)

	v1 := router.Group("/api/v1")
	{
		NewScanHandler(cfg, quota, scans, photos, generator).RegisterRoutes(v1)
		NewDebugHandler(quota, cfg.DebugSecretHash).RegisterRoutes(v1)
	}

	return nil
}
