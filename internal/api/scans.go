package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapdish/backend/config"
	"github.com/snapdish/backend/internal/model"
	"github.com/snapdish/backend/internal/service"
)

// ScanHandler handles photo analysis and recipe regeneration requests.
type ScanHandler struct {
	cfg       *config.Config
	quota     *service.QuotaTracker
	scans     *service.ScanRegistry
	photos    *service.PhotoService
	generator *service.RecipeGenerator
}

// NewScanHandler creates a new ScanHandler instance.
func NewScanHandler(cfg *config.Config, quota *service.QuotaTracker, scans *service.ScanRegistry, photos *service.PhotoService, generator *service.RecipeGenerator) *ScanHandler {
	return &ScanHandler{
		cfg:       cfg,
		quota:     quota,
		scans:     scans,
		photos:    photos,
		generator: generator,
	}
}

// RegisterRoutes registers the scan routes.
func (h *ScanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/analyze", h.Analyze)
	router.POST("/regenerate", h.Regenerate)
	router.GET("/scans/:id", h.GetScan)
}

// Analyze handles POST /analyze: quota checks, scan creation, generation.
func (h *ScanHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId and imageBase64 are required"})
		return
	}

	ctx := c.Request.Context()

	// Opportunistic eviction of scans past the retention horizon.
	h.scans.SweepExpired(ctx, h.cfg.ScanRetentionDays)

	user, err := h.quota.ResolveUser(ctx, req.DeviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user record: " + err.Error()})
		return
	}

	cooldown, err := h.quota.CheckCooldown(ctx, user, service.CooldownAnalyze, h.cfg.AnalyzeCooldown)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user record: " + err.Error()})
		return
	}
	if cooldown.Blocked {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "Please wait before analyzing another photo",
			"code":              CodeTooManyRequests,
			"retryAfterSeconds": cooldown.RetryAfterSeconds,
		})
		return
	}

	freeUse, err := h.quota.ConsumeFreeUse(ctx, user, h.cfg.FreeWeeklyLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user record: " + err.Error()})
		return
	}
	if freeUse.Limited {
		c.JSON(http.StatusForbidden, gin.H{
			"error":        "Weekly free limit reached",
			"code":         CodeFreeLimitReached,
			"usedThisWeek": freeUse.UsedThisWeek,
			"limitPerWeek": h.cfg.FreeWeeklyLimit,
			"unlockAtMs":   freeUse.UnlockAtMs,
		})
		return
	}

	imagePath, imageData, cleanup, err := h.photos.WriteTemp(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image payload: " + err.Error()})
		return
	}
	defer cleanup()

	prefs := model.Preferences{
		MealType:             req.MealType,
		ExtraIngredientsText: req.ExtraIngredientsText,
		NutritionGoals:       req.NutritionGoals,
		TimeLimit:            req.TimeLimit,
		Difficulty:           req.Difficulty,
		Equipment:            req.Equipment,
	}

	scan, err := h.scans.Create(ctx, req.DeviceID, prefs, req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scan: " + err.Error()})
		return
	}

	h.photos.Archive(ctx, scan.ID, imageData)

	result, err := h.generator.Generate(ctx, scan, user.IsPremium, imagePath)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeResponse(scan, user.IsPremium, result))
}

// Regenerate handles POST /regenerate. The body is decoded as a raw map so a
// partial preference update can be merged field by field: absent or
// wrong-typed fields leave the stored scan unchanged.
func (h *ScanHandler) Regenerate(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	deviceID, _ := body["deviceId"].(string)
	scanID, _ := body["scanId"].(string)
	if deviceID == "" || scanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId and scanId are required"})
		return
	}

	ctx := c.Request.Context()
	h.scans.SweepExpired(ctx, h.cfg.ScanRetentionDays)

	user, err := h.quota.ResolveUser(ctx, deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user record: " + err.Error()})
		return
	}

	scan, ok := h.scans.Get(scanID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found", "code": CodeScanNotFound})
		return
	}
	if !h.scans.Authorize(scan, deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Scan belongs to another device", "code": CodeScanForbidden})
		return
	}

	if !user.IsPremium && scan.RegenCount >= h.cfg.FreeRegenLimit {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Free regeneration limit reached for this scan",
			"code":  CodeRegenLimitReached,
		})
		return
	}

	// Cooldown comes after the ownership and regen-limit checks so a doomed
	// request never advances the regen timestamp.
	cooldown, err := h.quota.CheckCooldown(ctx, user, service.CooldownRegen, h.cfg.RegenCooldown)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user record: " + err.Error()})
		return
	}
	if cooldown.Blocked {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             "Please wait before regenerating",
			"code":              CodeTooManyRequests,
			"retryAfterSeconds": cooldown.RetryAfterSeconds,
		})
		return
	}

	if err := h.scans.ApplyRegenUpdate(ctx, scan, body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scan: " + err.Error()})
		return
	}
	if err := h.scans.BumpRegenCount(ctx, scan, user.IsPremium); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save scan: " + err.Error()})
		return
	}

	imagePath, _, cleanup, err := h.photos.WriteTemp(scan.ImageBase64)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored image is unreadable: " + err.Error()})
		return
	}
	defer cleanup()

	result, err := h.generator.Generate(ctx, scan, user.IsPremium, imagePath)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeResponse(scan, user.IsPremium, result))
}

// GetScan handles GET /scans/:id, an owner-gated read of a stored scan. The
// encoded photo never appears in the payload.
func (h *ScanHandler) GetScan(c *gin.Context) {
	deviceID := c.Query("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId query parameter is required"})
		return
	}

	scan, ok := h.scans.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found", "code": CodeScanNotFound})
		return
	}
	if !h.scans.Authorize(scan, deviceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Scan belongs to another device", "code": CodeScanForbidden})
		return
	}

	resp := gin.H{"scan": scan}
	if url, err := h.photos.ArchiveURL(c.Request.Context(), scan.ID); err == nil {
		resp["photoUrl"] = url
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScanHandler) writeGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoFoodDetected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "No food detected in the photo",
			"code":  CodeNoFoodDetected,
		})
	case errors.Is(err, service.ErrBadAIOutput):
		log.Printf("[ScanHandler] Generation produced unusable output: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate recipe: " + err.Error(),
			"code":  CodeAIBadOutput,
		})
	default:
		log.Printf("[ScanHandler] Generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe: " + err.Error()})
	}
}

func recipeResponse(scan *model.Scan, premium bool, result *model.GenerationResult) RecipeResponse {
	resp := RecipeResponse{
		ScanID:     scan.ID,
		IsPremium:  premium,
		RegenCount: scan.RegenCount,
	}
	if result.Premium != nil {
		resp.Recipe = result.Premium
	} else {
		resp.Recipe = result.Free
	}
	return resp
}
