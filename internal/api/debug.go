package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/snapdish/backend/internal/service"
)

// DebugHandler exposes the premium override knob used when testing tiers.
// The route is gated by a shared secret header and disappears entirely when
// no secret hash is configured.
type DebugHandler struct {
	quota      *service.QuotaTracker
	secretHash string
}

// NewDebugHandler creates a new DebugHandler instance.
func NewDebugHandler(quota *service.QuotaTracker, secretHash string) *DebugHandler {
	return &DebugHandler{
		quota:      quota,
		secretHash: secretHash,
	}
}

// RegisterRoutes registers the debug routes.
func (h *DebugHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/debug/premium", h.ForcePremium)
}

// ForcePremium handles POST /debug/premium.
func (h *DebugHandler) ForcePremium(c *gin.Context) {
	if h.secretHash == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	secret := c.GetHeader("X-Debug-Secret")
	if err := bcrypt.CompareHashAndPassword([]byte(h.secretHash), []byte(secret)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid debug secret"})
		return
	}

	var req struct {
		DeviceID  string `json:"deviceId" binding:"required"`
		IsPremium bool   `json:"isPremium"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId is required"})
		return
	}

	user, err := h.quota.SetPremium(c.Request.Context(), req.DeviceID, req.IsPremium)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user record: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deviceId":  user.DeviceID,
		"isPremium": user.IsPremium,
	})
}
