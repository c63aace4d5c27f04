package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onlyanon/internal/auth"
	"onlyanon/internal/services"
)

// CreatorHandler serves creator profiles
type CreatorHandler struct {
	creatorService *services.CreatorService
	logger         *slog.Logger
}

// NewCreatorHandler creates a new CreatorHandler
func NewCreatorHandler(creatorService *services.CreatorService, logger *slog.Logger) *CreatorHandler {
	return &CreatorHandler{creatorService: creatorService, logger: logger}
}

// GetPublicProfile returns a creator's public profile and active offerings
// GET /api/creators/:handle
func (h *CreatorHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.creatorService.GetPublicProfile(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile changes the authenticated creator's profile
// PUT /api/creator/profile
func (h *CreatorHandler) UpdateProfile(c *gin.Context) {
	creatorID, exists := auth.GetCreatorID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creator, err := h.creatorService.UpdateProfile(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"creator": creator})
}
