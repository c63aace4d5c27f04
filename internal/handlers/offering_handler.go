package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onlyanon/internal/auth"
	"onlyanon/internal/services"
)

// OfferingHandler manages the authenticated creator's offerings
type OfferingHandler struct {
	offeringService *services.OfferingService
	logger          *slog.Logger
}

// NewOfferingHandler creates a new OfferingHandler
func NewOfferingHandler(offeringService *services.OfferingService, logger *slog.Logger) *OfferingHandler {
	return &OfferingHandler{offeringService: offeringService, logger: logger}
}

// ListOfferings lists every offering of the creator
// GET /api/offerings
func (h *OfferingHandler) ListOfferings(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	offerings, err := h.offeringService.ListForCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offerings": offerings})
}

// CreateOffering adds an offering
// POST /api/offerings
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req services.OfferingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offering, err := h.offeringService.Create(c.Request.Context(), creatorID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, offering)
}

// UpdateOffering changes an offering
// PUT /api/offerings/:id
func (h *OfferingHandler) UpdateOffering(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offering id"})
		return
	}

	var req services.OfferingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offering, err := h.offeringService.Update(c.Request.Context(), creatorID, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}

// DeleteOffering deactivates an offering. Its questions stay redeemable.
// DELETE /api/offerings/:id
func (h *OfferingHandler) DeleteOffering(c *gin.Context) {
	creatorID, ok := auth.GetCreatorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offering id"})
		return
	}

	if err := h.offeringService.Deactivate(c.Request.Context(), creatorID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
