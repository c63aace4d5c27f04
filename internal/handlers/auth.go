package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onlyanon/internal/auth"
	"onlyanon/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService    *services.AuthService
	creatorService *services.CreatorService
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, creatorService *services.CreatorService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		creatorService: creatorService,
		logger:         logger,
	}
}

// WalletLogin authenticates a creator by their Solana wallet address and a
// signature of auth.LoginMessage(timestamp).
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		Timestamp     int64  `json:"timestamp" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), auth.Credentials{
		WalletAddress: req.WalletAddress,
		Signature:     req.Signature,
		Timestamp:     req.Timestamp,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout handles creator logout (stateless JWT, client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the authenticated creator's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	creatorID, exists := auth.GetCreatorID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	creator, err := h.creatorService.GetByID(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"creator": creator,
	})
}
