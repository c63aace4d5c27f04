package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onlyanon/internal/auth"
	"onlyanon/internal/blockchain"
	"onlyanon/internal/middleware"
	"onlyanon/internal/services"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ChainDiagnostics checks the RPC node behind payment verification
type ChainDiagnostics interface {
	RunDiagnostics(ctx context.Context) *blockchain.DiagnosticResult
}

// Dependencies are everything the HTTP layer needs
type Dependencies struct {
	Auth      *services.AuthService
	Creators  *services.CreatorService
	Offerings *services.OfferingService
	Questions *services.QuestionService
	Replies   *services.ReplyService

	JWT *auth.JWTManager

	// RedeemLimiter throttles code redemption per client IP. Nil disables it.
	RedeemLimiter   middleware.Limiter
	RedeemPerMinute int

	Database Pinger
	// Chain is nil when payments are not verified on chain
	Chain  ChainDiagnostics
	Logger *slog.Logger
}

// NewRouter returns a bare engine that honours X-Forwarded-For only from
// trustedProxies. With none configured, ClientIP is the socket address.
func NewRouter(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return router, nil
}

// RegisterRoutes mounts every endpoint on router
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger

	// Unmatched paths, including a code typed with slashes or left empty,
	// get the same body as a failed redemption.
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFoundBody)
	})

	authHandler := NewAuthHandler(deps.Auth, deps.Creators, logger)
	creatorHandler := NewCreatorHandler(deps.Creators, logger)
	offeringHandler := NewOfferingHandler(deps.Offerings, logger)
	questionHandler := NewQuestionHandler(deps.Questions, logger)
	inboxHandler := NewInboxHandler(deps.Replies, logger)

	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if deps.Database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Database.PingContext(ctx); err != nil {
				logger.Error("health check failed", "error", err)
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.GET("/health/chain", func(c *gin.Context) {
		if deps.Chain == nil {
			c.JSON(http.StatusOK, gin.H{"status": "disabled"})
			return
		}
		result := deps.Chain.RunDiagnostics(c.Request.Context())
		code := http.StatusOK
		if !result.RPCConnected {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, result)
	})

	// Public auth routes
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(auth.Middleware(deps.JWT))
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public asker routes
	router.GET("/api/creators/:handle", creatorHandler.GetPublicProfile)
	router.POST("/api/questions", questionHandler.SubmitQuestion)

	redeem := router.Group("/api/questions")
	if deps.RedeemLimiter != nil {
		redeem.Use(middleware.RateLimit(deps.RedeemLimiter, deps.RedeemPerMinute, logger))
	}
	{
		redeem.POST("/redeem", questionHandler.RedeemCode)
		redeem.GET("/code/:code", questionHandler.GetByCode)
	}

	// Creator routes
	api := router.Group("/api")
	api.Use(auth.Middleware(deps.JWT))
	{
		api.PUT("/creator/profile", creatorHandler.UpdateProfile)

		api.GET("/offerings", offeringHandler.ListOfferings)
		api.POST("/offerings", offeringHandler.CreateOffering)
		api.PUT("/offerings/:id", offeringHandler.UpdateOffering)
		api.DELETE("/offerings/:id", offeringHandler.DeleteOffering)

		api.GET("/inbox", inboxHandler.GetInbox)
		api.POST("/inbox/:id/reply", inboxHandler.ReplyToQuestion)
	}
}
