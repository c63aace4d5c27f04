package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"onlyanon/internal/accesscode"
	"onlyanon/internal/app"
	"onlyanon/internal/auth"
	"onlyanon/internal/blockchain"
	"onlyanon/internal/config"
	"onlyanon/internal/database"
	"onlyanon/internal/handlers"
	"onlyanon/internal/jobs"
	"onlyanon/internal/middleware"
	"onlyanon/internal/payment"
	"onlyanon/internal/repository"
	"onlyanon/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	// Connect to database
	db, err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get database handle", "error", err)
		os.Exit(1)
	}

	repo := repository.NewRepository(db)

	jwtManager, err := auth.NewJWTManager(cfg.App.JWTSecret, cfg.App.JWTTTL)
	if err != nil {
		logger.Error("failed to initialize JWT", "error", err)
		os.Exit(1)
	}

	var (
		verifier payment.Verifier
		chain    handlers.ChainDiagnostics
	)
	if cfg.Payment.Verify {
		solanaClient := blockchain.NewSolanaClient(cfg.Solana.Network, cfg.Solana.RPCURL)
		verifier, chain = solanaClient, solanaClient
		logger.Info("payment verification enabled", "network", cfg.Solana.Network)
	} else {
		verifier = payment.StaticVerifier{}
		logger.Warn("payment verification disabled, any well-formed signature is accepted")
	}

	issuer := accesscode.NewIssuer(repo,
		accesscode.WithMaxAttempts(cfg.App.CodeIssueAttempts),
		accesscode.WithLogger(logger),
	)
	resolver := accesscode.NewResolver(repo)

	authService := services.NewAuthService(repo, auth.NewWalletVerifier(cfg.App.LoginWindow), jwtManager, logger)
	creatorService := services.NewCreatorService(repo)
	offeringService := services.NewOfferingService(repo)
	questionService := services.NewQuestionService(repo, issuer, resolver, verifier, cfg.App.MaxQuestionLength, logger)
	replyService := services.NewReplyService(repo)

	// Redemption rate limiter: shared through Redis when configured
	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiter will fail open until it recovers", "error", err)
		}
		cancel()

		limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.RedeemPerMinute)
		logger.Info("redemption rate limiter uses redis", "addr", cfg.Redis.Addr)
	} else {
		memLimiter := middleware.NewMemoryLimiter(cfg.RateLimit.RedeemPerMinute, time.Minute)
		defer memLimiter.Stop()
		limiter = memLimiter
	}

	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	if cfg.Archive.RepliedAfter > 0 {
		archiveJob := jobs.NewArchiveJob(repo, cfg.Archive.RepliedAfter, cfg.Archive.Interval, logger)
		go archiveJob.Start(jobCtx)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := handlers.NewRouter(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}
	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.Recovery(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.RegisterRoutes(router, handlers.Dependencies{
		Auth:            authService,
		Creators:        creatorService,
		Offerings:       offeringService,
		Questions:       questionService,
		Replies:         replyService,
		JWT:             jwtManager,
		RedeemLimiter:   limiter,
		RedeemPerMinute: cfg.RateLimit.RedeemPerMinute,
		Database:        sqlDB,
		Chain:           chain,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
