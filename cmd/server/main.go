package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/app"
	"github.com/GoPolymarket/gaslessgate/internal/config"
	"github.com/GoPolymarket/gaslessgate/internal/handler"
	"github.com/GoPolymarket/gaslessgate/internal/middleware"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/GoPolymarket/gaslessgate/internal/repository"
	"github.com/GoPolymarket/gaslessgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Persistence
	// Swap records: Redis > Postgres > memory, written to every tier.
	memStore := service.NewMemorySwapStore(1000)
	var (
		redisClient      *repository.RedisClient
		redisStore       service.SwapStore
		pgStore          service.SwapStore
		auditRepos       []service.AuditRepo
		pgAudit          *repository.PostgresAuditRepo
		eventBus         *repository.RedisEventBus
		idempotencyStore middleware.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis", "addr", cfg.Redis.Addr)
			redisStore = repository.NewRedisSwapStore(redisClient, time.Duration(cfg.Redis.RecordTTLSeconds)*time.Second)
			idempotencyStore = repository.NewRedisIdempotencyStore(redisClient, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
			auditRepos = append(auditRepos, repository.NewRedisAuditRepo(redisClient, cfg.Redis.AuditListKey, cfg.Redis.AuditListMax))
			eventBus = repository.NewRedisEventBus(redisClient, cfg.Redis.EventsChannel)
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory", "error", err)
		}
	}
	if idempotencyStore == nil {
		idempotencyStore = middleware.NewInMemIdempotencyStore(time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second)
	}

	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			logger.Info("✅ Connected to PostgreSQL")
			pgStore = repository.NewPostgresSwapStore(db)
			pgAudit = repository.NewPostgresAuditRepo(db)
			auditRepos = append(auditRepos, pgAudit)
		} else {
			logger.Error("⚠️ Failed to connect to DB, swap history and audit stay local", "error", err)
		}
	}
	swapStore := service.NewTieredSwapStore(redisStore, pgStore, memStore)

	auditSvc, err := service.NewAuditService(cfg.Audit.Dir, auditRepos...)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	// 3. Initialize Core Services
	// With Redis, snapshots travel through pub/sub so every instance's
	// stream sees them; otherwise the hub is fed directly.
	reporters := service.MultiReporter{service.LogReporter{}, service.NewStoreReporter(swapStore)}
	var pipeline *app.Pipeline
	current := func() (model.SwapRecord, bool) {
		if pipeline == nil || pipeline.Orchestrator == nil {
			return model.SwapRecord{}, false
		}
		return pipeline.Orchestrator.Current()
	}
	hub := handler.NewStreamHub(current)
	if eventBus != nil {
		reporters = append(reporters, eventBus)
		if err := eventBus.Subscribe(ctx, func(rec model.SwapRecord) { hub.Report(ctx, rec) }); err != nil {
			logger.Error("⚠️ Failed to subscribe to swap events, streaming locally", "error", err)
			reporters = append(reporters, hub)
		}
	} else {
		reporters = append(reporters, hub)
	}

	pipeline, err = app.NewPipeline(cfg, service.WithReporter(reporters))
	if err != nil {
		log.Fatalf("Failed to initialize swap pipeline: %v", err)
	}
	defer pipeline.Close()
	if pipeline.Orchestrator == nil {
		logger.Warn("⚠️ No wallet key configured, POST /v1/swaps is disabled")
	}

	if pgAudit != nil && cfg.Audit.RetentionHours > 0 {
		go runAuditCleanup(ctx, pgAudit, cfg.Audit.Retention())
	}

	// 4. Initialize Handlers
	catalogHandler := handler.NewCatalogHandler(pipeline.Catalog)
	proxyHandler := handler.NewProxyHandler(pipeline.Client)
	authzHandler := handler.NewAuthorizationHandler(pipeline.Catalog)
	auditHandler := handler.NewAuditHandler(auditSvc)
	swaps := swapHandler(pipeline, swapStore)

	// 5. Setup Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware(auditSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "gaslessgate",
			"busy":     pipeline.Orchestrator != nil && pipeline.Orchestrator.Busy(),
			"wallet":   pipeline.Taker(),
			"readOnly": cfg.Server.ReadOnly,
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	limiter := middleware.NewClientLimiter(cfg.RateLimit)
	authenticated := []gin.HandlerFunc{
		middleware.AuthMiddleware(cfg),
		middleware.RateLimitMiddleware(limiter),
		middleware.ReadOnlyMiddleware(cfg.Server.ReadOnly),
	}

	api := r.Group("/api/gasless")
	api.Use(authenticated...)
	{
		api.GET("/price", proxyHandler.Price)
		api.GET("/quote", proxyHandler.Quote)
		api.POST("/submit", proxyHandler.Submit)
		api.GET("/status/:tradeHash", proxyHandler.Status)
	}

	v1 := r.Group("/v1")
	v1.Use(authenticated...)
	v1.Use(middleware.IdempotencyMiddleware(idempotencyStore))
	{
		v1.GET("/chains", catalogHandler.Chains)
		v1.GET("/chains/:id/tokens", catalogHandler.Tokens)
		v1.POST("/authorizations/eip3009", authzHandler.EIP3009)

		v1.GET("/swaps", swaps.List)
		v1.GET("/swaps/current", swaps.Current)
		v1.GET("/swaps/stream", hub.Serve)
		v1.GET("/swaps/:id", swaps.Get)
		if pipeline.Orchestrator != nil {
			v1.POST("/swaps", swaps.Create)
		}

		v1.GET("/audit", middleware.AdminMiddleware(cfg), auditHandler.List)
	}

	// 6. Start Server with Graceful Shutdown
	ln, port, err := listen(cfg.Server.Port, cfg.Server.AltPort)
	if err != nil {
		log.Fatalf("Server listen failed: %v", err)
	}
	srv := &http.Server{Handler: r}

	go func() {
		logger.Info("🚀 gaslessgate started", "port", port, "wallet", pipeline.Taker())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	auditSvc.Close()
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exiting")
}

func swapHandler(p *app.Pipeline, store service.SwapStore) *handler.SwapHandler {
	var runner handler.SwapRunner = idleRunner{}
	if p.Orchestrator != nil {
		runner = p.Orchestrator
	}
	return handler.NewSwapHandler(runner, p.Validator, store, p.Taker())
}

// listen binds port, or altPort when port is taken.
func listen(port, altPort string) (net.Listener, string, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err == nil {
		return ln, port, nil
	}
	if altPort == "" || altPort == port {
		return nil, "", err
	}
	logger.Warn("⚠️ Port in use, trying alternate", "port", port, "alt_port", altPort, "error", err)
	ln, err = net.Listen("tcp", ":"+altPort)
	if err != nil {
		return nil, "", err
	}
	return ln, altPort, nil
}

func runAuditCleanup(ctx context.Context, repo *repository.PostgresAuditRepo, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.Cleanup(ctx, retention); err != nil {
				logger.Error("audit cleanup failed", "error", err)
			}
		}
	}
}

// idleRunner serves read routes when no wallet is configured.
type idleRunner struct{}

func (idleRunner) Start(context.Context, model.SwapRequest) (model.SwapRecord, error) {
	return model.SwapRecord{}, errors.New("swaps are disabled without a wallet key")
}

func (idleRunner) Current() (model.SwapRecord, bool) { return model.SwapRecord{}, false }
