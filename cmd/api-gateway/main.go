package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/study-planner-api/api/swagger"
	"github.com/noah-isme/study-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/database"
	"github.com/noah-isme/study-planner-api/pkg/jobs"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

// @title Study Planner API
// @version 1.0.0
// @description Allocates study hours across subjects and dates and exports the schedule.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server stopped with error", "error", err)
	}
}

type backends struct {
	db    *sqlx.DB
	redis *redis.Client
}

func (b backends) Close() {
	if b.db != nil {
		_ = b.db.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func connect(ctx context.Context, cfg *config.Config, logr *zap.Logger) (backends, error) {
	var b backends
	if cfg.Persistence.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return b, err
		}
		b.db = db
		logr.Sugar().Infow("postgres connected", "host", cfg.Database.Host, "db", cfg.Database.Name)
	}
	if cfg.Proposals.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return backends{}, err
		}
		b.redis = client
		logr.Sugar().Infow("redis connected", "host", cfg.Redis.Host)
	}
	return b, nil
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	b, err := connect(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer b.Close()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(b.redis, logr), metricsSvc, cfg.Proposals.TTL, logr, b.redis != nil)
	var proposals service.ProposalStore = service.NewMemoryProposalStore(cfg.Proposals.TTL)
	if cacheSvc.Enabled() {
		proposals = service.NewCacheProposalStore(cacheSvc, cfg.Proposals.TTL)
	}

	plannerCfg := service.StudyPlanServiceConfig{Planner: cfg.Planner, ProposalTTL: cfg.Proposals.TTL}
	var studyPlans *service.StudyPlanService
	if b.db != nil {
		studyPlans = service.NewStudyPlanService(
			repository.NewStudyPlanRepository(b.db),
			repository.NewStudyPlanItemRepository(b.db),
			b.db,
			proposals, metricsSvc, validate, logr, plannerCfg,
		)
	} else {
		studyPlans = service.NewStudyPlanService(nil, nil, nil, proposals, metricsSvc, validate, logr, plannerCfg)
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc, err := service.NewExportService(files, signer, metricsSvc, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
		Anchor:    cfg.Planner.CalendarAnchor,
	}, logr, service.ExportRenderers{})
	if err != nil {
		return err
	}

	var exportJobs *service.ExportJobService
	if b.db != nil {
		exportJobs = service.NewExportJobService(studyPlans, exportSvc, metricsSvc, logr, service.ExportJobConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		queue := jobs.NewQueue[string]("exports", exportJobs.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		queue.OnFailure(exportJobs.MarkFailed)
		exportJobs.AttachQueue(queue)
		queue.Start(ctx)
		defer queue.Stop()
		exportJobs.StartCleanup(ctx)
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: "study-planner-api",
		Expiry: cfg.JWT.Expiration,
	})

	router := newRouter(cfg, logr, routes{
		metrics:  handler.NewMetricsHandler(metricsSvc, readinessChecks(b)),
		planner:  handler.NewPlannerHandler(studyPlans),
		plans:    handler.NewStudyPlanHandler(studyPlans),
		exports:  handler.NewExportHandler(studyPlans, exportSvc, exportJobs),
		tokens:   tokens,
		persist:  b.db != nil,
		observer: metricsSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "persistence", b.db != nil, "auth", cfg.Auth.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type routes struct {
	metrics  *handler.MetricsHandler
	planner  *handler.PlannerHandler
	plans    *handler.StudyPlanHandler
	exports  *handler.ExportHandler
	tokens   *service.TokenService
	persist  bool
	observer *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(h.observer, "/metrics", "/health", "/ready"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	pass := func(c *gin.Context) { c.Next() }
	members := []gin.HandlerFunc{pass}
	admins := []gin.HandlerFunc{pass}
	if cfg.Auth.Enabled {
		members = []gin.HandlerFunc{
			internalmiddleware.JWT(h.tokens),
			internalmiddleware.RequireRoles(models.RolePlanner, models.RoleAdmin),
		}
		admins = []gin.HandlerFunc{
			internalmiddleware.JWT(h.tokens),
			internalmiddleware.RequireRoles(models.RoleAdmin),
		}
	}

	api.GET("/metrics/summary", append(admins, h.metrics.Summary)...)

	plannerGroup := api.Group("/planner")
	plannerGroup.POST("/weights", h.planner.Weights)
	plannerGroup.POST("/split", h.planner.Split)
	plannerGroup.POST("/schedule", h.planner.Schedule)

	plans := api.Group("/study-plans")
	plans.POST("/generate", h.plans.Generate)
	plans.GET("/proposals/:id", h.plans.Proposal)
	plans.GET("/proposals/:id/export", h.exports.ProposalExport)

	if h.persist {
		plans.GET("", append(members, h.plans.List)...)
		plans.GET("/:id", append(members, h.plans.Get)...)
		plans.POST("", append(members, h.plans.Save)...)
		plans.POST("/:id/activate", append(members, h.plans.Activate)...)
		plans.DELETE("/:id", append(members, h.plans.Delete)...)
		plans.POST("/:id/exports", append(members, h.exports.CreateJob)...)

		api.GET("/exports/jobs/:id", append(members, h.exports.JobStatus)...)
		api.GET("/exports/:token", h.exports.Download)
	}

	return r
}

func readinessChecks(b backends) map[string]handler.ReadinessCheck {
	checks := make(map[string]handler.ReadinessCheck)
	if b.db != nil {
		checks["postgres"] = func(ctx context.Context) error { return b.db.PingContext(ctx) }
	}
	if b.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return b.redis.Ping(ctx).Err() }
	}
	return checks
}
