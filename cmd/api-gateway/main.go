package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/course-hub-api/api/swagger"
	"github.com/noah-isme/course-hub-api/internal/handler"
	"github.com/noah-isme/course-hub-api/internal/middleware"
	"github.com/noah-isme/course-hub-api/internal/models"
	"github.com/noah-isme/course-hub-api/internal/repository"
	"github.com/noah-isme/course-hub-api/internal/service"
	"github.com/noah-isme/course-hub-api/pkg/cache"
	"github.com/noah-isme/course-hub-api/pkg/config"
	"github.com/noah-isme/course-hub-api/pkg/database"
	"github.com/noah-isme/course-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-hub-api/pkg/storage"
)

// @title Course Hub API
// @version 1.0.0
// @description Grading, task and evaluation backend for the final-project course.
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, statistics caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	taskGradeRepo := repository.NewTaskGradeRepository(db)
	appealRepo := repository.NewAppealRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	templateRepo := repository.NewFeedbackTemplateRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Issuer)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, cfg.Statistics.CacheEnabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Statistics.CacheTTL, logr, false)
	}

	gradeSvc := service.NewGradeService(gradeRepo, submissionRepo, profileRepo, metricsSvc, nil, logr)
	taskSvc := service.NewTaskService(taskRepo, groupRepo, nil, logr)
	statsSvc := service.NewStatisticsService(statsRepo, groupRepo, cacheSvc, logr)
	gradingSvc := service.NewTaskGradingService(taskGradeRepo, taskRepo, appealRepo, statsSvc, metricsSvc, nil, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, groupRepo, nil, logr)
	templateSvc := service.NewFeedbackTemplateService(templateRepo, nil, logr)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(service.ReportServiceConfig{
			Repo:        reportRepo,
			Evaluations: evaluationRepo,
			Grades:      gradeRepo,
			Members:     groupRepo,
			Store:       store,
			Signer:      signer,
			BaseURL:     cfg.APIPrefix,
			Workers:     cfg.Reports.WorkerConcurrency,
			Retries:     cfg.Reports.WorkerRetries,
			Logger:      logr,
		})
		reportSvc.Start(context.Background())
		defer reportSvc.Stop()
	}

	// Handlers
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	gradingHandler := handler.NewTaskGradingHandler(gradingSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	statsHandler := handler.NewStatisticsHandler(statsSvc)
	templateHandler := handler.NewFeedbackTemplateHandler(templateSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := string(models.RoleAdmin)
	student := string(models.RoleStudent)

	api := r.Group("/api/v1")
	api.Use(middleware.JWT(authSvc))
	{
		grades := api.Group("/grades")
		{
			grades.GET("", middleware.RBAC(admin), gradeHandler.List)
			grades.GET("/:id", middleware.RBAC(admin, "SELF"), gradeHandler.Get)
			grades.GET("/by-email/:email", middleware.RBAC(admin), gradeHandler.GetByEmail)
			grades.POST("/:id/recalculate", middleware.RBAC(admin), gradeHandler.Recalculate)
			grades.PUT("/extra-points", middleware.RBAC(admin), gradeHandler.UpdateExtraPoints)
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", middleware.RBAC(admin, student), taskHandler.Create)
			tasks.GET("/:id", middleware.RBAC(admin, student), taskHandler.Get)
			tasks.PUT("/:id", middleware.RBAC(admin, student), taskHandler.Update)
			tasks.PATCH("/:id/status", middleware.RBAC(admin, student), taskHandler.SetStatus)
			tasks.DELETE("/:id", middleware.RBAC(admin, student), taskHandler.Delete)
			tasks.POST("/:id/assignees", middleware.RBAC(admin, student), taskHandler.Assign)
			tasks.DELETE("/:id/assignees/:studentId", middleware.RBAC(admin, student), taskHandler.Unassign)
			tasks.GET("/:id/grades", middleware.RBAC(admin, student), gradingHandler.ListByTask)
			tasks.GET("/:id/grades/:studentId", middleware.RBAC(admin, student), gradingHandler.GetForStudent)
		}

		taskGrades := api.Group("/task-grades")
		{
			taskGrades.POST("", middleware.RBAC(admin), gradingHandler.Grade)
			taskGrades.PUT("/:id", middleware.RBAC(admin), gradingHandler.Update)
		}

		appeals := api.Group("/appeals")
		{
			appeals.POST("", middleware.RBAC(student), gradingHandler.SubmitAppeal)
			appeals.GET("", middleware.RBAC(admin), gradingHandler.ListOpenAppeals)
			appeals.POST("/:id/resolve", middleware.RBAC(admin), gradingHandler.ResolveAppeal)
		}

		groups := api.Group("/groups")
		{
			groups.GET("/:id/tasks", middleware.RBAC(admin, student), taskHandler.ListByGroup)
			groups.GET("/:id/evaluations", middleware.RBAC(admin), evaluationHandler.ListByGroup)
			groups.GET("/:id/evaluations/:userId", middleware.RBAC(admin, student), evaluationHandler.Get)
			groups.GET("/:id/statistics", middleware.RBAC(admin, student), statsHandler.GroupStats)
		}

		evaluations := api.Group("/evaluations")
		{
			evaluations.PUT("", middleware.RBAC(admin), evaluationHandler.Upsert)
			evaluations.GET("/summary", middleware.RBAC(admin), evaluationHandler.Summary)
		}

		api.GET("/statistics/overview", middleware.RBAC(admin), statsHandler.Overview)

		templates := api.Group("/feedback-templates")
		{
			templates.GET("", middleware.RBAC(admin, student), templateHandler.List)
			templates.POST("", middleware.RBAC(admin), templateHandler.Create)
			templates.PUT("/:id", middleware.RBAC(admin), templateHandler.Update)
			templates.DELETE("/:id", middleware.RBAC(admin), templateHandler.Delete)
		}

		if reportSvc != nil {
			reportHandler := handler.NewReportHandler(reportSvc)
			reports := api.Group("/reports")
			{
				reports.POST("", middleware.RBAC(admin), reportHandler.Create)
				reports.GET("/:id", middleware.RBAC(admin), reportHandler.Status)
			}
			// Download links are pre-signed, so no JWT here.
			r.GET("/api/v1/reports/download/:token", reportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
