package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	admincontroller "github.com/tigabum/christian-platform/internal/admin/controller"
	adminservice "github.com/tigabum/christian-platform/internal/admin/service"
	"github.com/tigabum/christian-platform/internal/common/cache"
	"github.com/tigabum/christian-platform/internal/common/db"
	commonmiddleware "github.com/tigabum/christian-platform/internal/common/http/middleware"
	"github.com/tigabum/christian-platform/internal/common/mq"
	identitycontroller "github.com/tigabum/christian-platform/internal/identity/controller"
	identitymiddleware "github.com/tigabum/christian-platform/internal/identity/middleware"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	identityservice "github.com/tigabum/christian-platform/internal/identity/service"
	questioncontroller "github.com/tigabum/christian-platform/internal/question/controller"
	questionrepo "github.com/tigabum/christian-platform/internal/question/repository"
	questionservice "github.com/tigabum/christian-platform/internal/question/service"
	"github.com/tigabum/christian-platform/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/qa-service.yaml"

func main() {
	configPath := flag.String("config", getenvWithDefault("QA_SERVICE_CONFIG", defaultConfigPath), "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init mysql failed", zap.Error(err))
		return
	}
	defer func() { _ = database.Close() }()
	dbProvider := db.NewStaticProvider(database)

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() { _ = redisCache.Close() }()

	var publisher *questionservice.StatusEventPublisher
	if appCfg.Events.Enabled {
		producer, err := mq.NewKafkaProducer(appCfg.Events.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		defer func() { _ = producer.Close() }()
		publisher = questionservice.NewStatusEventPublisher(producer, appCfg.Events.Topic)
	}

	userRepo := identityrepo.NewUserRepository(dbProvider, redisCache)
	questionRepo := questionrepo.NewQuestionRepository(dbProvider, redisCache)
	activityRepo := questionrepo.NewActivityRepository(dbProvider)

	authService := identityservice.NewAuthService(userRepo, redisCache, identityservice.AuthServiceConfig{
		JWTSecret:      []byte(appCfg.Auth.JWTSecret),
		JWTIssuer:      appCfg.Auth.JWTIssuer,
		AccessTokenTTL: appCfg.Auth.AccessTokenTTL,
		LoginFailTTL:   appCfg.Auth.LoginFailTTL,
		LoginFailLimit: appCfg.Auth.LoginFailLimit,
	})
	userService := identityservice.NewUserService(userRepo)
	lifecycleService := questionservice.NewLifecycleService(questionRepo, activityRepo, userRepo, publisher)
	responderService := adminservice.NewResponderService(userRepo)
	dashboardService := adminservice.NewDashboardService(questionRepo, activityRepo, userRepo, redisCache)

	authController := identitycontroller.NewAuthController(authService)
	userController := identitycontroller.NewUserController(userService)
	questionController := questioncontroller.NewQuestionController(lifecycleService)
	adminController := admincontroller.NewAdminController(responderService, dashboardService, lifecycleService)

	httpServer := buildHTTPServer(appCfg, database, redisCache,
		authService, authController, userController, questionController, adminController)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "qa-service started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(
	cfg *AppConfig,
	database db.Database,
	redisCache cache.Cache,
	authService *identityservice.AuthService,
	authController *identitycontroller.AuthController,
	userController *identitycontroller.UserController,
	questionController *questioncontroller.QuestionController,
	adminController *admincontroller.AdminController,
) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmiddleware.TraceContextMiddleware())
	maxAge := ""
	if cfg.CORS.MaxAge != "" {
		maxAge = cfg.CORS.MaxAge
	}
	router.Use(commonmiddleware.CORSMiddleware(commonmiddleware.CORSConfig{
		Enabled:          cfg.CORS.Enabled,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           maxAge,
	}))
	router.Use(requestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readyz", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context()); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.Status(http.StatusOK)
	})

	authed := func(roles ...string) gin.HandlerFunc {
		return identitymiddleware.AuthMiddleware(authService, identitymiddleware.AuthPolicy{Roles: roles})
	}

	api := router.Group("/api/v1")

	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", authed(), authController.Me)

	api.GET("/users/responders", authed(), userController.ListResponders)

	questions := api.Group("/questions")
	questions.GET("/public", questionController.ListPublic)
	questions.POST("", authed("asker"), questionController.Create)
	questions.GET("/my", authed("asker"), questionController.ListMine)
	questions.GET("/worklist", authed("responder"), questionController.Worklist)
	questions.GET("/:id", authed(), questionController.Get)
	questions.PATCH("/:id/claim", authed("responder"), questionController.Claim)
	questions.PATCH("/:id/begin", authed("responder"), questionController.Begin)
	questions.PATCH("/:id/answer", authed("responder"), questionController.Answer)
	questions.PATCH("/:id/close", authed("responder", "admin"), questionController.Close)

	admin := api.Group("/admin", authed("admin"))
	admin.POST("/responders", adminController.CreateResponder)
	admin.GET("/responders", adminController.ListResponders)
	admin.GET("/responders/:id", adminController.GetResponder)
	admin.PUT("/responders/:id", adminController.UpdateResponder)
	admin.POST("/questions/:id/assign", adminController.AssignQuestion)
	admin.GET("/dashboard/stats", adminController.DashboardStats)
	admin.GET("/dashboard/activities", adminController.DashboardActivities)

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func getenvWithDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
