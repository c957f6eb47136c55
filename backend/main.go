package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/cache"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/config"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/database"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/handlers"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/middleware"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/models"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/monitoring"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/repositories"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/services"
	"github.com/subhadeepchowdhury41/teamsync-sub000/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state
type Application struct {
	Config   *config.Config
	Pool     *database.DatabasePool
	DB       *gorm.DB
	Cache    cache.Cache
	Redis    *redis.Client
	Router   *gin.Engine
	Server   *http.Server
	Worker   *worker.Worker
	JobQueue *worker.JobQueue
	WarmPool *cache.WarmPool

	// Services
	AuthzService        services.AuthorizationService
	AuthService         services.AuthService
	RegisterService     services.RegisterService
	UserService         services.UserService
	ProjectService      services.ProjectService
	MemberService       services.MemberService
	TaskService         services.TaskService
	TagService          services.TagService
	CommentService      services.CommentService
	NotificationService services.NotificationService
	DashboardService    services.DashboardService
	DashboardImpl       *services.DashboardServiceImpl
	CachedDashboard     *services.CachedDashboardService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing TeamSync Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewDatabasePool(database.PoolConfigFromApp(cfg))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.Pool = pool
	app.DB = pool.DB
	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
	if err := repositories.RunMigrations(app.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (cache degrades to memory, notifications stay in the database)", err)
	} else {
		log.Println("✅ Redis connected")
	}
	app.Redis = redisClient

	// Multi-level cache: memory L1 in front of Redis L2. The circuit
	// breaker keeps Redis outages from slowing down dashboard reads.
	redisCache := cache.NewRedisCacheFromClient(redisClient)
	app.Cache = cache.NewMultiLevelCache(redisCache)
	log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")

	app.WarmPool = cache.NewWarmPool(3, app.Cache)
	app.WarmPool.Start()
	log.Println("✅ Dashboard warm pool started")

	// Services
	authz := services.NewAuthorizationService()
	app.AuthzService = authz
	app.AuthService = services.NewAuthService()
	app.RegisterService = services.NewRegisterService()
	app.UserService = services.NewUserService()
	app.ProjectService = services.NewProjectService(authz)
	app.MemberService = services.NewMemberService(authz)
	app.TaskService = services.NewTaskService(authz)
	app.TagService = services.NewTagService(authz)
	app.NotificationService = services.NewNotificationService()

	app.JobQueue = worker.NewJobQueue(redisClient)
	dispatcher := worker.NewNotificationDispatcher(app.JobQueue)
	app.CommentService = services.NewCommentService(authz, dispatcher)

	app.DashboardImpl = services.NewDashboardService(authz)
	app.CachedDashboard = services.NewCachedDashboardService(app.DashboardImpl, authz, app.Cache)
	app.DashboardService = app.CachedDashboard
	log.Println("✅ All services initialized")

	app.startWorker()

	return app, nil
}

// startWorker wires the background job worker: notification delivery,
// periodic dashboard warmup and refresh token cleanup.
func (app *Application) startWorker() {
	app.Worker = worker.NewWorker(worker.WorkerConfig{
		RedisClient: app.Redis,
		Concurrency: 2,
		Queues:      []string{worker.NotificationQueue, worker.RetryQueue},
	})

	app.Worker.RegisterHandler(worker.JobTypeNotificationDelivery, worker.DeliveryHandler)

	app.Worker.RegisterHandler(worker.JobTypeDashboardWarmup, func(ctx context.Context, job *worker.Job) error {
		return app.warmProjectDashboards()
	})

	app.Worker.RegisterHandler(worker.JobTypeTokenCleanup, func(ctx context.Context, job *worker.Job) error {
		res := app.DB.Where("expires_at < ?", time.Now()).Delete(&models.Token{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("🧹 Removed %d expired refresh tokens", res.RowsAffected)
		}
		return nil
	})

	app.Worker.Start(2)
	log.Println("✅ Background worker started")

	if err := app.JobQueue.Enqueue(worker.NotificationQueue, worker.JobTypeTokenCleanup, nil); err != nil {
		log.Printf("⚠️  Could not schedule token cleanup: %v", err)
	}
}

// warmProjectDashboards queues a summary recompute for every project.
func (app *Application) warmProjectDashboards() error {
	var projectIDs []string
	if err := app.DB.Model(&models.Project{}).Pluck("id", &projectIDs).Error; err != nil {
		return err
	}

	jobs := make([]cache.WarmupJob, 0, len(projectIDs))
	for _, idStr := range projectIDs {
		projectID := uuid.FromStringOrNil(idStr)
		if projectID == uuid.Nil {
			continue
		}
		jobs = append(jobs, cache.WarmupJob{
			Key: cache.ProjectSummaryKey(projectID),
			TTL: 30 * time.Second,
			Loader: func() (interface{}, error) {
				return app.DashboardImpl.ComputeProjectSummary(app.DB, projectID)
			},
		})
	}

	app.WarmPool.SubmitAll(jobs)
	return nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	// Rate limiting
	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return app.Pool.Health()
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return app.Redis.Ping(ctx).Err()
	})

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", monitoring.HealthHandler())
	r.GET("/ready", monitoring.ReadinessHandler())
	r.GET("/live", monitoring.LivenessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	v1 := r.Group("/api/v1")

	// Public authentication routes
	authRoutes := v1.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
		registrationHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)

		// Credential endpoints get a stricter Redis-backed limit on top
		// of the global per-IP bucket.
		loginLimiter := middleware.NewSlidingWindowLimiter(app.Redis)
		authRoutes.POST("/register", loginLimiter.Limit("register", 10, time.Minute, middleware.IPKeyFunc), registrationHandler.Registration)
		authRoutes.POST("/login", loginLimiter.Limit("login", 10, time.Minute, middleware.IPKeyFunc), authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Protected routes (require authentication)
	protected := v1.Group("")
	protected.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{Secret: app.Config.JWTSecret}))
	{
		userHandler := handlers.NewUserHandler(app.DB, app.UserService, app.Config.Uploads)
		userRoutes := protected.Group("/users")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.PUT("/profile", userHandler.UpdateProfile)
			userRoutes.POST("/profile/avatar", userHandler.UploadAvatar)
			userRoutes.GET("/search", userHandler.SearchUser)
		}

		projectHandler := handlers.NewProjectHandler(app.DB, app.ProjectService, app.CachedDashboard)
		memberHandler := handlers.NewMemberHandler(app.DB, app.MemberService, app.CachedDashboard)
		taskHandler := handlers.NewTaskHandler(app.DB, app.TaskService, app.CachedDashboard)
		tagHandler := handlers.NewTagHandler(app.DB, app.TagService)
		dashboardHandler := handlers.NewDashboardHandler(app.DB, app.DashboardService)

		projectRoutes := protected.Group("/projects")
		{
			projectRoutes.POST("", projectHandler.CreateProject)
			projectRoutes.GET("", projectHandler.ListProjects)
			projectRoutes.GET("/:id", projectHandler.GetProject)
			projectRoutes.PUT("/:id", projectHandler.UpdateProject)
			projectRoutes.DELETE("/:id", projectHandler.DeleteProject)

			projectRoutes.POST("/:id/members", memberHandler.AddMember)
			projectRoutes.GET("/:id/members", memberHandler.ListMembers)
			projectRoutes.PUT("/:id/members/:userId", memberHandler.UpdateMemberRole)
			projectRoutes.DELETE("/:id/members/:userId", memberHandler.RemoveMember)

			projectRoutes.POST("/:id/tasks", taskHandler.CreateTask)
			projectRoutes.GET("/:id/tasks", taskHandler.ListTasks)

			projectRoutes.POST("/:id/tags", tagHandler.CreateTag)
			projectRoutes.GET("/:id/tags", tagHandler.ListTags)

			projectRoutes.GET("/:id/summary", dashboardHandler.GetProjectSummary)
		}

		commentHandler := handlers.NewCommentHandler(app.DB, app.CommentService)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.GET("/:taskId", taskHandler.GetTaskByID)
			taskRoutes.PUT("/:taskId", taskHandler.UpdateTask)
			taskRoutes.DELETE("/:taskId", taskHandler.DeleteTask)

			taskRoutes.POST("/:taskId/comments", commentHandler.CreateComment)
			taskRoutes.GET("/:taskId/comments", commentHandler.ListComments)
		}

		tagRoutes := protected.Group("/tags")
		{
			tagRoutes.PUT("/:tagId", tagHandler.UpdateTag)
			tagRoutes.DELETE("/:tagId", tagHandler.DeleteTag)
		}

		protected.DELETE("/comments/:commentId", commentHandler.DeleteComment)

		notificationHandler := handlers.NewNotificationHandler(app.DB, app.NotificationService)
		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.ListNotifications)
			notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)
			notificationRoutes.PUT("/:id/read", notificationHandler.MarkRead)
			notificationRoutes.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		protected.GET("/dashboard/me", dashboardHandler.GetUserSummary)

		cacheHandler := handlers.NewCacheHandler(app.DB, app.Cache, app.WarmPool, app.DashboardImpl)
		cacheRoutes := protected.Group("/admin/cache")
		{
			cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
			cacheRoutes.GET("/health", cacheHandler.GetCacheHealth)
			cacheRoutes.POST("/warm", cacheHandler.WarmDashboards)
			cacheRoutes.DELETE("/keys/:key", cacheHandler.EvictCacheKey)
		}
	}

	// Uploaded avatars are served straight from disk.
	r.Static("/uploads/avatars", app.Config.Uploads.AvatarDir)

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Worker != nil {
		app.Worker.Stop()
	}

	if app.WarmPool != nil {
		app.WarmPool.Stop()
	}

	// Closing the cache also closes the shared Redis client.
	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}
