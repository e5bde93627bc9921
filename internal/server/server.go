package server

import (
	"context"
	"strings"
	"time"

	"github.com/nandaraf/famtask/internal/ai"
	"github.com/nandaraf/famtask/internal/config"
	"github.com/nandaraf/famtask/internal/middleware"
	"github.com/nandaraf/famtask/pkg/logger"
	"github.com/nandaraf/famtask/pkg/storage"

	adminHttp "github.com/nandaraf/famtask/internal/modules/admin/delivery/http"
	adminService "github.com/nandaraf/famtask/internal/modules/admin/service"

	interactionHttp "github.com/nandaraf/famtask/internal/modules/interaction/delivery/http"
	interactionRepo "github.com/nandaraf/famtask/internal/modules/interaction/repository"
	interactionService "github.com/nandaraf/famtask/internal/modules/interaction/service"

	leaderboardHttp "github.com/nandaraf/famtask/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "github.com/nandaraf/famtask/internal/modules/leaderboard/repository"
	leaderboardService "github.com/nandaraf/famtask/internal/modules/leaderboard/service"

	notiHttp "github.com/nandaraf/famtask/internal/modules/notification/delivery/http"
	notifRepo "github.com/nandaraf/famtask/internal/modules/notification/repository"
	notifService "github.com/nandaraf/famtask/internal/modules/notification/service"

	profileHttp "github.com/nandaraf/famtask/internal/modules/profile/delivery/http"
	profileService "github.com/nandaraf/famtask/internal/modules/profile/service"

	scoringRepo "github.com/nandaraf/famtask/internal/modules/scoring/repository"
	scoring "github.com/nandaraf/famtask/internal/modules/scoring/service"

	searchService "github.com/nandaraf/famtask/internal/modules/search/service"

	submissionHttp "github.com/nandaraf/famtask/internal/modules/submission/delivery/http"
	submissionRepo "github.com/nandaraf/famtask/internal/modules/submission/repository"
	submissionService "github.com/nandaraf/famtask/internal/modules/submission/service"

	taskHttp "github.com/nandaraf/famtask/internal/modules/task/delivery/http"
	taskRepo "github.com/nandaraf/famtask/internal/modules/task/repository"
	taskService "github.com/nandaraf/famtask/internal/modules/task/service"

	userHttp "github.com/nandaraf/famtask/internal/modules/user/delivery/http"
	userRepo "github.com/nandaraf/famtask/internal/modules/user/repository"
	userService "github.com/nandaraf/famtask/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	llmClient   *ai.LLMClient
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		logger.Sugar().Warnw("cloudinary storage unavailable, avatar uploads disabled", "err", err)
		imageStorage = nil
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)

	var llmClient *ai.LLMClient
	llmClient, err = ai.NewLLMClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		logger.Sugar().Warnw("llm client unavailable, grading and generation will fail", "err", err)
		llmClient = nil
	}
	grader := ai.NewGrader(llmClient)
	generator := ai.NewGenerator(llmClient)

	authSvc := userService.NewAuthService(users, cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification module
	notifications := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	// Scoring is the accounting core shared by submissions, the overdue
	// sweep and interactions.
	scores := scoringRepo.NewScoreRepository(db)
	scoringSvc := scoring.NewService(scores)

	adminSvc := adminService.NewAdminService(users)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, scoringSvc, notificationSvc)

	profileSvc := profileService.NewProfileService(users, imageStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	tasks := taskRepo.NewTaskRepository(db)
	taskSvc := taskService.NewTaskService(tasks, users, generator, notificationSvc, searchSvc)
	taskHandler := taskHttp.NewTaskHandler(taskSvc)

	submissions := submissionRepo.NewSubmissionRepository(db)
	submissionSvc := submissionService.NewSubmissionService(submissions, tasks, scoringSvc, grader, notificationSvc, searchSvc)
	submissionHandler := submissionHttp.NewSubmissionHandler(submissionSvc)

	interactions := interactionRepo.NewInteractionRepository(db)
	interactionLimiter := interactionService.NewRedisRateLimiter(redisClient, cfg.InteractionWindow)
	interactionSvc := interactionService.NewInteractionService(interactions, interactionLimiter, notificationSvc)
	interactionHandler := interactionHttp.NewInteractionHandler(interactionSvc)

	leaders := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaders)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/members", adminHandler.CreateMember)
			adminGroup.GET("/members", adminHandler.GetAllMembers)
			adminGroup.PUT("/members/:id", adminHandler.UpdateMember)
			adminGroup.DELETE("/members/:id", adminHandler.DeleteMember)
			adminGroup.POST("/members/:id/overdue-check", adminHandler.CheckOverdue)
			adminGroup.POST("/tasks", taskHandler.CreateTask)
			adminGroup.POST("/tasks/generate", taskHandler.GenerateTask)
			adminGroup.DELETE("/tasks/:task_id", taskHandler.DeleteTask)
		}

		// Task routes
		protected.GET("/tasks", taskHandler.GetMyTasks)
		protected.GET("/tasks/search", taskHandler.SearchTasks)
		protected.GET("/tasks/:task_id", taskHandler.GetTaskByID)
		protected.POST("/tasks/:task_id/submissions", submissionHandler.SubmitAnswer)
		protected.GET("/tasks/:task_id/submissions", submissionHandler.GetSubmissionsByTask)

		// Interaction routes
		protected.POST("/interactions", interactionHandler.CreateInteraction)
		protected.GET("/interactions/received", interactionHandler.GetReceived)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.GET("/profile/:username", profileHandler.GetProfileByUsername)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.POST("/profile/avatar", profileHandler.UploadAvatar)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		llmClient:   llmClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router, used by the http.Server in main and by tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Close releases clients the server owns.
func (s *Server) Close() {
	if s.llmClient != nil {
		s.llmClient.Close()
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
