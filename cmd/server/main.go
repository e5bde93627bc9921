package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nandaraf/famtask/internal/config"
	"github.com/nandaraf/famtask/internal/entity"
	"github.com/nandaraf/famtask/internal/server"
	"github.com/nandaraf/famtask/pkg/database"
	"github.com/nandaraf/famtask/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(logger.Options{
		Level: cfg.LogLevel,
		Path:  cfg.LogPath,
	})
	defer logger.Sync()

	log := logger.Sugar()

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalw("migration failed", "err", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalw("failed to seed roles", "err", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalw("failed to seed admin user", "err", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Engine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server exited with error", "err", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "err", err)
	}
}

func connectRedis(redisURL string) *redis.Client {
	log := logger.Sugar()

	if redisURL == "" {
		log.Warnw("REDIS_URL not set, realtime notifications and rate limits disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warnw("invalid REDIS_URL, continuing without redis", "err", err)
		return nil
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, continuing without redis", "err", err)
		return nil
	}

	return client
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Task{},
		&entity.Submission{},
		&entity.DailyCompletion{},
		&entity.Interaction{},
		&entity.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Family administrator"},
		{Name: entity.RoleParent, Description: "Parent"},
		{Name: entity.RoleKid, Description: "Kid"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	log := logger.Sugar()

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@famtask.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Infow("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@famtask.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	bio := "Family administrator"
	adminProfile := entity.Profile{
		UserID:   adminUser.ID,
		FullName: "Administrator",
		Bio:      &bio,
	}

	if err := db.Create(&adminProfile).Error; err != nil {
		return err
	}

	log.Infow("admin user seeded", "email", "admin@famtask.local")

	return nil
}
