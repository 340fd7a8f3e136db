package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskdesk/internal/config"
	"taskdesk/internal/handler"
	"taskdesk/internal/httpserver"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
	"taskdesk/pkg/db"
	"taskdesk/pkg/logger"
	"taskdesk/pkg/mq"
	"taskdesk/pkg/redis"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	var publisher service.EventPublisher
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			// The broker is optional; the API runs without it.
			log.Warn("Failed to connect to message broker", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	userRepo := repository.NewUserRepository(pool, log)
	taskRepo := repository.NewTaskRepository(pool, log)
	categoryRepo := repository.NewCategoryRepository(pool, log)
	contactRepo := repository.NewContactMessageRepository(pool, log)

	authService := service.NewAuthService(userRepo, taskRepo, cfg.JWT.Secret, log)
	sessionService := service.NewSessionService(rdb)
	taskService := service.NewTaskService(taskRepo, log)
	categoryService := service.NewCategoryService(categoryRepo, taskRepo, log)
	adminService := service.NewAdminService(userRepo, taskRepo, log)
	contactService := service.NewContactService(contactRepo, publisher, log)

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:     handler.NewAuthHandler(authService, sessionService, log),
		Tasks:    handler.NewTaskHandler(taskService, log),
		Category: handler.NewCategoryHandler(categoryService, log),
		Admin:    handler.NewAdminHandler(adminService, log),
		Contact:  handler.NewContactHandler(contactService, log),
	}, cfg.JWT.Secret, userRepo, sessionService, pool, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
