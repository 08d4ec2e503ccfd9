package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"network/internal/cache"
	"network/internal/config"
	"network/internal/database"
	"network/internal/handler"
	"network/internal/queue"
	appredis "network/internal/redis"
	"network/internal/repository"
	"network/internal/service"
	"network/internal/storage"
	"network/internal/worker"
)

// Run wires the application together and serves until SIGINT/SIGTERM.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		return err
	}

	avatarStore, err := storage.NewAvatarStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create avatar store: %w", err)
	}

	// Repositories
	withinTx := repository.NewTxFunc(db)
	ledger := repository.NewCounterLedger(db)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// Cache and queue
	profileCache := cache.NewProfileCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	engine := service.NewToggleEngine(withinTx, ledger)
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, followRepo, profileCache, avatarStore, publisher)
	postService := service.NewPostService(withinTx, postRepo, userRepo, likeRepo, ledger, engine, profileCache)
	commentService := service.NewCommentService(withinTx, commentRepo, postRepo, ledger)
	followService := service.NewFollowService(userRepo, followRepo, engine, ledger, profileCache)
	feedService := service.NewFeedService(postRepo, userRepo)

	// Cleanup workers
	workers := worker.NewManager(consumer, worker.NewHandler(avatarStore), worker.ManagerConfig{
		WorkerCount: cfg.CleanupWorkers,
	})
	if err := workers.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService, followService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		FeedHandler:    handler.NewFeedHandler(feedService),
		JWTSecret:      cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
