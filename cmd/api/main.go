package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-crm/internal/api/http"
	"github.com/spec-kit/support-crm/internal/api/http/handlers"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/config"
	"github.com/spec-kit/support-crm/internal/embedding"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/observability"
	"github.com/spec-kit/support-crm/internal/persistence"
	"github.com/spec-kit/support-crm/internal/repository"
	"github.com/spec-kit/support-crm/internal/search"
	"github.com/spec-kit/support-crm/internal/service"
	"github.com/spec-kit/support-crm/internal/storage"
	"github.com/spec-kit/support-crm/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	kbRepo := repository.NewKBRepository(pool)
	tagRepo := repository.NewTagRepository(pool)

	viewCache := persistence.NewViewCache(redis)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	embeddingClient := embedding.NewClient(cfg.Embedding)
	ticketEmbedder := embedding.NewGenerator(embeddingClient, cfg.Embedding.ChatModel)
	kbEmbedder := embedding.NewGenerator(embeddingClient, cfg.Embedding.KBModel)

	index, err := search.NewIndex(cfg.App.Name)
	if err != nil {
		logger.Fatal("failed to init retrieval index", zap.Error(err))
	}

	embeddingWorker := worker.NewEmbeddingWorker(worker.EmbeddingWorkerDependencies{
		TicketRepo:     ticketRepo,
		KBRepo:         kbRepo,
		TicketEmbedder: ticketEmbedder,
		KBEmbedder:     kbEmbedder,
		Index:          index,
	}, logger)
	embeddingWorker.Register(dispatcher)
	if err := embeddingWorker.Reindex(ctx); err != nil {
		logger.Warn("retrieval index rebuild failed", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		ReplyRepo:  replyRepo,
		UserRepo:   userRepo,
		Cache:      viewCache,
		Dispatcher: dispatcher,
	})
	kbService := service.NewKBService(kbRepo, dispatcher)
	chatService := service.NewChatService(ticketEmbedder, index, cfg.Chat.TopK)
	tagService := service.NewTagService(tagRepo)

	store := storage.NewFSStore(cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Fatal("failed to prepare attachment bucket", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	app.Static("/files", store.Dir())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		KB:             handlers.NewKBHandler(kbService, kbEmbedder),
		Chat:           handlers.NewChatHandler(chatService, ticketEmbedder),
		Uploads:        handlers.NewUploadsHandler(store),
		Admin:          handlers.NewAdminHandler(authService, tagService),
		Pages:          handlers.NewPagesHandler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
