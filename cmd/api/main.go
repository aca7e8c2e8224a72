package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/config"
	"github.com/noah-isme/fotoowl-gallery-api/internal/database"
	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/handler"
	"github.com/noah-isme/fotoowl-gallery-api/internal/middleware"
	"github.com/noah-isme/fotoowl-gallery-api/internal/repository"
	"github.com/noah-isme/fotoowl-gallery-api/internal/router"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
	"github.com/noah-isme/fotoowl-gallery-api/pkg/unsplash"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("app", cfg.AppName).Logger()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	st, err := openStore(cfg, redisClient, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	var natsConn *nats.Conn
	if cfg.SyncDriver == config.SyncDriverNATS {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	bus := eventbus.New(buildTransport(cfg, st, natsConn, logger), logger)
	if err := bus.Start(rootCtx); err != nil {
		log.Fatalf("failed to start event relay: %v", err)
	}

	state := service.LoadAppState(rootCtx, st, service.AppStateOptions{
		ActivityCapacity: cfg.ActivityCapacity,
		PersistActivity:  cfg.PersistActivity,
	}, logger)
	identityService := service.NewIdentityService(state, logger)
	user := identityService.Ensure(rootCtx)

	var (
		interactionService service.InteractionService
		activityFeed       service.ActivityFeed
	)
	switch cfg.Backend {
	case config.BackendRemote:
		db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		interactionService = service.NewRemoteInteractionService(repository.NewInteractionRepository(db), bus, logger)
		activityFeed = service.NewRemoteActivityFeed(repository.NewActivityRepository(db), identityService, cfg.ActivityCapacity, logger)
	default:
		activityFeed = service.NewLocalActivityFeed(state, identityService, logger)
		interactionService = service.NewLocalInteractionService(st, bus, activityFeed, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	searcher := unsplash.New(cfg.UnsplashKey, logger, unsplash.WithBaseURL(cfg.UnsplashBaseURL))
	galleryService := service.NewGalleryService(searcher, redisClient, cfg.GalleryCacheTTL, cfg.UnsplashPerPage, logger)
	streamService := service.NewStreamService(interactionService, bus, cfg.StreamKeepalive, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GalleryHandler:     handler.NewGalleryHandler(galleryService, validate, logger),
		InteractionHandler: handler.NewInteractionHandler(interactionService, identityService, validate, logger),
		ActivityHandler:    handler.NewActivityHandler(activityFeed, logger),
		ProfileHandler:     handler.NewProfileHandler(identityService, state, validate, logger),
		StreamHandler:      handler.NewStreamHandler(streamService, logger),
	})

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("store", cfg.StoreDriver).
		Str("sync", cfg.SyncDriver).
		Str("backend", cfg.Backend).
		Str("node_id", bus.NodeID()).
		Str("user_id", user.ID).
		Msg("starting gallery api")

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func openStore(cfg config.Config, redisClient *redis.Client, logger zerolog.Logger) (eventbus.WatchableStore, error) {
	if cfg.StoreDriver == config.StoreDriverRedis {
		return store.NewRedisStore(redisClient, "", logger), nil
	}

	dir := cfg.StoreDir
	if dir == "" {
		dir = store.DefaultDir()
	}
	fileStore, err := store.OpenFileStore(dir, logger)
	if err != nil {
		return nil, err
	}
	return fileStore, nil
}

func buildTransport(cfg config.Config, st eventbus.WatchableStore, natsConn *nats.Conn, logger zerolog.Logger) eventbus.Transport {
	switch cfg.SyncDriver {
	case config.SyncDriverNATS:
		return eventbus.NewNATSTransport(natsConn, cfg.NATSSubject, logger)
	case config.SyncDriverStore:
		return eventbus.NewStoreTransport(st, cfg.SyncNamespace)
	default:
		return nil
	}
}

func waitForShutdown(app *fiber.App, stopRelay context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopRelay()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
