package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/capture-stitcher/internal/adapter/handler"
	"github.com/johnquangdev/capture-stitcher/internal/adapter/repository"
	"github.com/johnquangdev/capture-stitcher/internal/domain/repositories"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/cache"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/database"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/external/livekit"
	httpmw "github.com/johnquangdev/capture-stitcher/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/queue"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/storage"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/transcoder"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/recording"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/speaker"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
	"github.com/johnquangdev/capture-stitcher/internal/version"
	"github.com/johnquangdev/capture-stitcher/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/capture-stitcher/pkg/validator"
)

// NewServeCmd runs the HTTP API, the worker pool and the Kafka consumer
func NewServeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and processing workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, deps)
		},
	}
}

func serve(ctx context.Context, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	logger.Info("🔧 Initializing dependencies...")

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	// Production deployments manage the schema with the migrate command
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			return fmt.Errorf("DB_AUTO_MIGRATE is enabled in production, run the migrate command instead")
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			return err
		}
	}

	jobRepo := repository.NewJobRepository(db)
	attendeeRepo := repository.NewAttendeeRepository(db)

	speakerCache, closeCache := newSpeakerCache(deps)
	defer closeCache()
	resolver := speaker.NewResolver(attendeeRepo, speakerCache, cfg.Redis.TTL, logger)

	minioClient, err := storage.NewMinIOClient(&cfg.Storage, logger)
	if err != nil {
		return err
	}

	// a typed nil would not compare equal to nil inside the service
	var stitcher recording.Stitcher
	if cfg.Transcode.Enabled {
		stitcher = transcoder.NewFFmpeg(transcoder.NewExecRunner(cfg.Transcode.FFmpegPath, logger), cfg.Transcode, logger)
	} else {
		logger.Warn("⚠️ Transcoding disabled, only subtitles and timelines are produced")
	}

	svc := recording.NewService(jobRepo, minioClient, resolver, timeline.NewEngine(logger), stitcher, cfg, logger)
	if err := svc.StartWorkerPool(ctx, cfg.Worker.Count); err != nil {
		return err
	}
	defer svc.StopWorkerPool()

	consumerDone := make(chan struct{})
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := queue.NewKafkaConsumer(cfg.Kafka, svc, logger)
		go func() {
			defer close(consumerDone)
			if err := consumer.Start(ctx); err != nil {
				logger.Error("❌ Kafka consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
		logger.Info("📡 KAFKA_BROKERS not set, Kafka consumer disabled")
	}

	e := newEcho(deps)

	var webhookHandler *handler.WebhookHandler
	if cfg.LiveKit.APIKey != "" {
		webhookHandler = handler.NewWebhookHandler(svc, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, logger)
		if cfg.LiveKit.URL != "" {
			webhookHandler.WithRoomLookup(livekit.NewRoomClient(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret))
		}
	} else {
		logger.Info("🪝 LiveKit credentials not set, webhook route disabled")
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	health := handler.NewHealthHandler(cfg.Server.Environment, version.Version,
		handler.HealthCheck{Name: "database", Check: pingDB(db)},
		handler.HealthCheck{Name: "storage", Check: func(ctx context.Context) error {
			_, err := minioClient.GetBucketInfo(ctx)
			return err
		}},
	)

	handler.NewRouter(
		health,
		handler.NewRecordingHandler(svc, logger),
		webhookHandler,
		httpmw.EchoAuth(jwtManager),
	).Setup(e)

	serverErr := make(chan error, 1)
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	<-consumerDone

	logger.Info("✅ Server stopped gracefully")
	return nil
}

func newEcho(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(deps.Logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: deps.Config.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	return e
}

// newSpeakerCache prefers Redis and falls back to the in-memory store
func newSpeakerCache(deps *Dependencies) (repositories.SpeakerCache, func()) {
	if deps.Config.Redis.Enabled {
		client, err := cache.NewRedisClient(deps.Config)
		if err == nil {
			deps.Logger.Info("📦 Speaker cache: redis", zap.String("addr", deps.Config.GetRedisAddr()))
			return cache.NewRedisSpeakerCache(client), func() { client.Close() }
		}
		deps.Logger.Warn("⚠️ Redis unavailable, using in-memory speaker cache", zap.Error(err))
	}

	store := cache.NewMemoryStore()
	return cache.NewMemorySpeakerCache(store), store.Close
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
