package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/paperdesk/paperdesk/internal/api/handlers"
	"github.com/paperdesk/paperdesk/internal/cache"
	"github.com/paperdesk/paperdesk/internal/config"
	"github.com/paperdesk/paperdesk/internal/database"
	"github.com/paperdesk/paperdesk/internal/jobs"
	"github.com/paperdesk/paperdesk/internal/papers"
	"github.com/paperdesk/paperdesk/internal/queue"
	"github.com/paperdesk/paperdesk/internal/repository"
	"github.com/paperdesk/paperdesk/internal/server"
	"github.com/paperdesk/paperdesk/internal/service"
	"github.com/paperdesk/paperdesk/internal/telemetry"
	"github.com/paperdesk/paperdesk/internal/topics"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the paperdesk API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: cfg.SentrySampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	analysisRepo := repository.NewAnalysisRepository(pool)
	behaviorRepo := repository.NewBehaviorRepository(pool)
	recommendationRepo := repository.NewRecommendationRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var recCache cache.RecommendationCache = cache.NewNopCache()
	var analysisQueue service.AnalysisQueueInterface = queue.NewNopQueue()
	if cfg.HasRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		defer redisClient.Close()
		recCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
		analysisQueue = queue.NewRedisQueue(redisClient)
		log.Println("connected to redis")
	} else {
		log.Println("redis not configured, caching and analysis queueing disabled")
	}

	providerCfg := papers.ClientConfig{
		ConnectTimeout: cfg.ProviderConnectTimeout,
		ReadTimeout:    cfg.ProviderReadTimeout,
	}

	arxivCfg := providerCfg
	arxivCfg.Enabled = cfg.ArxivEnabled
	arxivClient := papers.NewArxivClient(arxivCfg)

	scholarCfg := providerCfg
	scholarCfg.Enabled = cfg.SemanticScholarEnabled
	scholarClient := papers.NewSemanticScholarClient(scholarCfg)

	searchers := []papers.Searcher{arxivClient, scholarClient}

	extractor := topics.NewExtractor(analysisRepo)

	recommendationSvc := service.NewRecommendationService(
		documentRepo,
		behaviorRepo,
		recommendationRepo,
		extractor,
		searchers,
		arxivClient,
		txRunner,
		recCache,
		analysisQueue,
	)

	scheduler := jobs.NewScheduler(jobs.GeneratorFunc(func(ctx context.Context, userID string) error {
		_, err := recommendationSvc.Generate(ctx, userID)
		return err
	}), cfg.GenerateDelay)

	recommendationHandler := handlers.NewRecommendationHandler(recommendationSvc, scheduler)
	behaviorHandler := handlers.NewBehaviorHandler(recommendationSvc)

	router := server.NewRouter(server.RouterConfig{
		RecommendationHandler: recommendationHandler,
		BehaviorHandler:       behaviorHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
