package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/config"
	"hardcore-quiz-service/internal/infra/memory"
	"hardcore-quiz-service/internal/infra/postgres"
	redisinfra "hardcore-quiz-service/internal/infra/redis"
	transport "hardcore-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	var (
		store  app.Store
		loader memory.QuizLoader
	)
	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := applyMigrations(ctx, db, log); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewStore(db)
		loader = postgres.NewQuizLoader(pool)
	} else {
		quizzes, err := sampleQuizzes()
		if err != nil {
			return err
		}
		log.Warn("postgres not configured, using in-memory store and bundled quizzes")
		store = memory.NewStore()
		loader = memory.NewStaticQuizLoader(quizzes)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		quizRepo app.QuizRepository
		locker   app.Locker
	)
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
		locker = redisinfra.NewLocker(redisClient,
			config.TTLDuration(cfg.Lock.TTL, 10*time.Second),
			config.TTLDuration(cfg.Lock.Wait, 5*time.Second))
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		locker = memory.NewLocker()
	}

	engine := app.NewEngine(quizRepo, store, locker,
		app.WithLogger(log),
		app.WithMaxAttempts(cfg.Quiz.MaxAttempts),
	)
	handler := transport.NewHandler(engine, transport.HeaderAuthenticator{}, log,
		transport.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
	)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting hardcore quiz service", "port", finalPort, "redis", redisClient != nil, "postgres", cfg.Postgres.URL != "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

