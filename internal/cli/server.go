package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/config"
	"nursing-quiz-service/internal/infra/memory"
	"nursing-quiz-service/internal/infra/postgres"
	redisinfra "nursing-quiz-service/internal/infra/redis"
	"nursing-quiz-service/internal/infra/remote"
	transport "nursing-quiz-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
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
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var upstream *remote.Client
	if cfg.Upstream.BaseURL != "" {
		upstream = remote.New(remote.Config{
			BaseURL: cfg.Upstream.BaseURL,
			Timeout: config.TTLDuration(cfg.Upstream.Timeout, 10*time.Second),
		})
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	var recorder app.ResultRecorder
	var archive memory.ResultReader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db := postgres.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		loader = postgres.NewQuestionLoader(pool)
		pgResults := postgres.NewResultRecorder(db)
		recorder = pgResults
		archive = pgResults
	case upstream != nil:
		loader = upstream
		recorder = upstream
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var source app.QuestionSource
	var store app.SessionRepository
	var quota app.GuestQuota
	guestTTL := config.TTLDuration(cfg.Guest.TTL, 0)
	if redisClient != nil {
		source = redisinfra.NewQuestionRepository(redisClient, loader, cacheTTL)
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
		quota = redisinfra.NewGuestQuota(redisClient, guestTTL)
	} else {
		source = memory.NewQuestionRepository(loader, cacheTTL)
		store = memory.NewSessionStore()
		quota = memory.NewGuestQuota()
	}

	limit := cfg.Guest.Limit
	if limit <= 0 {
		limit = app.DefaultGuestLimit
	}
	gate := app.NewGuestGate(quota, limit, cfg.GuestFailOpen())
	results := memory.NewResultStore(config.TTLDuration(cfg.Quiz.ResultTTL, 24*time.Hour))
	if archive != nil {
		results.WithFallback(archive)
	}

	service := app.NewQuizService(store, source, results, gate, recorder, app.Options{
		DefaultCount: cfg.Quiz.DefaultCount,
		MaxCount:     cfg.Quiz.MaxCount,
		Tick:         config.TTLDuration(cfg.Quiz.Tick, time.Second),
	})
	defer service.Close()

	auth := transport.NewAuthService(cfg.AuthSecret())
	router := transport.NewRouter(service, auth, transport.RouterOptions{
		CORSOrigins:      cfg.Server.CORSOrigins,
		EnableLocalLogin: cfg.Auth.EnableLocalLogin,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
