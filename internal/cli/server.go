package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"slidecast/internal/app"
	"slidecast/internal/config"
	"slidecast/internal/domain"
	"slidecast/internal/infra/memory"
	pgloader "slidecast/internal/infra/postgres"
	redisinfra "slidecast/internal/infra/redis"
	transport "slidecast/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the slidecast server",
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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.PresentationLoader = memory.NewStaticPresentationLoader(samplePresentations())
	if pool != nil {
		loader = pgloader.NewPresentationLoader(pool)
	}

	presentationTTL := config.TTLDuration(cfg.Presentation.TTL, 10*time.Minute)
	var presentations app.PresentationRepository
	if redisClient != nil {
		presentations = redisinfra.NewPresentationRepository(redisClient, loader, presentationTTL)
	} else {
		presentations = memory.NewPresentationRepository(loader, presentationTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	service := app.NewGameService(sessions, presentations, app.Config{
		DefaultPacingMode:      domain.PacingMode(cfg.Game.PacingMode),
		DefaultPacingThreshold: cfg.Game.PacingThreshold,
		LeaderboardSize:        cfg.Game.LeaderboardSize,
	})
	if redisClient != nil {
		service.WithArchive(redisinfra.NewResponseArchive(redisClient))
	} else {
		service.WithArchive(memory.NewResponseArchive())
	}

	router := transport.NewRouter(service, "/join")

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting slidecast on :%s", finalPort)
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

// samplePresentations provides minimal demo content; swap the loader
// with the Postgres-backed one in production.
func samplePresentations() map[string]domain.Presentation {
	quiz := domain.MustResolve(domain.SlideQuiz).New("demo-quiz", 0)
	quiz.Quiz.Question = "What is 2 + 2?"
	quiz.Quiz.Options = []string{"3", "4", "5"}
	quiz.Quiz.CorrectIndex = 1
	quiz.Quiz.TimeLimitSeconds = 20
	board := domain.MustResolve(domain.SlideLeaderboard).New("demo-board", 1)

	return map[string]domain.Presentation{
		"demo": {
			ID:     "demo",
			Title:  "Demo",
			Slides: []domain.Slide{quiz, board},
		},
	}
}
