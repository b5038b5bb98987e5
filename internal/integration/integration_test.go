package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"slidecast/internal/app"
	"slidecast/internal/domain"
	pgloader "slidecast/internal/infra/postgres"
	pgmigrations "slidecast/internal/infra/postgres/migrations"
	infraredis "slidecast/internal/infra/redis"
)

func TestGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedPresentation(t, ctx, pgURL, samplePresentation())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewPresentationLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	presentations := infraredis.NewPresentationRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	archive := infraredis.NewResponseArchive(redisClient)
	service := app.NewGameService(sessionStore, presentations, app.Config{
		DefaultPacingMode: domain.PacingNone,
	}).WithArchive(archive)

	session, err := service.CreateGame(ctx, "pres-1")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	gameID := session.ID()

	if _, err := service.Join(ctx, gameID, "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.Join(ctx, gameID, "u2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}

	result, err := service.Submit(ctx, gameID, "u2", "q1", domain.Submission{AnswerIndex: intp(1)})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Awarded <= 0 {
		t.Fatalf("expected a scored correct answer, got %+v", result)
	}

	snap, err := service.Advance(ctx, gameID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if snap.CurrentIndex != 1 || snap.Slide == nil || snap.Slide.Type != domain.SlideLeaderboard {
		t.Fatalf("expected the leaderboard slide, got %+v", snap)
	}
	if len(snap.Leaderboard.Entries) != 2 || snap.Leaderboard.Entries[0].PlayerID != "u2" {
		t.Fatalf("expected bob leading, got %+v", snap.Leaderboard.Entries)
	}

	// durable copies in redis: the response record and the score hash
	archived, err := archive.ListResponses(ctx, gameID, "q1")
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(archived) != 1 || archived[0].PlayerID != "u2" {
		t.Fatalf("unexpected archived responses %+v", archived)
	}
	raw, err := redisClient.HGet(ctx, "game:"+gameID+":scores", "u2").Result()
	if err != nil {
		t.Fatalf("score hash: %v", err)
	}
	if raw != fmt.Sprint(result.Awarded) {
		t.Fatalf("expected archived score %d, got %s", result.Awarded, raw)
	}
}

func intp(i int) *int { return &i }

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "slidecast", "POSTGRES_PASSWORD": "slidecastpass", "POSTGRES_DB": "slidecastdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://slidecast:slidecastpass@%s:%s/slidecastdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedPresentation(t *testing.T, ctx context.Context, dsn string, p domain.Presentation) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal presentation: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO presentations (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, p.ID, string(data)); err != nil {
		t.Fatalf("insert presentation: %v", err)
	}
}

func samplePresentation() domain.Presentation {
	quiz := domain.MustResolve(domain.SlideQuiz).New("q1", 0)
	quiz.Quiz.Question = "What is 2 + 2?"
	quiz.Quiz.Options = []string{"3", "4", "5"}
	quiz.Quiz.CorrectIndex = 1
	quiz.Quiz.TimeLimitSeconds = 30
	board := domain.MustResolve(domain.SlideLeaderboard).New("final", 1)
	var p domain.Presentation
	p.ID = "pres-1"
	p.Title = "Warmup"
	_ = p.AppendSlides(quiz, board)
	return p
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
