package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"mindmaze-hunt/internal/app"
	"mindmaze-hunt/internal/auth"
	"mindmaze-hunt/internal/domain"
	"mindmaze-hunt/internal/infra/postgres"
	infraredis "mindmaze-hunt/internal/infra/redis"
)

func TestPostgresHuntEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	seedQuests(t, ctx, pgURL, sampleQuests())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	service := app.NewHuntService(
		postgres.NewTeamStore(pool),
		postgres.NewQuestCatalog(pool),
		auth.NewTokenIssuer("integration-secret", time.Hour),
		app.ModeRegister,
	)

	quests, err := service.ListQuests(ctx)
	if err != nil {
		t.Fatalf("list quests: %v", err)
	}
	if len(quests) != 2 || quests[0].ID != "1" || quests[1].ID != "2" {
		t.Fatalf("expected seeded order, got %+v", quests)
	}

	alice, err := service.Login(ctx, domain.LoginRequest{Email: "alice@example.com", Name: "Alice"})
	if err != nil {
		t.Fatalf("login alice: %v", err)
	}
	bob, err := service.Login(ctx, domain.LoginRequest{Email: "bob@example.com", Name: "Bob"})
	if err != nil {
		t.Fatalf("login bob: %v", err)
	}

	if _, err := service.Submit(ctx, bob.Team.ID, "2", "  paris "); err != nil {
		t.Fatalf("bob submit: %v", err)
	}
	if _, err := service.Submit(ctx, alice.Team.ID, "1", "nope"); !errors.Is(err, domain.ErrWrongAnswer) {
		t.Fatalf("expected wrong answer, got %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan error, 16)
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := service.Submit(gctx, alice.Team.ID, "1", "m")
			results <- err
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	accepted := 0
	for err := range results {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domain.ErrAlreadySolved):
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted submission, got %d", accepted)
	}

	lb, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb) != 2 || lb[0].TeamName != "Bob" || lb[0].Score != 200 || lb[1].Score != 100 {
		t.Fatalf("unexpected leaderboard %+v", lb)
	}
}

func TestRedisTeamsWithPostgresCatalog(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()
	seedQuests(t, ctx, pgURL, sampleQuests())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	service := app.NewHuntService(
		infraredis.NewTeamStore(redisClient),
		postgres.NewQuestCatalog(pool),
		auth.NewTokenIssuer("integration-secret", time.Hour),
		app.ModeRegister,
	)

	team, err := service.Login(ctx, domain.LoginRequest{Email: "carol@example.com", Name: "Carol"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	res, err := service.Submit(ctx, team.Team.ID, "1", "M")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 100 || len(res.SolvedIDs) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := service.Submit(ctx, team.Team.ID, "1", "M"); !errors.Is(err, domain.ErrAlreadySolved) {
		t.Fatalf("expected already solved, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "hunt", "POSTGRES_PASSWORD": "huntpass", "POSTGRES_DB": "huntdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://hunt:huntpass@%s:%s/huntdb?sslmode=disable", host, port.Port())
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

func seedQuests(t *testing.T, ctx context.Context, dsn string, quests []domain.Quest) {
	t.Helper()
	db := postgres.OpenBun(dsn)
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := postgres.NewSeeder(db).ReplaceQuests(ctx, quests); err != nil {
		t.Fatalf("seed quests: %v", err)
	}
}

func sampleQuests() []domain.Quest {
	return []domain.Quest{
		{
			ID:      "1",
			Title:   "First Door",
			Type:    domain.ContentText,
			Content: "Which letter opens the maze?",
			Points:  100,
			Answer:  "M",
			Hints:   []domain.Hint{{Type: domain.ContentText, Content: "Look at the first word."}},
		},
		{
			ID:      "2",
			Title:   "City of Light",
			Type:    domain.ContentImage,
			Content: "https://example.com/tower.jpg",
			Points:  200,
			Answer:  "Paris",
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
