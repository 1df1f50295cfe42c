package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"mindmaze-hunt/internal/app"
	"mindmaze-hunt/internal/auth"
	"mindmaze-hunt/internal/config"
	"mindmaze-hunt/internal/domain"
	"mindmaze-hunt/internal/infra/hint"
	"mindmaze-hunt/internal/infra/memory"
	"mindmaze-hunt/internal/infra/postgres"
	redisstore "mindmaze-hunt/internal/infra/redis"
)

// runtime holds the wired service and the resources it owns.
type runtime struct {
	service *app.HuntService
	tokens  *auth.TokenIssuer
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func buildRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{}
	teams, quests, err := openStores(ctx, cfg, logger, rt)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.tokens = auth.NewTokenIssuer(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))

	var generator app.HintGenerator
	if cfg.Hint.APIKey != "" {
		generator = hint.NewGenerator(cfg.Hint.Endpoint, cfg.Hint.Model, cfg.Hint.APIKey, &http.Client{Timeout: 30 * time.Second})
	} else {
		logger.Info("hint generator disabled, serving fallback hints")
	}
	hints := app.NewHintService(generator, config.TTLDuration(cfg.Hint.Timeout, 5*time.Second), cfg.Hint.Fallback)

	rt.service = app.NewHuntService(teams, quests, rt.tokens, app.LoginMode(cfg.Auth.Mode),
		app.WithLogger(logger),
		app.WithHints(hints),
	)
	return rt, nil
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger, rt *runtime) (app.TeamRepository, app.QuestCatalog, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db := postgres.OpenBun(cfg.Postgres.URL)
		err := postgres.Migrate(ctx, db)
		db.Close()
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		logger.Info("using postgres store")
		return postgres.NewTeamStore(pool), postgres.NewQuestCatalog(pool), nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		quests, err := loadQuests(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis store", "addr", cfg.Redis.Addr, "quests", len(quests))
		return redisstore.NewTeamStore(client), memory.NewQuestCatalog(quests), nil

	default:
		quests, err := loadQuests(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using in-memory store", "quests", len(quests))
		return memory.NewTeamStore(), memory.NewQuestCatalog(quests), nil
	}
}

// loadQuests reads the configured quest file, or the built-in set if none is configured.
func loadQuests(cfg config.Config) ([]domain.Quest, error) {
	if cfg.Quests.File == "" {
		return defaultQuests(), nil
	}
	quests, err := memory.LoadQuestFile(cfg.Quests.File)
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}
	return quests, nil
}

func defaultQuests() []domain.Quest {
	return []domain.Quest{
		{
			ID:      "1",
			Title:   "The First Door",
			Type:    domain.ContentText,
			Content: "I am the beginning of the maze and the end of time. What letter am I?",
			Points:  100,
			Answer:  "M",
			Hints: []domain.Hint{
				{Type: domain.ContentText, Content: "Look at the words, not their meaning."},
			},
		},
		{
			ID:      "2",
			Title:   "City of Light",
			Type:    domain.ContentImage,
			Content: "https://upload.wikimedia.org/wikipedia/commons/a/a8/Tour_Eiffel_Wikimedia_Commons.jpg",
			Points:  200,
			Answer:  "PARIS",
		},
	}
}
