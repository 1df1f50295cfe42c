package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mindmaze-hunt/internal/config"
	"mindmaze-hunt/internal/infra/memory"
	"mindmaze-hunt/internal/infra/postgres"
)

// NewSeedCmd replaces the Postgres quest table with a quest file or the built-in set.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace all quests in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML quest file (defaults to quests.file, then the built-in set)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if file != "" {
		cfg.Quests.File = file
	}
	quests, err := loadQuests(cfg)
	if err != nil {
		return err
	}
	if err := memory.ValidateQuests(quests); err != nil {
		return err
	}

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	if err := postgres.NewSeeder(db).ReplaceQuests(ctx, quests); err != nil {
		return err
	}
	slog.Info("quests seeded", "count", len(quests))
	return nil
}
