package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewProvisionTeamCmd creates a team that logs in with an access code.
func NewProvisionTeamCmd(configPath *string) *cobra.Command {
	var name, email, code string
	cmd := &cobra.Command{
		Use:   "provision-team",
		Short: "Create a team with an access code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvisionTeam(cmd.Context(), *configPath, name, email, code)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "team name")
	cmd.Flags().StringVar(&email, "email", "", "team email")
	cmd.Flags().StringVar(&code, "access-code", "", "access code handed to the team")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("access-code")
	return cmd
}

func runProvisionTeam(ctx context.Context, configPath, name, email, code string) error {
	if code == "" {
		return errors.New("access code must not be empty")
	}
	logger := slog.Default()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	team, err := rt.service.ProvisionTeam(ctx, name, email, code)
	if err != nil {
		return fmt.Errorf("provision team %s: %w", email, err)
	}
	logger.Info("team provisioned", "id", team.ID, "email", team.Email)
	return nil
}
