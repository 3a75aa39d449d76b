// Command devtoken creates (or reuses) a local test account and prints a
// bearer token for it, optionally granting a membership tier first.
package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/config"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/storage"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/spf13/cobra"
)

const devProvider = "dev"

var (
	email   string
	tier    string
	isAdmin bool
)

var rootCmd = &cobra.Command{
	Use:           "devtoken",
	Short:         "Print a bearer token for a local test account",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "test@mediagate.dev", "account email")
	rootCmd.Flags().StringVar(&tier, "tier", "", "grant this tier before issuing the token")
	rootCmd.Flags().BoolVar(&isAdmin, "admin", false, "mark the token as an admin token")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if tier != "" && !limits.Tier(tier).Valid() {
		return fmt.Errorf("unknown tier %q", tier)
	}

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		return err
	}

	db, err := storage.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	profile, err := accounts.NewPostgresStore(db.Pool()).FindOrCreateByProvider(ctx, accounts.NewUser{
		Email:      email,
		Username:   "Test User",
		Provider:   devProvider,
		ProviderID: email,
	})
	if err != nil {
		return fmt.Errorf("failed to find or create test user: %w", err)
	}

	if tier != "" {
		membership, err := profiles.NewPostgresStore(db.Pool()).GrantMembership(ctx, profile.ID, limits.Tier(tier), nil)
		if err != nil {
			return fmt.Errorf("failed to grant membership: %w", err)
		}

		logger.Info("membership granted", "user_id", profile.ID, "tier", membership.Tier)
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email, isAdmin)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("user: %s (%s)\n\n", profile.Email, profile.ID)
	fmt.Printf("export TEST_TOKEN=%q\n", token)
	return nil
}
