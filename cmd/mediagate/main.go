package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mediagate/server/internal/logger"
	"github.com/spf13/cobra"
)

// set at build time with -ldflags
var Version = "dev"

// built by the root pre-run for every command that talks to the API
var current *app

var rootCmd = &cobra.Command{
	Use:           "mediagate",
	Short:         "Mediagate - gated media tools for members",
	Long:          `mediagate signs you in, shows your membership and usage, and runs image, audio and video tools within your plan's limits.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(signUpCmd, signInCmd, signOutCmd, oauthCmd, whoamiCmd)
	rootCmd.AddCommand(plansCmd, usageCmd, upgradeCmd, watchCmd)
	rootCmd.AddCommand(processCmd)
}

func main() {
	// command output goes to stdout, diagnostics to stderr
	logger.SetOutput(os.Stderr, os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if current != nil {
			current.Close()
		}

		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		stop()
		os.Exit(1)
	}
}
