package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/mediagate/server/internal/tui"
	"codeberg.org/mediagate/server/mediagate/features"
	"github.com/spf13/cobra"
)

var (
	processTarget string
	processRemote bool
)

var processCmd = &cobra.Command{
	Use:   "process <feature> <file>",
	Short: "Run a media tool on a file within your plan's limits",
	Long: `Runs a gated media tool. The use is checked against your membership first
and recorded once the work completes.

Features: ` + featureNames() + `.
Conversions need --to with the target format.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		feature, err := parseFeature(args[0])
		if err != nil {
			return err
		}

		info, err := os.Stat(args[1])
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", args[1], err)
		}

		if _, err := current.controller.RequireUser(ctx); err != nil {
			return err
		}

		job := features.Job{
			Feature:      feature,
			FileName:     filepath.Base(args[1]),
			Size:         info.Size(),
			TargetFormat: processTarget,
		}

		run := localJob(job)
		if processRemote {
			run = remoteJob(job)
		}

		outcome, err := tui.RunWithProgress(ctx, os.Stderr, features.Label(feature), run)
		if stderrors.Is(err, features.ErrNotEntitled) {
			fmt.Fprint(os.Stderr, tui.UpgradePrompt(feature)) //nolint:errcheck
			return err
		}

		if err != nil {
			return err
		}

		fmt.Print(tui.RenderOutcome(outcome))
		return nil
	},
}

// runs the job in-process, gated by the auth state
func localJob(job features.Job) tui.JobFunc {
	runner := features.NewRunner(current.controller, nil)

	return func(ctx context.Context, progress features.ProgressFunc) (*features.Outcome, error) {
		return runner.Run(ctx, job, progress)
	}
}

// hands the job to the server, which gates and records it
func remoteJob(job features.Job) tui.JobFunc {
	return func(ctx context.Context, progress features.ProgressFunc) (*features.Outcome, error) {
		progress(0)

		outcome, err := current.api.Process(ctx, job)
		if err != nil {
			return nil, err
		}

		progress(100)
		return outcome, nil
	}
}

func init() {
	processCmd.Flags().StringVar(&processTarget, "to", "", "target format for conversions (e.g. mp3, mp4)")
	processCmd.Flags().BoolVar(&processRemote, "remote", false, "run the job on the server instead of locally")
}
