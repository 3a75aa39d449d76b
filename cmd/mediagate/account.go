package main

import (
	"fmt"
	"os"

	"codeberg.org/mediagate/server/internal/authstate"
	"codeberg.org/mediagate/server/internal/tui"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/spf13/cobra"
)

var usageRemote bool

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List membership plans and their limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plans := current.plans
		if plans == nil {
			fetched, err := current.api.Plans(cmd.Context())
			if err != nil {
				return err
			}

			plans = fetched
		}

		<-current.controller.Ready()

		out, err := tui.RenderPlans(plans, current.controller.Tier())
		if err != nil {
			return err
		}

		fmt.Print(out)
		return nil
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show used and remaining uses per feature",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if usageRemote {
			summary, err := current.api.Usage(ctx)
			if err != nil {
				return err
			}

			fmt.Print(tui.RenderUsage(summary.Tier, summary.Features))
			return nil
		}

		if _, err := current.controller.RequireUser(ctx); err != nil {
			return err
		}

		results := make([]entitlements.Result, 0, len(limits.Features))
		for _, feature := range limits.Features {
			result, err := current.controller.Entitlement(ctx, feature)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", feature, err)
			}

			results = append(results, result)
		}

		fmt.Print(tui.RenderUsage(current.controller.Tier(), results))
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:       "upgrade <tier>",
	Short:     "Request a membership upgrade",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(limits.TierPremium), string(limits.TierEnterprise)},
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := limits.Tier(args[0])
		if !tier.Valid() {
			return fmt.Errorf("unknown tier %q", args[0])
		}

		if _, err := current.controller.RequireUser(cmd.Context()); err != nil {
			return err
		}

		if err := current.api.Upgrade(cmd.Context(), tier); err != nil {
			return err
		}

		fmt.Println(tui.Success("Upgrade requested."))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow membership and profile changes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		state, err := current.controller.RequireUser(ctx)
		if err != nil {
			return err
		}

		printState(state)

		current.controller.OnChange(func(s authstate.State) {
			if !s.Loading {
				printState(s)
			}
		})

		fmt.Fprintln(os.Stderr, "watching for changes, press ctrl+c to stop") //nolint:errcheck
		current.sessions.Watch(ctx)
		return nil
	},
}

func printState(s authstate.State) {
	if !s.SignedIn() {
		fmt.Println(tui.Warning("signed out"))
		return
	}

	fmt.Print(tui.RenderProfile(s.User, s.Membership))
}

func init() {
	usageCmd.Flags().BoolVar(&usageRemote, "remote", false, "ask the server for the summary, including daily history")
}
