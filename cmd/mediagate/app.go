package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"codeberg.org/mediagate/server/internal/authstate"
	"codeberg.org/mediagate/server/internal/client"
	"codeberg.org/mediagate/server/internal/config"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
)

// everything a command needs: the API client, the persisted session and the auth state
type app struct {
	cfg        *config.ClientConfig
	api        *client.Client
	sessions   *client.Sessions
	controller *authstate.Controller
	plans      []client.Plan
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, err
	}

	api := client.New(cfg)

	sessions, err := client.NewSessions(api, cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	// the served plans are the source of truth for quotas; fall back to the built-in table offline
	table := limits.Default()
	plans, err := api.Plans(ctx)
	if err != nil {
		logger.WarnErr(err, "failed to fetch plans, using built-in limits")
	} else {
		table = client.TableFromPlans(plans)
	}

	controller := authstate.New(authstate.Options{
		Sessions: sessions,
		Auth:     sessions,
		Loader:   profiles.NewLoader(client.NewProfileStore(api), cfg.ProfileLoadTimeout),
		Ledger:   usage.NewLedger(client.NewUsageStore(api)),
		Limits:   table,
	})
	controller.Start(ctx)

	return &app{
		cfg:        cfg,
		api:        api,
		sessions:   sessions,
		controller: controller,
		plans:      plans,
	}, nil
}

func (a *app) Close() {
	a.controller.Close()
}

// parses a feature key argument
func parseFeature(raw string) (limits.FeatureKey, error) {
	feature := limits.FeatureKey(raw)
	if slices.Contains(limits.Features, feature) {
		return feature, nil
	}

	return "", fmt.Errorf("unknown feature %q, expected one of: %s", raw, featureNames())
}

// registered feature keys, comma separated
func featureNames() string {
	names := make([]string, len(limits.Features))
	for i, f := range limits.Features {
		names[i] = string(f)
	}

	return strings.Join(names, ", ")
}

type userMessager interface {
	UserMessage() string
}

// the message to show for err: user-facing messages win over internal detail
func userMessage(err error) string {
	var ue *authstate.UserError
	if stderrors.As(err, &ue) {
		return ue.Message
	}

	var um userMessager
	if stderrors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}

	if stderrors.Is(err, usage.ErrAuthRequired) {
		return "you are not signed in, run `mediagate signin` first"
	}

	return err.Error()
}
