package tui

import (
	"fmt"
	"strings"

	"codeberg.org/mediagate/server/internal/client"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// renders the membership plans as markdown through glamour
func RenderPlans(plans []client.Plan, current limits.Tier) (string, error) {
	var md strings.Builder

	md.WriteString("# Membership plans\n\n")

	for _, plan := range plans {
		marker := ""
		if plan.Tier == current {
			marker = " (current)"
		}

		fmt.Fprintf(&md, "## %s%s\n\n**%s** · files up to %d MB\n\n", plan.Name, marker, plan.Price, plan.FileSizeLimitMB)

		for _, benefit := range plan.Benefits {
			fmt.Fprintf(&md, "- %s\n", benefit)
		}

		md.WriteString("\n| feature | uses |\n|---|---|\n")
		for _, feature := range limits.Features {
			quota, ok := plan.Limits[feature]
			if !ok {
				continue
			}

			fmt.Fprintf(&md, "| %s | %s |\n", features.Label(feature), quota)
		}

		md.WriteString("\n")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(Width()-4),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	return renderer.Render(md.String())
}

// renders the signed-in user's details
func RenderProfile(profile *profiles.Profile, membership *profiles.Membership) string {
	var b strings.Builder

	if profile == nil {
		return warnStyle.Render("profile not available yet, try again shortly") + "\n"
	}

	tier := limits.TierFree
	if membership != nil {
		tier = membership.Tier
	}

	b.WriteString(titleStyle.Render(profile.Username) + "  " + badgeStyle.Render(limits.DisplayName(tier)))
	b.WriteString("\n")
	b.WriteString(row("email", profile.Email))
	b.WriteString(row("member since", profile.CreatedAt.Format("2006-01-02")))

	if membership != nil && membership.ExpiresAt != nil {
		b.WriteString(row("renews", membership.ExpiresAt.Format("2006-01-02")))
	}

	b.WriteString(row("file size limit", fmt.Sprintf("%d MB", limits.FileSizeLimitMB(tier))))

	return boxStyle.Render(b.String()) + "\n"
}

// renders used and remaining uses per feature
func RenderUsage(tier limits.Tier, results []entitlements.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("usage") + "  " + badgeStyle.Render(limits.DisplayName(tier)))
	b.WriteString("\n")

	for _, r := range results {
		var status string

		switch {
		case r.Unlimited:
			status = successStyle.Render(fmt.Sprintf("%d used · unlimited", r.Used))
		case r.Allowed:
			status = valueStyle.Render(fmt.Sprintf("%d/%d used · %d left", r.Used, r.Limit, r.Remaining))
		case r.Reason == entitlements.ReasonNoEntitlement:
			status = errorStyle.Render("not included")
		default:
			status = warnStyle.Render(fmt.Sprintf("%d/%d used · upgrade to continue", r.Used, r.Limit))
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(features.Label(r.Feature)), status))
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String()) + "\n"
}

// renders the prompt shown when a feature is not available
func UpgradePrompt(feature limits.FeatureKey) string {
	return boxStyle.Render(
		warnStyle.Render("usage limit reached for "+features.Label(feature))+"\n"+
			infoStyle.Render("upgrade your membership to continue: mediagate plans"),
	) + "\n"
}

// renders a finished job
func RenderOutcome(outcome *features.Outcome) string {
	line := successStyle.Render("done") + "  " + valueStyle.Render(outcome.Output.FileName)

	if outcome.Unmetered {
		line += "  " + infoStyle.Render("(usage not recorded)")
	}

	return line + "\n"
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value)) + "\n"
}

// styles a confirmation line
func Success(msg string) string {
	return successStyle.Render(msg)
}

// styles a warning line
func Warning(msg string) string {
	return warnStyle.Render(msg)
}
