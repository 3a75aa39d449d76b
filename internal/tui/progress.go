package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"codeberg.org/mediagate/server/mediagate/features"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// runs one gated job
type JobFunc func(ctx context.Context, progress features.ProgressFunc) (*features.Outcome, error)

type progressMsg int

type jobDoneMsg struct {
	outcome *features.Outcome
	err     error
}

// progress screen for a running job
type progressModel struct {
	title   string
	bar     progress.Model
	spinner spinner.Model
	percent float64
	done    bool
	outcome *features.Outcome
	err     error
	cancel  context.CancelFunc
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(min(Width()-4, 60)))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return progressModel{title: title, bar: bar, spinner: s, cancel: cancel}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancel()
		}
		return m, nil

	case progressMsg:
		m.percent = float64(msg) / 100
		return m, m.bar.SetPercent(m.percent)

	case jobDoneMsg:
		m.done = true
		m.outcome = msg.outcome
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString("\n  ")

	if m.done {
		b.WriteString(m.title)
	} else {
		b.WriteString(m.spinner.View() + " " + m.title)
	}

	b.WriteString("\n\n  ")
	b.WriteString(m.bar.ViewAs(m.percent))
	b.WriteString("\n")

	if !m.done {
		b.WriteString(helpStyle.Render("  ctrl+c to cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

// runs job with an animated progress bar on interactive terminals and plain
// percentage lines otherwise
func RunWithProgress(ctx context.Context, out io.Writer, title string, job JobFunc) (*features.Outcome, error) {
	if !Interactive() {
		return job(ctx, func(pct int) {
			fmt.Fprintf(out, "%s: %d%%\n", title, pct) //nolint:errcheck
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newProgressModel(title, cancel), tea.WithOutput(out))

	go func() {
		outcome, err := job(ctx, func(pct int) { program.Send(progressMsg(pct)) })
		program.Send(jobDoneMsg{outcome: outcome, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("progress display failed: %w", err)
	}

	m := final.(progressModel)
	return m.outcome, m.err
}
