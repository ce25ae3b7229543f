package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardRenderer provides a live gate dashboard using bubbletea.
type DashboardRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *dashboardModel
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewDashboardRenderer creates a dashboard renderer.
// Returns an error if the output is not a TTY.
func NewDashboardRenderer(cfg Config) (*DashboardRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newDashboardModel(cfg.Workspace)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &DashboardRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *DashboardRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	_, r.cancel = context.WithCancel(ctx)

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	opts = append(opts, tea.WithAltScreen())

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// RunStarted implements Renderer.
func (r *DashboardRenderer) RunStarted(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(runStartedMsg(trigger))
	}
}

// RunFinished implements Renderer.
func (r *DashboardRenderer) RunFinished(summary RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(runFinishedMsg(summary))
	}
}

// Stop implements Renderer.
func (r *DashboardRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	if r.program != nil {
		r.program.Quit()

		// Wait with timeout to avoid hanging on an unresponsive terminal
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}

	return nil
}

// Message types for bubbletea
type runStartedMsg string
type runFinishedMsg RunSummary

// dashboardModel is the bubbletea model for the watch dashboard.
type dashboardModel struct {
	workspace string
	styles    Styles
	spinner   spinner.Model
	width     int

	running  bool
	trigger  string
	last     *RunSummary
	runCount int
	quitting bool
}

func newDashboardModel(workspace string) *dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	return &dashboardModel{
		workspace: workspace,
		styles:    DefaultStyles(),
		spinner:   s,
		width:     80,
	}
}

// Init implements tea.Model.
func (m *dashboardModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case runStartedMsg:
		m.running = true
		m.trigger = string(msg)
		return m, nil

	case runFinishedMsg:
		summary := RunSummary(msg)
		m.running = false
		m.last = &summary
		m.runCount++
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *dashboardModel) View() string {
	if m.quitting {
		return "Stopped watching.\n"
	}

	var lines []string

	lines = append(lines, m.renderGates())
	lines = append(lines, "")
	lines = append(lines, m.renderScore())
	lines = append(lines, m.renderActivity())

	content := strings.Join(lines, "\n")

	title := "sandboxcheck watch"
	if m.workspace != "" {
		title = fmt.Sprintf("sandboxcheck watch: %s", m.workspace)
	}

	panel := m.styles.Panel.Render(
		m.styles.Header.Render(title) + "\n\n" + content,
	)

	help := m.styles.Dim.Render("q to quit")
	return panel + "\n" + help
}

func (m *dashboardModel) renderGates() string {
	if m.last == nil {
		return m.styles.Label.Render("no runs yet")
	}

	var parts []string
	for _, g := range m.last.Gates {
		if g.Passed {
			parts = append(parts, m.styles.Pass.Render("✓ "+g.Name))
			continue
		}
		line := m.styles.Fail.Render("✗ " + g.Name)
		if g.Hint != "" {
			line += "\n  " + m.styles.Label.Render(g.Hint)
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}

func (m *dashboardModel) renderScore() string {
	if m.last == nil {
		return ""
	}

	score := fmt.Sprintf("Score: %d/%d", m.last.Passed, m.last.Total)
	if m.last.AllPassed() {
		return m.styles.Pass.Render(score + "  sandbox ready")
	}
	return m.styles.Fail.Render(score)
}

func (m *dashboardModel) renderActivity() string {
	if m.running {
		what := "validating"
		if m.trigger != "" && m.trigger != "startup" {
			what = "revalidating after " + m.trigger
		}
		return m.spinner.View() + " " + m.styles.Active.Render(what)
	}

	if m.last != nil {
		return m.styles.Label.Render(fmt.Sprintf(
			"run %d finished %s in %s, waiting for changes",
			m.runCount,
			m.last.When.Format("15:04:05"),
			m.last.Duration.Round(100*time.Millisecond),
		))
	}

	return m.styles.Label.Render("waiting for changes")
}
