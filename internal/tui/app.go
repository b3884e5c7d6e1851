package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/export"
	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/syncq"
	"github.com/sadopc/kairu/internal/timer"
)

// Options wires the TUI to local preferences.
type Options struct {
	Settings  *store.Store // nil disables saving settings
	Defaults  Preferences
	Notifier  timer.Notifier // used while sound is on
	ExportDir string         // defaults to the home directory
}

// App is the root Bubble Tea model.
type App struct {
	state     *app.State
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	focus       focusModel
	analyze     analyzeModel
	review      reviewModel
	leaderboard leaderboardModel
	todos       todosModel
	settings    settingsModel

	help        help.Model
	status      string
	statusIsErr bool
}

func NewApp(s *app.State, opts Options) App {
	h := help.New()
	h.ShowAll = false

	dir := opts.ExportDir
	if dir == "" {
		dir, _ = os.UserHomeDir()
	}

	return App{
		state:       s,
		exportDir:   dir,
		activeView:  viewFocus,
		focus:       newFocusModel(s),
		analyze:     newAnalyzeModel(s),
		review:      newReviewModel(s),
		leaderboard: newLeaderboardModel(s),
		todos:       newTodosModel(s),
		settings:    newSettingsModel(s, opts.Settings, opts.Defaults, opts.Notifier),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.settings.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.focus.setSize(a.width, contentHeight)
		a.analyze.setSize(a.width, contentHeight)
		a.review.setSize(a.width, contentHeight)
		a.leaderboard.setSize(a.width, contentHeight)
		a.todos.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Retry):
			n := a.state.Retry()
			if n == 0 {
				return a, status("Nothing to retry")
			}
			return a, status("Retrying %d writes", n)
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewFocus)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewAnalyze)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewReview)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewLeaderboard)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewTodos)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The focus view watches the timer even when hidden.
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if cmd := a.refreshCurrentView(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusIsErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusIsErr = false
		a.exportPicking = false
		return a, nil

	case analyzeDataMsg:
		a.analyze, _ = a.analyze.update(msg)
		return a, nil
	case reviewDataMsg:
		a.review, _ = a.review.update(msg)
		return a, nil
	case leaderboardDataMsg:
		a.leaderboard, _ = a.leaderboard.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewAnalyze:
		a.analyze, cmd = a.analyze.update(msg)
	case viewReview:
		a.review, cmd = a.review.update(msg)
	case viewLeaderboard:
		a.leaderboard, cmd = a.leaderboard.update(msg)
	case viewTodos:
		a.todos, cmd = a.todos.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewFocus:
		return a.focus.formActive
	case viewTodos:
		return a.todos.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewAnalyze:
		return a.analyze.refresh()
	case viewReview:
		return a.review.refresh()
	case viewLeaderboard:
		return a.leaderboard.refresh()
	case viewSettings:
		if !a.settings.formActive {
			return a.settings.refresh()
		}
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewFocus:
		content = a.focus.view()
	case viewAnalyze:
		content = a.analyze.view()
	case viewReview:
		content = a.review.view()
	case viewLeaderboard:
		content = a.leaderboard.view()
	case viewTodos:
		content = a.todos.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("kairu")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	statusText := ""
	if a.status != "" {
		if a.statusIsErr {
			statusText = errorStyle.Render(" " + a.status)
		} else {
			statusText = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	snap := a.state.Timer().Snapshot()
	switch snap.State {
	case timer.Running:
		timerInfo = successStyle.Render(" ● " + formatClock(snap.TimeLeft))
	case timer.Paused:
		timerInfo = warningStyle.Render(" ⏸ " + formatClock(snap.TimeLeft))
	}

	left := footerStyle.Render(helpView)
	right := renderSync(a.state.SyncStatus()) + timerInfo + statusText

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func renderSync(s syncq.Summary) string {
	switch s.State {
	case syncq.StateSyncing:
		return warningStyle.Render(fmt.Sprintf(" ⟳ syncing %d", s.Pending))
	case syncq.StateFailed:
		return errorStyle.Render(fmt.Sprintf(" ✗ %d unsynced (r: retry)", s.Failed))
	}
	if s.LastSynced.IsZero() {
		return mutedStyle.Render(" ✓ up to date")
	}
	return successStyle.Render(" ✓ synced " + humanize.Time(s.LastSynced))
}

type exportFormat struct {
	label string
	ext   string
	write func([]store.FocusSession, string) error
}

var exportFormats = []exportFormat{
	{"CSV", "csv", export.ToCSV},
	{"JSON", "json", export.ToJSON},
}

func (a App) renderExportPicker() string {
	lines := []string{titleStyle.Render("Export sessions"), ""}
	for i, f := range exportFormats {
		if i == a.exportCursor {
			lines = append(lines, selectedItemStyle.Render("> "+f.label))
			continue
		}
		lines = append(lines, normalItemStyle.Render("  "+f.label))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("  %d sessions -> %s", len(a.state.Sessions()), a.exportDir)))
	lines = append(lines, mutedStyle.Render("  enter: export  esc: cancel"))
	return activePanelStyle.Width(a.width - 4).Render(strings.Join(lines, "\n"))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		a.exportCursor = (a.exportCursor + 1) % len(exportFormats)
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes every session to kairu-export-<date>.<ext> in the export dir.
func (a App) doExport(format int) tea.Cmd {
	f := exportFormats[format]
	sessions := a.state.Sessions()
	path := filepath.Join(a.exportDir, "kairu-export-"+a.state.Now().Format("2006-01-02")+"."+f.ext)
	return func() tea.Msg {
		if err := f.write(sessions, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s export failed: %v", f.label, err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
