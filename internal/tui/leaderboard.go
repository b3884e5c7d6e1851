package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/stats"
)

type leaderboardModel struct {
	state  *app.State
	width  int
	height int

	period  leaderboard.Period
	scope   leaderboard.Scope
	entries []leaderboard.Entry
}

func newLeaderboardModel(s *app.State) leaderboardModel {
	return leaderboardModel{state: s, period: leaderboard.Week}
}

func (l *leaderboardModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

type leaderboardDataMsg struct {
	entries []leaderboard.Entry
}

func (l leaderboardModel) refresh() tea.Cmd {
	period, scope := l.period, l.scope
	return func() tea.Msg {
		return leaderboardDataMsg{entries: l.state.Leaderboard(l.state.Now(), period, scope)}
	}
}

func (l leaderboardModel) update(msg tea.Msg) (leaderboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case leaderboardDataMsg:
		l.entries = msg.entries
		return l, nil

	case tea.KeyMsg:
		periods := stats.Periods()
		switch {
		case key.Matches(msg, keys.Left):
			if l.period > periods[0] {
				l.period--
			}
			return l, l.refresh()
		case key.Matches(msg, keys.Right):
			if l.period < periods[len(periods)-1] {
				l.period++
			}
			return l, l.refresh()
		case key.Matches(msg, keys.Scope):
			if l.scope == leaderboard.Everyone {
				l.scope = leaderboard.FriendsOnly
			} else {
				l.scope = leaderboard.Everyone
			}
			return l, l.refresh()
		}
	}
	return l, nil
}

func (l leaderboardModel) view() string {
	w := l.width - 4

	var tabs []string
	for _, p := range stats.Periods() {
		if p == l.period {
			tabs = append(tabs, activeTabStyle.Render(p.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(p.String()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Leaderboard"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ",
		highlightStyle.Render(l.scope.String()),
	)

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-5s %-20s %-10s %6s  %s", "Rank", "User", "Logged", "Kudos", "Badges")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))
	for _, e := range l.entries {
		rank := fmt.Sprintf("#%d", e.Rank)
		if e.HasTrophy {
			rank += "🏆"
		}
		name := e.Username
		if e.Location != "" {
			name += " (" + e.Location + ")"
		}
		line := fmt.Sprintf("  %-5s %-20s %-10s %6d  %s", rank, name, e.TimeLogged, e.Kudos, strings.Join(e.Badges, " "))
		if e.IsCurrentUser {
			rows = append(rows, selectedItemStyle.Render(line))
		} else {
			rows = append(rows, normalItemStyle.Render(line))
		}
	}

	nav := mutedStyle.Render("  ←/→: period  f: friends/everyone")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", strings.Join(rows, "\n"), "", nav,
	))
}
