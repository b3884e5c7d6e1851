package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/dateutil"
	"github.com/sadopc/kairu/internal/store"
)

type reviewModel struct {
	state  *app.State
	width  int
	height int

	offset   int // days back from today
	sessions []store.FocusSession
}

func newReviewModel(s *app.State) reviewModel {
	return reviewModel{state: s}
}

func (r *reviewModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reviewDataMsg struct {
	sessions []store.FocusSession
}

func (r reviewModel) day() time.Time {
	return dateutil.AddDays(dateutil.StartOfDay(r.state.Now()), -r.offset)
}

func (r reviewModel) refresh() tea.Cmd {
	day := dateutil.DayKey(r.day())
	return func() tea.Msg {
		return reviewDataMsg{sessions: r.state.SessionsOn(day)}
	}
}

func (r reviewModel) update(msg tea.Msg) (reviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewDataMsg:
		r.sessions = msg.sessions
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r reviewModel) view() string {
	w := r.width - 4
	day := r.day()

	label := day.Format("Mon, Jan 02 2006")
	if r.offset == 0 {
		label = "Today, " + label
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Review"), "  ", mutedStyle.Render(label),
	)

	nav := mutedStyle.Render("  ←/→: previous/next day")
	if len(r.sessions) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("  No sessions on this day"), "", nav,
		))
	}

	var total int64
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-13s %9s %9s  %-10s %s", "Time", "Target", "Actual", "Status", "Tags")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))
	for _, s := range r.sessions {
		total += s.ActualDurationSeconds
		span := fmt.Sprintf("%s–%s",
			dateutil.FromEpochMillis(s.StartTime).Format("15:04"),
			dateutil.FromEpochMillis(s.EndTime).Format("15:04"))
		st := successStyle.Render(fmt.Sprintf("%-10s", s.Status))
		if s.Status == store.StatusPartial {
			st = warningStyle.Render(fmt.Sprintf("%-10s", s.Status))
		}
		rows = append(rows, fmt.Sprintf("  %-13s %9s %9s  %s %s",
			span, formatSeconds(s.TargetDurationSeconds), formatSeconds(s.ActualDurationSeconds),
			st, highlightStyle.Render(strings.Join(s.Tags, ", ")),
		))
	}
	summary := titleStyle.Render(fmt.Sprintf("  %d sessions, %s focused", len(r.sessions), formatSeconds(total)))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", strings.Join(rows, "\n"), "", summary, "", nav,
	))
}
