package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/dateutil"
	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/timer"
)

// Setting keys shared with the CLI.
const (
	SettingTimerMinutes = "timer_minutes"
	SettingSound        = "sound"
	SettingWeekStart    = "week_start"
)

// Preferences are the fallbacks used for settings never saved locally.
type Preferences struct {
	TimerMinutes int
	Sound        bool
	WeekStart    string
}

func (p Preferences) value(k string) string {
	switch k {
	case SettingTimerMinutes:
		return strconv.Itoa(p.TimerMinutes)
	case SettingSound:
		if p.Sound {
			return "on"
		}
		return "off"
	case SettingWeekStart:
		return p.WeekStart
	}
	return ""
}

var settingKeys = []string{SettingTimerMinutes, SettingSound, SettingWeekStart}

type settingsModel struct {
	state    *app.State
	store    *store.Store
	defaults Preferences
	notifier timer.Notifier
	width    int
	height   int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	timerMinutes *string
	sound        *string
	weekStart    *string
}

func newSettingsModel(s *app.State, st *store.Store, defaults Preferences, n timer.Notifier) settingsModel {
	tm, snd, ws := "", "", ""
	return settingsModel{
		state:        s,
		store:        st,
		defaults:     defaults,
		notifier:     n,
		timerMinutes: &tm,
		sound:        &snd,
		weekStart:    &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	values map[string]string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		values := make(map[string]string, len(settingKeys))
		for _, k := range settingKeys {
			values[k] = s.getVal(k)
		}
		return settingsDataMsg{values: values}
	}
}

func (s settingsModel) getVal(k string) string {
	if s.store == nil {
		return s.defaults.value(k)
	}
	return s.store.SettingOr(context.Background(), k, s.defaults.value(k))
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.values = msg.values
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.timerMinutes = s.getVal(SettingTimerMinutes)
	*s.sound = s.getVal(SettingSound)
	*s.weekStart = s.getVal(SettingWeekStart)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default timer (min)").Value(s.timerMinutes).Validate(validMinutes),
			huh.NewSelect[string]().Title("Completion sound").
				Options(
					huh.NewOption("On", "on"),
					huh.NewOption("Off", "off"),
				).Value(s.sound),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Sunday", "sunday"),
					huh.NewOption("Monday", "monday"),
				).Value(s.weekStart),
		).Title("Leaderboard"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, tea.Batch(s.refresh(), statusErr("Settings error: %v", err))
		}
		return s, tea.Batch(s.refresh(), s.apply())
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if s.store == nil {
		return nil
	}
	ctx := context.Background()
	vals := map[string]string{
		SettingTimerMinutes: strings.TrimSpace(*s.timerMinutes),
		SettingSound:        *s.sound,
		SettingWeekStart:    *s.weekStart,
	}
	for _, k := range settingKeys {
		if err := s.store.SetSetting(ctx, k, vals[k]); err != nil {
			return err
		}
	}
	return nil
}

// apply pushes the saved values into the running state.
func (s settingsModel) apply() tea.Cmd {
	if *s.sound == "on" && s.notifier != nil {
		s.state.Timer().SetNotifier(s.notifier)
	} else {
		s.state.Timer().SetNotifier(timer.NopNotifier{})
	}
	s.state.SetWeekStart(dateutil.ParseWeekday(*s.weekStart))

	minutes, _ := strconv.Atoi(strings.TrimSpace(*s.timerMinutes))
	if err := s.state.SetDuration(minutes); err != nil {
		return status("Settings saved; timer length applies after this session")
	}
	return status("Settings saved")
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, k := range settingKeys {
		label := lipgloss.NewStyle().Width(24).Render(k)
		value := highlightStyle.Render(formatSettingValue(k, s.values[k]))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	id := s.state.Identity()
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  Signed in as %s <%s>", id.DisplayName, id.Email)))
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case SettingTimerMinutes:
		if _, err := strconv.Atoi(v); err == nil {
			return v + " min"
		}
	case SettingWeekStart:
		if v != "" {
			return strings.ToUpper(v[:1]) + v[1:]
		}
	}
	return v
}
