package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/timer"
)

type focusPane int

const (
	paneTags focusPane = iota
	panePresets
)

type focusModel struct {
	state  *app.State
	width  int
	height int

	pane         focusPane
	tagCursor    int
	presetCursor int
	selected     map[string]bool // tag names picked for the next run
	last         timer.State

	formActive  bool
	formKind    string // "tag" or "preset"
	form        *huh.Form
	formName    *string
	formMinutes *string
}

func newFocusModel(s *app.State) focusModel {
	name, minutes := "", ""
	return focusModel{
		state:       s,
		selected:    make(map[string]bool),
		formName:    &name,
		formMinutes: &minutes,
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

// selectedTags returns the picked tag names in tag list order.
func (f focusModel) selectedTags() []string {
	var names []string
	for _, t := range f.state.Tags() {
		if f.selected[t.Name] {
			names = append(names, t.Name)
		}
	}
	return names
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	if f.formActive && f.form != nil {
		return f.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		snap := f.state.Timer().Snapshot()
		finished := f.last != timer.Idle && snap.State == timer.Idle
		f.last = snap.State
		if finished {
			return f, status("Session complete")
		}
		return f, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle):
			return f.toggle()
		case key.Matches(msg, keys.Stop):
			return f.stop()
		case key.Matches(msg, keys.Left):
			f.pane = paneTags
		case key.Matches(msg, keys.Right):
			f.pane = panePresets
		case key.Matches(msg, keys.Up):
			f.moveCursor(-1)
		case key.Matches(msg, keys.Down):
			f.moveCursor(1)
		case key.Matches(msg, keys.Select):
			return f.selectItem()
		case key.Matches(msg, keys.New):
			return f.showForm()
		case key.Matches(msg, keys.Delete):
			return f.deleteItem()
		}
	}
	return f, nil
}

func (f focusModel) toggle() (focusModel, tea.Cmd) {
	m := f.state.Timer()
	before := m.Snapshot().State
	m.Toggle(f.selectedTags())
	f.last = m.Snapshot().State
	switch {
	case before == timer.Idle:
		return f, status("Focus started")
	case f.last == timer.Paused:
		return f, status("Paused")
	default:
		return f, status("Resumed")
	}
}

func (f focusModel) stop() (focusModel, tea.Cmd) {
	fs, ok := f.state.Timer().Stop()
	f.last = timer.Idle
	if !ok {
		return f, nil
	}
	return f, status("Stopped after %s (%s)", formatClock(fs.ActualDurationSeconds), fs.Status)
}

func (f *focusModel) moveCursor(delta int) {
	if f.pane == paneTags {
		f.tagCursor = clamp(f.tagCursor+delta, len(f.state.Tags()))
		return
	}
	f.presetCursor = clamp(f.presetCursor+delta, len(f.state.Presets()))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (f focusModel) selectItem() (focusModel, tea.Cmd) {
	if f.pane == paneTags {
		tags := f.state.Tags()
		if f.tagCursor < len(tags) {
			name := tags[f.tagCursor].Name
			f.selected[name] = !f.selected[name]
		}
		return f, nil
	}

	presets := f.state.Presets()
	if f.presetCursor >= len(presets) {
		return f, nil
	}
	p := presets[f.presetCursor]
	if err := f.state.ApplyPreset(p.ID); err != nil {
		if errors.Is(err, timer.ErrActive) {
			return f, statusErr("Stop the timer before switching presets")
		}
		return f, statusErr("Preset error: %v", err)
	}
	return f, status("%s: %d min", p.Name, p.DurationMinutes)
}

func (f focusModel) deleteItem() (focusModel, tea.Cmd) {
	if f.pane == paneTags {
		tags := f.state.Tags()
		if f.tagCursor < len(tags) {
			t := tags[f.tagCursor]
			f.state.DeleteTag(t.ID)
			delete(f.selected, t.Name)
			f.tagCursor = clamp(f.tagCursor, len(tags)-1)
		}
		return f, nil
	}
	presets := f.state.Presets()
	if f.presetCursor < len(presets) {
		f.state.DeletePreset(presets[f.presetCursor].ID)
		f.presetCursor = clamp(f.presetCursor, len(presets)-1)
	}
	return f, nil
}

func (f focusModel) showForm() (focusModel, tea.Cmd) {
	*f.formName = ""
	*f.formMinutes = "25"

	if f.pane == paneTags {
		f.formKind = "tag"
		f.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Tag name").Value(f.formName),
			),
		).WithShowHelp(true).WithShowErrors(true)
	} else {
		f.formKind = "preset"
		f.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Preset name").Value(f.formName),
				huh.NewInput().Title("Minutes").Value(f.formMinutes).Validate(validMinutes),
			),
		).WithShowHelp(true).WithShowErrors(true)
	}

	f.formActive = true
	return f, f.form.Init()
}

func validMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a whole number of minutes")
	}
	return nil
}

func (f focusModel) updateForm(msg tea.Msg) (focusModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			f.formActive = false
			f.form = nil
			return f, nil
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.formActive = false
		switch f.formKind {
		case "tag":
			if t, ok := f.state.AddTag(*f.formName); ok {
				f.selected[t.Name] = true
			}
		case "preset":
			minutes, _ := strconv.Atoi(strings.TrimSpace(*f.formMinutes))
			if _, err := f.state.AddPreset(*f.formName, minutes); err != nil {
				return f, statusErr("Preset error: %v", err)
			}
		}
		return f, nil
	}

	return f, cmd
}

func (f focusModel) view() string {
	w := f.width - 4

	if f.formActive && f.form != nil {
		title := titleStyle.Render("New Tag")
		if f.formKind == "preset" {
			title = titleStyle.Render("New Preset")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", f.form.View()),
		)
	}

	left := f.renderTimer(w/2 - 2)
	right := lipgloss.JoinVertical(lipgloss.Left,
		f.renderTags(),
		"",
		f.renderPresets(),
	)
	rightPanel := panelStyle.Width(w - w/2 - 2).Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, rightPanel)
}

func (f focusModel) renderTimer(w int) string {
	snap := f.state.Timer().Snapshot()
	inner := max(w-6, 10)

	var clock, label string
	switch snap.State {
	case timer.Running:
		clock = timerRunningStyle.Width(inner).Render(formatClock(snap.TimeLeft))
		label = successStyle.Bold(true).Render("FOCUSING")
	case timer.Paused:
		clock = timerPausedStyle.Width(inner).Render(formatClock(snap.TimeLeft))
		label = warningStyle.Bold(true).Render("PAUSED")
	default:
		clock = timerStyle.Width(inner).Render(formatClock(snap.TimeLeft))
		label = mutedStyle.Render("Ready")
	}

	tags := f.selectedTags()
	if snap.State != timer.Idle {
		tags = snap.Tags
	}
	tagLine := mutedStyle.Render("no tags")
	if len(tags) > 0 {
		tagLine = highlightStyle.Render(strings.Join(tags, " · "))
	}

	var controls string
	if snap.State == timer.Idle {
		controls = mutedStyle.Render("space: start  enter: pick  n: new  d: delete")
	} else {
		controls = mutedStyle.Render("space: pause/resume  x: stop")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Focus"),
		"",
		clock,
		label,
		"",
		renderBar(1-snap.Progress(), inner),
		tagLine,
		"",
		controls,
	)
	return activePanelStyle.Width(w).Render(content)
}

// renderBar draws a filled bar for frac in [0,1].
func renderBar(frac float64, width int) string {
	frac = min(max(frac, 0), 1)
	filled := int(frac * float64(width))
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (f focusModel) renderTags() string {
	title := "Tags"
	if f.pane == paneTags {
		title = "> Tags"
	}
	rows := []string{titleStyle.Render(title)}

	tags := f.state.Tags()
	if len(tags) == 0 {
		rows = append(rows, mutedStyle.Render("  No tags. Press n to add one."))
	}
	for i, t := range tags {
		cursor := "  "
		style := normalItemStyle
		if f.pane == paneTags && i == f.tagCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if f.selected[t.Name] {
			check = "[x]"
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("●")
		rows = append(rows, style.Render(cursor+check+" ")+dot+" "+style.Render(t.Name))
	}
	return strings.Join(rows, "\n")
}

func (f focusModel) renderPresets() string {
	title := "Presets"
	if f.pane == panePresets {
		title = "> Presets"
	}
	rows := []string{titleStyle.Render(title)}

	configured := f.state.Timer().Snapshot().Configured
	for i, p := range f.state.Presets() {
		cursor := "  "
		style := normalItemStyle
		if f.pane == panePresets && i == f.presetCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := style.Render(fmt.Sprintf("%s%-16s %3d min", cursor, p.Name, p.DurationMinutes))
		if int64(p.DurationMinutes)*60 == configured {
			line += successStyle.Render(" ●")
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", mutedStyle.Render("  ←/→: switch list"))
	return strings.Join(rows, "\n")
}
