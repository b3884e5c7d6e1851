package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/syncq"
)

type todosModel struct {
	state  *app.State
	width  int
	height int
	cursor int

	formActive   bool
	form         *huh.Form
	formText     *string
	formEstimate *string
}

func newTodosModel(s *app.State) todosModel {
	text, estimate := "", ""
	return todosModel{
		state:        s,
		formText:     &text,
		formEstimate: &estimate,
	}
}

func (t *todosModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t todosModel) update(msg tea.Msg) (todosModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	todos := t.state.Todos()
	switch {
	case key.Matches(km, keys.Up):
		t.cursor = clamp(t.cursor-1, len(todos))
	case key.Matches(km, keys.Down):
		t.cursor = clamp(t.cursor+1, len(todos))
	case key.Matches(km, keys.Select), key.Matches(km, keys.Toggle):
		if t.cursor < len(todos) {
			t.state.ToggleTodo(todos[t.cursor].ID)
		}
	case key.Matches(km, keys.Delete):
		if t.cursor < len(todos) {
			t.state.DeleteTodo(todos[t.cursor].ID)
			t.cursor = clamp(t.cursor, len(todos)-1)
		}
	case key.Matches(km, keys.New):
		return t.showForm()
	}
	return t, nil
}

func (t todosModel) showForm() (todosModel, tea.Cmd) {
	*t.formText = ""
	*t.formEstimate = ""

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Todo").Value(t.formText),
			huh.NewInput().Title("Estimate (min, optional)").Value(t.formEstimate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validMinutes(s)
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t todosModel) updateForm(msg tea.Msg) (todosModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		estimate, _ := strconv.Atoi(strings.TrimSpace(*t.formEstimate))
		t.state.AddTodo(*t.formText, estimate)
		return t, nil
	}

	return t, cmd
}

func (t todosModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Todo"), "", t.form.View()),
		)
	}

	title := titleStyle.Render("Todos")
	todos := t.state.Todos()
	if len(todos) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing to do. Press n to add a todo."),
		))
	}

	done := 0
	rows := []string{title, ""}
	for i, td := range todos {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if td.Completed {
			check = "[x]"
			done++
			if i != t.cursor {
				style = mutedStyle
			}
		}
		line := style.Render(fmt.Sprintf("%s%s %s", cursor, check, td.Text))
		if td.EstimatedTime != nil {
			line += mutedStyle.Render(fmt.Sprintf("  ~%d min", *td.EstimatedTime))
		}
		if st, ok := t.state.RecordStatus("todos", td.ID); ok && st != syncq.Synced {
			line += warningStyle.Render("  " + string(st))
		}
		rows = append(rows, line)
	}

	rows = append(rows, "",
		mutedStyle.Render(fmt.Sprintf("  %d/%d done", done, len(todos))),
		mutedStyle.Render("  n: new  enter/space: toggle  d: delete"),
	)
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
