package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/kairu/internal/app"
	"github.com/sadopc/kairu/internal/stats"
)

const (
	chartDays   = 7
	heatmapDays = 90
)

type analyzeModel struct {
	state  *app.State
	width  int
	height int

	stats   stats.UserStats
	daily   []stats.DayTotal
	heatmap []stats.HeatCell
	tags    []stats.TagShare

	chart barchart.Model
}

func newAnalyzeModel(s *app.State) analyzeModel {
	return analyzeModel{
		state: s,
		chart: barchart.New(60, 12),
	}
}

func (a *analyzeModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

type analyzeDataMsg struct {
	stats   stats.UserStats
	daily   []stats.DayTotal
	heatmap []stats.HeatCell
	tags    []stats.TagShare
}

func (a analyzeModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := a.state.Now()
		return analyzeDataMsg{
			stats:   a.state.Stats(now),
			daily:   a.state.Daily(now, chartDays),
			heatmap: a.state.Heatmap(now, heatmapDays),
			tags:    a.state.TagDistribution(),
		}
	}
}

func (a analyzeModel) update(msg tea.Msg) (analyzeModel, tea.Cmd) {
	if msg, ok := msg.(analyzeDataMsg); ok {
		a.stats = msg.stats
		a.daily = msg.daily
		a.heatmap = msg.heatmap
		a.tags = msg.tags
		a.buildChart()
	}
	return a, nil
}

func (a *analyzeModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 10
	if a.height > 40 {
		chartHeight = 14
	}

	a.chart = barchart.New(chartWidth, chartHeight)
	if len(a.daily) == 0 {
		return
	}

	var bars []barchart.BarData
	for _, d := range a.daily {
		color := colorPrimary
		if d.IsWeekend {
			color = colorHighlight
		}
		bars = append(bars, barchart.BarData{
			Label: d.Day.Format("Mon"),
			Values: []barchart.BarValue{{
				Name:  d.Key,
				Value: d.Hours,
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyzeModel) view() string {
	w := a.width - 4

	cards := a.renderCards()
	chart := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Last 7 days"),
		a.chart.View(),
		a.renderDailyTotals(),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			cards, "", chart, "",
			titleStyle.Render("Tags"), a.renderTags(w-6), "",
			titleStyle.Render("Last 90 days"), a.renderHeatmap(),
		),
	)
}

func (a analyzeModel) renderCards() string {
	card := func(label, value string) string {
		return activePanelStyle.Padding(0, 2).Render(
			lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), titleStyle.Render(value)),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Streak", fmt.Sprintf("%d days", a.stats.Streak)),
		card("Longest", fmt.Sprintf("%d days", a.stats.LongestStreak)),
		card("Today", fmt.Sprintf("%d min", a.stats.TodayMinutes)),
		card("Sessions", fmt.Sprintf("%d", a.stats.TodaySessions)),
	)
}

func (a analyzeModel) renderDailyTotals() string {
	var parts []string
	for _, d := range a.daily {
		parts = append(parts, fmt.Sprintf("%s %s", d.Day.Format("Mon"), formatHours(d.Hours)))
	}
	return mutedStyle.Render("  " + strings.Join(parts, "  "))
}

func (a analyzeModel) renderTags(w int) string {
	if len(a.tags) == 0 {
		return mutedStyle.Render("  No tagged sessions yet")
	}
	barWidth := max(w-36, 10)
	var rows []string
	for i, t := range a.tags {
		style := lipgloss.NewStyle().Foreground(tagPalette[i%len(tagPalette)])
		filled := int(t.Percent * float64(barWidth))
		bar := style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
		rows = append(rows, fmt.Sprintf("  %-14s %s %6s %4.0f%%", t.Name, bar, formatHours(t.Hours), t.Percent*100))
	}
	return strings.Join(rows, "\n")
}

// renderHeatmap lays the cells out in week columns, oldest on the left.
func (a analyzeModel) renderHeatmap() string {
	if len(a.heatmap) == 0 {
		return ""
	}
	var rows [7]strings.Builder
	for i, c := range a.heatmap {
		rows[i%7].WriteString(heatStyles[c.Level].Render("■") + " ")
	}
	lines := make([]string, 0, 8)
	for i := range rows {
		lines = append(lines, "  "+rows[i].String())
	}
	legend := "  less "
	for _, s := range heatStyles {
		legend += s.Render("■") + " "
	}
	lines = append(lines, mutedStyle.Render(legend+"more"))
	return strings.Join(lines, "\n")
}
