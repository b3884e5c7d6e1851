package tui

import "github.com/charmbracelet/lipgloss"

// kairu palette: mint accent on slate.
var (
	colorPrimary   = lipgloss.Color("#00D9A3")
	colorHighlight = lipgloss.Color("#38BDF8")
	colorText      = lipgloss.Color("#E2E8F0")
	colorDim       = lipgloss.Color("#64748B")
	colorTrack     = lipgloss.Color("#334155")
	colorOK        = lipgloss.Color("#34D399")
	colorPause     = lipgloss.Color("#FBBF24")
	colorFail      = lipgloss.Color("#F87171")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

func bigDigits(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true).Align(lipgloss.Center)
}

var (
	titleStyle     = fg(colorText).Bold(true)
	mutedStyle     = fg(colorDim)
	highlightStyle = fg(colorHighlight)
	successStyle   = fg(colorOK)
	warningStyle   = fg(colorPause)
	errorStyle     = fg(colorFail)

	panelStyle       = boxed(colorTrack)
	activePanelStyle = boxed(colorPrimary)

	timerStyle        = bigDigits(colorPrimary)
	timerRunningStyle = bigDigits(colorOK)
	timerPausedStyle  = bigDigits(colorPause)

	activeTabStyle = fg(colorPrimary).Bold(true).Padding(0, 2).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary)
	inactiveTabStyle = mutedStyle.Padding(0, 2)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = fg(colorPrimary).Bold(true)
	normalItemStyle   = fg(colorText)
)

// heatStyles shades the activity map, index = heat level.
var heatStyles = [...]lipgloss.Style{
	fg(colorTrack),
	fg(lipgloss.Color("#0E5C4A")),
	fg(lipgloss.Color("#00A67E")),
	fg(colorPrimary),
}

var tagPalette = []lipgloss.Color{colorPrimary, colorHighlight, "#818CF8", colorPause, colorFail, "#C084FC"}
