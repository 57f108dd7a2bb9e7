package styles

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Title        lipgloss.Style
	TitleMuted   lipgloss.Style
	Border       lipgloss.Style
	Selected     lipgloss.Style
	StatusIdle   lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusError  lipgloss.Style
	StatusNotice lipgloss.Style
	KeybindKey   lipgloss.Style
	KeybindDesc  lipgloss.Style
}

func DefaultTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7D56F4"),
		Muted:   lipgloss.Color("#6C6C6C"),
		Success: lipgloss.Color("#04B575"),
		Warning: lipgloss.Color("#FFB454"),
		Error:   lipgloss.Color("#FF5F87"),
		Info:    lipgloss.Color("#5FAFFF"),
	}
	t.Title = lipgloss.NewStyle().Bold(true)
	t.TitleMuted = lipgloss.NewStyle().Foreground(t.Muted)
	t.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted)
	t.Selected = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.StatusIdle = lipgloss.NewStyle().Foreground(t.Success)
	t.StatusBusy = lipgloss.NewStyle().Foreground(t.Warning)
	t.StatusError = lipgloss.NewStyle().Foreground(t.Error)
	t.StatusNotice = lipgloss.NewStyle().Foreground(t.Info)
	t.KeybindKey = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.KeybindDesc = lipgloss.NewStyle().Foreground(t.Muted)
	return t
}
