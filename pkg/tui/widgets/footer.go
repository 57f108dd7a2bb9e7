package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
)

// Footer renders a styled keybindings bar.
type Footer struct {
	Keybinds []Keybind
	Width    int
	theme    styles.Theme
}

func NewFooter(keybinds []Keybind) Footer {
	return Footer{
		Keybinds: keybinds,
		theme:    styles.DefaultTheme(),
	}
}

func (f Footer) WithWidth(w int) Footer {
	f.Width = w
	return f
}

func (f Footer) Render() string {
	theme := f.theme

	w := f.Width
	if w <= 0 {
		w = 80
	}
	separator := lipgloss.NewStyle().Foreground(theme.Muted).Render(strings.Repeat("━", w))

	line := RenderKeybinds(f.Keybinds, theme)
	padding := (w - lipgloss.Width(line)) / 2
	if padding < 0 {
		padding = 0
	}
	centered := lipgloss.NewStyle().PaddingLeft(padding).Render(line)

	return lipgloss.JoinVertical(lipgloss.Left, separator, centered)
}
