package widgets

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
)

// Box is a bordered panel with a title line.
type Box struct {
	Title      string
	TitleRight string
	Content    string
	Width      int
	Height     int
	theme      styles.Theme
}

func NewBox(title string) Box {
	return Box{Title: title, theme: styles.DefaultTheme()}
}

func (b Box) WithTitleRight(s string) Box {
	b.TitleRight = s
	return b
}

func (b Box) WithContent(s string) Box {
	b.Content = s
	return b
}

func (b Box) WithSize(w, h int) Box {
	b.Width, b.Height = w, h
	return b
}

func (b Box) Render() string {
	inner := b.Width - 4
	if inner < 10 {
		inner = 10
	}
	left := b.theme.Title.Render(b.Title)
	header := left
	if b.TitleRight != "" {
		right := b.theme.TitleMuted.Render(b.TitleRight)
		gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 1 {
			gap = 1
		}
		header = left + lipgloss.NewStyle().Width(gap).Render("") + right
	}
	body := lipgloss.JoinVertical(lipgloss.Left, header, "", b.Content)

	style := b.theme.Border.Padding(0, 1).Width(inner)
	if b.Height > 2 {
		style = style.Height(b.Height - 2)
	}
	return style.Render(body)
}
