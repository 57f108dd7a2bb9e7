package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/tui"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
	"github.com/go-go-golems/pickem/pkg/tui/widgets"
)

// DomainModel shows one slice: its status box and the slice JSON in a viewport.
type DomainModel struct {
	width  int
	height int

	last *tui.StateSnapshot
	name string

	// follow keeps the viewport content in step with every snapshot.
	follow bool

	searching bool
	search    textinput.Model
	filter    string

	vp viewport.Model
}

func NewDomainModel() DomainModel {
	search := textinput.New()
	search.Placeholder = "filter…"
	search.Prompt = "/ "
	search.CharLimit = 200

	m := DomainModel{follow: true, search: search}
	m.vp = viewport.New(0, 0)
	return m
}

func (m DomainModel) Name() string {
	return m.name
}

func (m DomainModel) Searching() bool {
	return m.searching
}

func (m DomainModel) WithSize(width, height int) DomainModel {
	m.width, m.height = width, height
	m = m.resizeViewport()
	return m
}

func (m DomainModel) WithSnapshot(s tui.StateSnapshot) DomainModel {
	if m.last != nil && s.Version < m.last.Version {
		return m
	}
	m.last = &s
	if m.follow {
		m = m.refreshViewportContent(false)
	}
	return m
}

func (m DomainModel) WithDomain(name string) DomainModel {
	m.name = name
	m.follow = true
	m.searching = false
	m.filter = ""
	m.search.SetValue("")
	m.search.Blur()
	m = m.refreshViewportContent(false)
	m.vp.GotoTop()
	return m
}

func (m DomainModel) Update(msg tea.Msg) (DomainModel, tea.Cmd) {
	switch v := msg.(type) {
	case tui.StateSnapshotMsg:
		return m.WithSnapshot(v.Snapshot), nil
	case tea.KeyMsg:
		if m.searching {
			switch v.String() {
			case "esc":
				m.searching = false
				m.search.Blur()
				return m, nil
			case "enter":
				m.filter = strings.TrimSpace(m.search.Value())
				m.searching = false
				m.search.Blur()
				m = m.refreshViewportContent(false)
				return m, nil
			}

			var cmd tea.Cmd
			m.search, cmd = m.search.Update(v)
			return m, cmd
		}

		switch v.String() {
		case "/":
			m.searching = true
			m.search.SetValue(m.filter)
			m.search.CursorEnd()
			m.search.Focus()
			return m, nil
		case "ctrl+l":
			m.filter = ""
			m.search.SetValue("")
			m = m.refreshViewportContent(false)
			return m, nil
		case "f":
			m.follow = !m.follow
			if m.follow {
				m = m.refreshViewportContent(false)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(v)
		return m, cmd
	}
	return m, nil
}

func (m DomainModel) View() string {
	theme := styles.DefaultTheme()

	if m.name == "" {
		return theme.TitleMuted.Render("No domain selected.")
	}
	if m.last == nil {
		return theme.TitleMuted.Render("Waiting for the first state snapshot…")
	}
	d, found := m.last.Find(m.name)
	if !found {
		return widgets.NewBox("Domain: " + m.name).
			WithContent(theme.TitleMuted.Render("No such domain in the current snapshot.")).
			WithSize(m.width, 5).
			Render()
	}

	icon, style := styles.StatusIcon(d.Status, theme)
	info := []string{lipgloss.JoinHorizontal(lipgloss.Center,
		style.Render(icon), " ", theme.Title.Render(m.name),
		"  ", theme.TitleMuted.Render(fmt.Sprintf("v%d", m.last.Version)),
	)}
	if busy := busyClasses(d); len(busy) > 0 {
		info = append(info, theme.StatusBusy.Render("loading: "+strings.Join(busy, ", ")))
	}
	if d.Status.Error != "" {
		info = append(info, theme.StatusError.Render(styles.IconError+" "+d.Status.Error))
	}
	for _, k := range sortedKeys(d.Status.Messages) {
		info = append(info, theme.StatusNotice.Render(styles.IconInfo+" "+k+": "+d.Status.Messages[k]))
	}
	followIcon, followStyle := styles.IconPending, theme.TitleMuted
	if m.follow {
		followIcon, followStyle = styles.IconRunning, theme.StatusBusy
	}
	info = append(info, followStyle.Render(followIcon)+" "+theme.TitleMuted.Render(fmt.Sprintf("follow: %v", m.follow)))
	if m.filter != "" {
		info = append(info, theme.TitleMuted.Render(fmt.Sprintf("filter: %q", m.filter)))
	}

	sections := []string{
		widgets.NewBox("Domain: "+m.name).
			WithTitleRight("[esc] back  [x] clear messages").
			WithContent(lipgloss.JoinVertical(lipgloss.Left, info...)).
			WithSize(m.width, len(info)+4).
			Render(),
	}
	if m.searching {
		sections = append(sections, m.search.View())
	}
	sections = append(sections, widgets.NewBox("State").
		WithTitleRight("[↑/↓] scroll  [f] follow  [/] filter").
		WithContent(m.vp.View()).
		WithSize(m.width, m.vp.Height+4).
		Render())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Content is the slice JSON after filtering, as shown in the viewport.
func (m DomainModel) Content() string {
	if m.last == nil || m.name == "" {
		return ""
	}
	raw, ok := m.last.Slices[m.name]
	if !ok {
		return "(slice not included in snapshot)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	if m.filter == "" {
		return buf.String()
	}
	var kept []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, m.filter) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (m DomainModel) resizeViewport() DomainModel {
	usableHeight := m.height - 12
	if m.searching {
		usableHeight -= 2
	}
	if usableHeight < 3 {
		usableHeight = 3
	}
	m.vp.Width = maxInt(0, m.width-4)
	m.vp.Height = usableHeight
	m = m.refreshViewportContent(false)
	return m
}

func (m DomainModel) refreshViewportContent(gotoBottom bool) DomainModel {
	m.vp.SetContent(m.Content())
	if gotoBottom {
		m.vp.GotoBottom()
	}
	return m
}
