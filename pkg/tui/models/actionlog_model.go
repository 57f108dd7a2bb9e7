package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/pickem/pkg/tui"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
)

// ActionLogModel is a scrolling, filterable list of dispatched actions.
type ActionLogModel struct {
	max     int
	entries []tui.ActionEntry

	width  int
	height int

	searching bool
	search    textinput.Model
	filter    string

	vp viewport.Model
}

func NewActionLogModel() ActionLogModel {
	search := textinput.New()
	search.Placeholder = "filter…"
	search.Prompt = "/ "
	search.CharLimit = 200

	m := ActionLogModel{max: 500, search: search}
	m.vp = viewport.New(0, 0)
	return m
}

func (m ActionLogModel) WithSize(width, height int) ActionLogModel {
	m.width, m.height = width, height
	m = m.resizeViewport()
	return m
}

func (m ActionLogModel) Searching() bool {
	return m.searching
}

func (m ActionLogModel) Update(msg tea.Msg) (ActionLogModel, tea.Cmd) {
	switch v := msg.(type) {
	case tui.ActionAppendMsg:
		return m.Append(v.Entry), nil
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
				m = m.refreshViewportContent(true)
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
			m = m.refreshViewportContent(true)
			return m, nil
		case "c":
			m.entries = nil
			m = m.refreshViewportContent(true)
			return m, nil
		}

		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(v)
		return m, cmd
	}
	return m, nil
}

// Append inserts e in store-version order. Entries can arrive out of order
// because the bus delivers each message on its own goroutine.
func (m ActionLogModel) Append(e tui.ActionEntry) ActionLogModel {
	i := len(m.entries)
	for i > 0 && m.entries[i-1].Version > e.Version {
		i--
	}
	entries := make([]tui.ActionEntry, 0, len(m.entries)+1)
	entries = append(entries, m.entries[:i]...)
	entries = append(entries, e)
	m.entries = append(entries, m.entries[i:]...)
	if m.max > 0 && len(m.entries) > m.max {
		m.entries = append([]tui.ActionEntry{}, m.entries[len(m.entries)-m.max:]...)
	}
	m = m.refreshViewportContent(true)
	return m
}

// Lines returns the rendered entries that pass the filter.
func (m ActionLogModel) Lines() []string {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if m.filter != "" && !strings.Contains(e.Type, m.filter) && !strings.Contains(string(e.Payload), m.filter) {
			continue
		}
		ts := e.At
		if ts.IsZero() {
			ts = time.Now()
		}
		_, _, verb := splitType(e.Type)
		line := fmt.Sprintf("%s %s #%d %s", ts.Format("15:04:05"), styles.VerbIcon(verb), e.Version, e.Type)
		if len(e.Payload) > 0 && len(e.Payload) <= 120 {
			line += " " + string(e.Payload)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m ActionLogModel) View() string {
	var b strings.Builder
	filterLabel := ""
	if m.filter != "" {
		filterLabel = fmt.Sprintf(" filter=%q", m.filter)
	}
	b.WriteString(fmt.Sprintf("Actions:%s\n", filterLabel))
	b.WriteString("scroll, / filter, ctrl+l clear filter, c clear log\n\n")

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if len(m.entries) == 0 {
		b.WriteString("(no actions yet)\n")
		return b.String()
	}
	b.WriteString(m.vp.View())
	return b.String()
}

func (m ActionLogModel) resizeViewport() ActionLogModel {
	usableHeight := m.height - 4
	if usableHeight < 3 {
		usableHeight = 3
	}
	m.vp.Width = maxInt(0, m.width)
	m.vp.Height = usableHeight
	m = m.refreshViewportContent(false)
	return m
}

func (m ActionLogModel) refreshViewportContent(gotoBottom bool) ActionLogModel {
	lines := m.Lines()
	if len(lines) == 0 {
		m.vp.SetContent("")
		return m
	}
	m.vp.SetContent(strings.Join(lines, "\n") + "\n")
	if gotoBottom {
		m.vp.GotoBottom()
	}
	return m
}
