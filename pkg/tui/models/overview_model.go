package models

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/tui"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
	"github.com/go-go-golems/pickem/pkg/tui/widgets"
)

// OverviewModel lists every domain with its loading flags, error and messages.
type OverviewModel struct {
	width  int
	height int

	last    *tui.StateSnapshot
	cursor  int
	settled map[string]tui.RequestSettled
}

func NewOverviewModel() OverviewModel {
	return OverviewModel{settled: map[string]tui.RequestSettled{}}
}

func (m OverviewModel) WithSize(width, height int) OverviewModel {
	m.width, m.height = width, height
	return m
}

// WithSnapshot ignores snapshots older than the one shown; the bus does not
// preserve publish order.
func (m OverviewModel) WithSnapshot(s tui.StateSnapshot) OverviewModel {
	if m.last != nil && s.Version < m.last.Version {
		return m
	}
	m.last = &s
	if n := len(s.Domains); n > 0 && m.cursor >= n {
		m.cursor = n - 1
	}
	return m
}

// Selected is the domain under the cursor, or "".
func (m OverviewModel) Selected() string {
	if m.last == nil || len(m.last.Domains) == 0 {
		return ""
	}
	return m.last.Domains[m.cursor].Name
}

func (m OverviewModel) Update(msg tea.Msg) (OverviewModel, tea.Cmd) {
	switch v := msg.(type) {
	case tui.StateSnapshotMsg:
		return m.WithSnapshot(v.Snapshot), nil
	case tui.RequestSettledMsg:
		settled := make(map[string]tui.RequestSettled, len(m.settled)+1)
		for k, e := range m.settled {
			settled[k] = e
		}
		settled[v.Event.Domain] = v.Event
		m.settled = settled
		return m, nil
	case tea.KeyMsg:
		switch v.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.last != nil && m.cursor < len(m.last.Domains)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			name := m.Selected()
			if name == "" {
				return m, nil
			}
			return m, func() tea.Msg { return tui.NavigateToDomainMsg{Name: name} }
		}
	}
	return m, nil
}

func (m OverviewModel) View() string {
	theme := styles.DefaultTheme()
	if m.last == nil {
		return theme.TitleMuted.Render("Waiting for the first state snapshot…")
	}

	lines := make([]string, 0, len(m.last.Domains)+2)
	for i, d := range m.last.Domains {
		icon, style := styles.StatusIcon(d.Status, theme)
		name := fmt.Sprintf("%-12s", d.Name)
		if i == m.cursor {
			name = theme.Selected.Render("> " + name)
		} else {
			name = "  " + name
		}

		var detail []string
		if busy := busyClasses(d); len(busy) > 0 {
			detail = append(detail, theme.StatusBusy.Render(strings.Join(busy, ",")))
		}
		if d.Status.Error != "" {
			detail = append(detail, theme.StatusError.Render(d.Status.Error))
		}
		for _, k := range sortedKeys(d.Status.Messages) {
			detail = append(detail, theme.StatusNotice.Render(k+": "+d.Status.Messages[k]))
		}
		if ev, ok := m.settled[d.Name]; ok && len(detail) == 0 {
			detail = append(detail, theme.TitleMuted.Render("settled "+ev.Class+" at "+ev.At.Format("15:04:05")))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			name, " ", style.Render(icon), "  ", strings.Join(detail, "  ")))
	}
	if m.last.Error != "" {
		lines = append(lines, "", theme.StatusError.Render(m.last.Error))
	}

	return widgets.NewBox("Domains").
		WithTitleRight(fmt.Sprintf("v%d", m.last.Version)).
		WithContent(lipgloss.JoinVertical(lipgloss.Left, lines...)).
		WithSize(m.width, len(lines)+4).
		Render()
}

func busyClasses(d tui.DomainStatus) []string {
	var out []string
	for k, v := range d.Status.Loading {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
