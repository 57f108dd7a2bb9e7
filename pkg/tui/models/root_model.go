package models

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/tui"
	"github.com/go-go-golems/pickem/pkg/tui/styles"
	"github.com/go-go-golems/pickem/pkg/tui/widgets"
)

type ViewID int

const (
	ViewOverview ViewID = iota
	ViewActions
	ViewDomain
)

type RootOptions struct {
	Dispatch func(acts ...action.Action)
	// ClearFor lists the clear-message intents of a domain.
	ClearFor func(domain string) []action.Action
}

type RootModel struct {
	opts RootOptions

	active   ViewID
	overview OverviewModel
	log      ActionLogModel
	detail   DomainModel

	width  int
	height int
	status string
}

func NewRootModel(opts RootOptions) RootModel {
	return RootModel{
		opts:     opts,
		overview: NewOverviewModel(),
		log:      NewActionLogModel(),
		detail:   NewDomainModel(),
	}
}

func (m RootModel) Active() ViewID {
	return m.active
}

func (m RootModel) Init() tea.Cmd {
	return nil
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		body := maxInt(0, v.Height-3)
		m.overview = m.overview.WithSize(v.Width, body)
		m.log = m.log.WithSize(v.Width, body)
		m.detail = m.detail.WithSize(v.Width, body)
		return m, nil

	case tui.StateSnapshotMsg:
		m.overview = m.overview.WithSnapshot(v.Snapshot)
		m.detail = m.detail.WithSnapshot(v.Snapshot)
		return m, nil

	case tui.ActionAppendMsg:
		m.log = m.log.Append(v.Entry)
		return m, nil

	case tui.RequestSettledMsg:
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(v)
		ev := v.Event
		switch {
		case ev.Error != "":
			m.status = fmt.Sprintf("%s %s/%s: %s", styles.IconError, ev.Domain, ev.Class, ev.Error)
		case ev.Message != "":
			m.status = fmt.Sprintf("%s %s/%s: %s", styles.IconInfo, ev.Domain, ev.Class, ev.Message)
		default:
			m.status = fmt.Sprintf("%s %s/%s settled", styles.IconSuccess, ev.Domain, ev.Class)
		}
		return m, cmd

	case tui.NavigateToDomainMsg:
		m.detail = m.detail.WithDomain(v.Name)
		m.active = ViewDomain
		return m, nil

	case tui.DispatchMsg:
		if m.opts.Dispatch != nil && len(v.Actions) > 0 {
			m.opts.Dispatch(v.Actions...)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching() {
			return m.updateActive(v)
		}
		switch v.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1":
			m.active = ViewOverview
			return m, nil
		case "2":
			m.active = ViewActions
			return m, nil
		case "3":
			if m.detail.Name() != "" {
				m.active = ViewDomain
			}
			return m, nil
		case "esc":
			if m.active == ViewDomain {
				m.active = ViewOverview
				return m, nil
			}
		case "x":
			return m, m.clearCmd()
		}
		return m.updateActive(v)
	}
	return m, nil
}

func (m RootModel) searching() bool {
	switch m.active {
	case ViewActions:
		return m.log.Searching()
	case ViewDomain:
		return m.detail.Searching()
	}
	return false
}

func (m RootModel) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case ViewOverview:
		m.overview, cmd = m.overview.Update(msg)
	case ViewActions:
		m.log, cmd = m.log.Update(msg)
	case ViewDomain:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// clearCmd dismisses the error and messages of the focused domain.
func (m RootModel) clearCmd() tea.Cmd {
	domain := ""
	switch m.active {
	case ViewOverview:
		domain = m.overview.Selected()
	case ViewDomain:
		domain = m.detail.Name()
	}
	if domain == "" || m.opts.ClearFor == nil {
		return nil
	}
	acts := m.opts.ClearFor(domain)
	if len(acts) == 0 {
		return nil
	}
	return func() tea.Msg { return tui.DispatchMsg{Actions: acts} }
}

func (m RootModel) View() string {
	theme := styles.DefaultTheme()

	tabs := []string{"1 overview", "2 actions", "3 domain"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if ViewID(i) == m.active {
			rendered[i] = theme.Selected.Render("[" + t + "]")
		} else {
			rendered[i] = theme.TitleMuted.Render(" " + t + " ")
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.status != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "   ", m.status)
	}

	var body string
	switch m.active {
	case ViewOverview:
		body = m.overview.View()
	case ViewActions:
		body = m.log.View()
	case ViewDomain:
		body = m.detail.View()
	}

	footer := widgets.NewFooter([]widgets.Keybind{
		{Key: "1/2/3", Desc: "views"},
		{Key: "↑/↓", Desc: "move"},
		{Key: "enter", Desc: "open"},
		{Key: "x", Desc: "clear messages"},
		{Key: "q", Desc: "quit"},
	}).WithWidth(m.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer.Render())
}
