package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pickem/pkg/store"
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconInfo    = "ℹ"
	IconRunning = "▶"
	IconPending = "○"
	IconBullet  = "•"
)

// StatusIcon picks the icon and style for a domain: busy wins over error,
// error over a pending message.
func StatusIcon(st store.Status, theme Theme) (string, lipgloss.Style) {
	switch {
	case st.Busy():
		return IconRunning, theme.StatusBusy
	case st.Error != "":
		return IconError, theme.StatusError
	case len(st.Messages) > 0:
		return IconInfo, theme.StatusNotice
	default:
		return IconSuccess, theme.StatusIdle
	}
}

// VerbIcon marks an action type by its lifecycle suffix.
func VerbIcon(verb string) string {
	switch verb {
	case "Request":
		return IconRunning
	case "Success":
		return IconSuccess
	case "Failure":
		return IconError
	case "ClearMessage":
		return IconPending
	default:
		return IconBullet
	}
}
