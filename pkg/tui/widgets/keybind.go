package widgets

import (
	"strings"

	"github.com/go-go-golems/pickem/pkg/tui/styles"
)

type Keybind struct {
	Key  string
	Desc string
}

func RenderKeybinds(kb []Keybind, theme styles.Theme) string {
	parts := make([]string, 0, len(kb))
	for _, k := range kb {
		parts = append(parts, theme.KeybindKey.Render("["+k.Key+"]")+" "+theme.KeybindDesc.Render(k.Desc))
	}
	return strings.Join(parts, "  ")
}
