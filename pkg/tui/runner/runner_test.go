package runner

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/pickem/pkg/app"
	"github.com/go-go-golems/pickem/pkg/transport/transporttest"
	"github.com/stretchr/testify/require"
)

func TestRunStopsWithContext(t *testing.T) {
	a, err := app.New(transporttest.New(), app.Options{ShutdownTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err = Run(ctx, a, Options{
		Interval: 20 * time.Millisecond,
		Program: []tea.ProgramOption{
			tea.WithInput(&bytes.Buffer{}),
			tea.WithOutput(io.Discard),
			tea.WithoutSignalHandler(),
		},
	})
	require.NoError(t, err)
}
