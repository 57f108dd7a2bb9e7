package tui

import "github.com/go-go-golems/pickem/pkg/action"

type StateSnapshotMsg struct {
	Snapshot StateSnapshot
}

type ActionAppendMsg struct {
	Entry ActionEntry
}

type RequestSettledMsg struct {
	Event RequestSettled
}

type NavigateToDomainMsg struct {
	Name string
}

// DispatchMsg asks the root model to send an action to the store.
type DispatchMsg struct {
	Actions []action.Action
}
